// Package server exposes one engine session over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness probe
//	GET  /frame          text frame; ?t=<ms> steps the engine to that offset
//	GET  /frame.json     the same frame as a JSON document
//	GET  /scene          scene as JSON with an ETag from its fingerprint
//	POST /pointer        {"x":..,"y":..} queues a pointer move
//	POST /pointer/leave  queues a pointer leave
//	POST /drag/down      {"x":..,"y":..,"clicks":..} queues a press
//	POST /drag/up        queues a release
//
// Input routes only queue commands; they take effect on the next frame
// request. Every request holds the session lock for its whole duration.
package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dotgrid/pkg/buildinfo"
	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/pipeline"
	"github.com/matzehuels/dotgrid/pkg/render"
	"github.com/matzehuels/dotgrid/pkg/render/sink"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// Options configures a Server.
type Options struct {
	Scene         *scene.Document // required
	Metrics       metrics.Provider
	Viewport      geom.Size
	Window        time.Duration
	StickyPointer bool
	Logger        *log.Logger

	// Clock supplies the frame time when a request has no t parameter.
	// Defaults to time.Now.
	Clock func() time.Time
}

// Server holds one session. Create with [New].
type Server struct {
	mu      sync.Mutex
	eng     *engine.Engine
	doc     *scene.Document
	last    time.Duration
	started time.Time

	clock  func() time.Time
	log    *log.Logger
	router chi.Router
}

// New creates a server and its engine.
func New(opts Options) (*Server, error) {
	if opts.Scene == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scene is required")
	}
	if opts.Metrics == nil {
		f, err := metrics.NewFont(metrics.FontOptions{})
		if err != nil {
			return nil, err
		}
		opts.Metrics = f
	}
	if opts.Viewport == (geom.Size{}) {
		opts.Viewport = geom.Size{W: pipeline.DefaultWidth, H: pipeline.DefaultHeight}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	eng, err := engine.New(engine.Options{
		Metrics:       opts.Metrics,
		Source:        opts.Scene,
		Viewport:      opts.Viewport,
		NavHeight:     opts.Scene.NavHeight,
		Window:        opts.Window,
		StickyPointer: opts.StickyPointer,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		eng:     eng,
		doc:     opts.Scene,
		started: opts.Clock(),
		clock:   opts.Clock,
		log:     opts.Logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Dotgrid-Version", buildinfo.Version)
		_, _ = io.WriteString(w, "ok\n")
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/frame", s.handleFrame)
		r.Get("/frame.json", s.handleFrameJSON)
	})
	r.Get("/scene", s.handleScene)

	r.Route("/pointer", func(r chi.Router) {
		r.Post("/", s.handlePointerMove)
		r.Post("/leave", s.post(engine.PointerLeave{}))
	})
	r.Route("/drag", func(r chi.Router) {
		r.Post("/down", s.handleDragDown)
		r.Post("/up", s.post(engine.PointerUp{}))
	})
	return r
}

// step advances the engine to the offset in the t query parameter, or to
// the clock's offset from the session start. Offsets never move backwards.
func (s *Server) step(r *http.Request) error {
	at := s.clock().Sub(s.started)
	if raw := r.URL.Query().Get("t"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "t must be a non-negative integer of milliseconds, got %q", raw)
		}
		at = time.Duration(ms) * time.Millisecond
	}
	if at < s.last {
		return errors.New(errors.ErrCodeInvalidInput, "t=%dms is before the last frame at %dms", at.Milliseconds(), s.last.Milliseconds())
	}
	if _, err := s.eng.Step(pipeline.Epoch.Add(at)); err != nil {
		return err
	}
	s.last = at
	return nil
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.step(r); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Frame", strconv.FormatUint(s.eng.Frame(), 10))
	_ = render.WriteText(w, s.eng.Grid())
}

func (s *Server) handleFrameJSON(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.step(r); err != nil {
		writeError(w, err)
		return
	}
	data, err := sink.RenderJSON(s.eng.Grid(),
		sink.WithJSONCell(s.eng.Cell()),
		sink.WithJSONTime(s.last),
		sink.WithJSONBoxes(pipeline.BoxInfos(s.eng)...),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONBytes(w, http.StatusOK, data)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := scene.Fingerprint(s.doc)
	if err != nil {
		writeError(w, err)
		return
	}
	etag := fmt.Sprintf("%q", strconv.FormatUint(h, 16))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := scene.WriteJSON(w, s.doc); err != nil {
		s.log.Error("write scene", "error", err)
	}
}

type pointerRequest struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Clicks int      `json:"clicks"`
}

func (p pointerRequest) point() (geom.Point, error) {
	if p.X == nil || p.Y == nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "x and y are required")
	}
	return geom.Point{X: *p.X, Y: *p.Y}, nil
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := req.point()
	if err != nil {
		writeError(w, err)
		return
	}
	s.enqueue(w, engine.PointerMove{At: p})
}

func (s *Server) handleDragDown(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := req.point()
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Clicks < 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "clicks must not be negative"))
		return
	}
	if req.Clicks == 0 {
		req.Clicks = 1
	}
	s.enqueue(w, engine.PointerDown{At: p, Clicks: req.Clicks})
}

func (s *Server) post(cmd engine.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { s.enqueue(w, cmd) }
}

func (s *Server) enqueue(w http.ResponseWriter, cmd engine.Command) {
	s.mu.Lock()
	s.eng.Post(cmd)
	s.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}
