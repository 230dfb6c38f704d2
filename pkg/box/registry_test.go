package box

import (
	"testing"

	"github.com/matzehuels/dotgrid/pkg/geom"
)

type fakeElement struct {
	id       string
	rect     geom.Rect
	movable  bool
	prepared int
	editable bool
}

func (e *fakeElement) Bounds() geom.Rect { return e.rect }
func (e *fakeElement) Handle() string    { return e.id }
func (e *fakeElement) Movable() bool     { return e.movable }
func (e *fakeElement) PrepareOverlay(movable bool) {
	e.prepared++
	if !movable {
		e.editable = false
	}
}

type fakeDoc []*fakeElement

func (d fakeDoc) Overlays() []Element {
	out := make([]Element, len(d))
	for i, e := range d {
		out[i] = e
	}
	return out
}

func TestRebuildDocumentOrder(t *testing.T) {
	doc := fakeDoc{
		{id: "a", rect: geom.Rect{X: 0, Y: 0, W: 10, H: 10}, movable: true},
		{id: "b", rect: geom.Rect{X: 20, Y: 0, W: 10, H: 10}},
		{id: "c", rect: geom.Rect{X: 40, Y: 0, W: 10, H: 10}, movable: true},
	}

	r := NewRegistry()
	if n := r.Rebuild(doc); n != 3 {
		t.Fatalf("Rebuild() = %d, want 3", n)
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := r.At(i).Handle(); got != want {
			t.Errorf("box %d = %q, want %q", i, got, want)
		}
	}
	if r.Movable() != 2 {
		t.Errorf("Movable() = %d, want 2", r.Movable())
	}
	if r.At(1).Movable {
		t.Error("static element classified as movable")
	}
}

func TestRebuildPreparesElements(t *testing.T) {
	static := &fakeElement{id: "s", editable: true}
	dynamic := &fakeElement{id: "d", movable: true, editable: true}

	r := NewRegistry()
	r.Rebuild(fakeDoc{static, dynamic})

	if static.prepared != 1 || dynamic.prepared != 1 {
		t.Errorf("prepare counts = %d, %d", static.prepared, dynamic.prepared)
	}
	if static.editable {
		t.Error("static element left editable")
	}
	if !dynamic.editable {
		t.Error("dynamic element lost editability")
	}
}

func TestRebuildDropsRemovedElements(t *testing.T) {
	a := &fakeElement{id: "a"}
	b := &fakeElement{id: "b"}
	r := NewRegistry()
	r.Rebuild(fakeDoc{a, b})

	r.Rebuild(fakeDoc{b})
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if _, ok := r.Find("a"); ok {
		t.Error("removed element still registered")
	}
}

func TestRebuildEmpty(t *testing.T) {
	r := NewRegistry()
	if n := r.Rebuild(nil); n != 0 {
		t.Errorf("Rebuild(nil) = %d", n)
	}
	if n := r.Rebuild(fakeDoc{}); n != 0 {
		t.Errorf("Rebuild(empty) = %d", n)
	}
	if len(r.Rects()) != 0 {
		t.Error("empty registry returned rects")
	}
}

func TestRefreshOnlyDynamic(t *testing.T) {
	static := &fakeElement{id: "s", rect: geom.Rect{X: 1, Y: 1, W: 5, H: 5}}
	dynamic := &fakeElement{id: "d", rect: geom.Rect{X: 1, Y: 1, W: 5, H: 5}, movable: true}
	r := NewRegistry()
	r.Rebuild(fakeDoc{static, dynamic})

	static.rect.X = 50
	dynamic.rect.X = 50
	r.Refresh()

	if got := r.At(0).Rect.X; got != 1 {
		t.Errorf("static box X = %v, want 1 (captured at rebuild)", got)
	}
	if got := r.At(1).Rect.X; got != 50 {
		t.Errorf("dynamic box X = %v, want 50", got)
	}
}

func TestHitTestTopmost(t *testing.T) {
	under := &fakeElement{id: "under", rect: geom.Rect{X: 0, Y: 0, W: 100, H: 100}, movable: true}
	over := &fakeElement{id: "over", rect: geom.Rect{X: 50, Y: 50, W: 100, H: 100}}
	r := NewRegistry()
	r.Rebuild(fakeDoc{under, over})

	tests := []struct {
		p    geom.Point
		want string
		ok   bool
	}{
		{geom.Point{X: 10, Y: 10}, "under", true},
		{geom.Point{X: 75, Y: 75}, "over", true},
		{geom.Point{X: 100, Y: 100}, "over", true},
		{geom.Point{X: 500, Y: 500}, "", false},
	}
	for _, tt := range tests {
		b, ok := r.HitTest(tt.p)
		if ok != tt.ok {
			t.Errorf("HitTest(%v) ok = %v, want %v", tt.p, ok, tt.ok)
			continue
		}
		if ok && b.Handle() != tt.want {
			t.Errorf("HitTest(%v) = %q, want %q", tt.p, b.Handle(), tt.want)
		}
	}
}

func TestRects(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(fakeDoc{
		{id: "a", rect: geom.Rect{X: 1, W: 2, H: 3}},
		{id: "b", rect: geom.Rect{X: 4, W: 5, H: 6}},
	})
	rects := r.Rects()
	if len(rects) != 2 || rects[0].X != 1 || rects[1].X != 4 {
		t.Errorf("Rects() = %v", rects)
	}
}
