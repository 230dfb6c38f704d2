package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

// File is the serialized form of a document.
type File struct {
	NavHeight float64   `toml:"nav_height" json:"nav_height"`
	Boxes     []BoxSpec `toml:"box" json:"boxes"`
}

// BoxSpec is the serialized form of one element.
type BoxSpec struct {
	ID       string  `toml:"id,omitempty" json:"id,omitempty"`
	Class    Class   `toml:"class" json:"class"`
	X        float64 `toml:"x" json:"x"`
	Y        float64 `toml:"y" json:"y"`
	W        float64 `toml:"w,omitempty" json:"w,omitempty"`
	H        float64 `toml:"h,omitempty" json:"h,omitempty"`
	Content  string  `toml:"content,omitempty" json:"content,omitempty"`
	Image    string  `toml:"image,omitempty" json:"image,omitempty"`
	TabIndex int     `toml:"tab_index,omitempty" json:"tab_index,omitempty"`
}

// FromFile builds a document from its serialized form.
func FromFile(f File) (*Document, error) {
	if f.NavHeight < 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "nav_height %v is negative", f.NavHeight)
	}
	d := New()
	d.NavHeight = f.NavHeight
	for _, b := range f.Boxes {
		_, err := d.Add(&Element{
			ID:       b.ID,
			Class:    b.Class,
			Rect:     geom.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H},
			Content:  b.Content,
			Image:    b.Image,
			TabIndex: b.TabIndex,
		})
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// File returns the serialized form of the current document state. Edits in
// progress are recorded with their saved content.
func (d *Document) File() File {
	f := File{NavHeight: d.NavHeight, Boxes: make([]BoxSpec, 0, len(d.elements))}
	for _, e := range d.elements {
		content := e.Content
		if e.editing && e.hasOrig {
			content = e.original
		}
		w := e.Rect.W
		if e.FrozenWidth > 0 && w != 0 {
			w = e.FrozenWidth
		}
		f.Boxes = append(f.Boxes, BoxSpec{
			ID:       e.ID,
			Class:    e.Class,
			X:        e.Rect.X,
			Y:        e.Rect.Y,
			W:        w,
			H:        e.Rect.H,
			Content:  content,
			Image:    e.Image,
			TabIndex: e.TabIndex,
		})
	}
	return f
}

// Decode reads a TOML scene.
func Decode(r io.Reader) (*Document, error) {
	var f File
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene key %q", undec[0].String())
	}
	return FromFile(f)
}

// Load reads a TOML scene from path.
func Load(path string) (*Document, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open scene %s", path)
	}
	defer fh.Close()

	d, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

// Encode writes d as TOML.
func Encode(w io.Writer, d *Document) error {
	return toml.NewEncoder(w).Encode(d.File())
}

// WriteJSON writes d as indented JSON.
func WriteJSON(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.File())
}

// Fingerprint hashes the serialized document state. Equal fingerprints mean
// equal positions, sizes and content.
func Fingerprint(d *Document) (uint64, error) {
	h, err := hashstructure.Hash(d.File(), hashstructure.FormatV2, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "fingerprint scene")
	}
	return h, nil
}

// Starter returns the scene written by "dotgrid scene init".
func Starter() File {
	return File{
		NavHeight: 36,
		Boxes: []BoxSpec{
			{ID: "title", Class: Static, X: 36, Y: 54, Content: "dotgrid<br>move the pointer to leave a trail"},
			{ID: "notes", Class: Dynamic, X: 36, Y: 162, Content: "drag me around<br>double click to edit"},
			{ID: "help", Class: Dynamic, X: 360, Y: 162, Content: "tab: focus  +/-: font size<br>q: quit"},
		},
	}
}
