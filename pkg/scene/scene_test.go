package scene

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dotgrid/pkg/box"
	"github.com/matzehuels/dotgrid/pkg/drag"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
)

var (
	_ box.Element  = (*Element)(nil)
	_ box.Preparer = (*Element)(nil)
	_ drag.Mover   = (*Element)(nil)
)

func mustAdd(t *testing.T, d *Document, e *Element) *Element {
	t.Helper()
	e, err := d.Add(e)
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	return e
}

func TestAddAssignsHandles(t *testing.T) {
	d := New()
	a := mustAdd(t, d, &Element{ID: "a"})
	b := mustAdd(t, d, &Element{ID: "b", Class: Static})

	if a.Handle() == "" || a.Handle() == b.Handle() {
		t.Fatalf("handles not unique: %q %q", a.Handle(), b.Handle())
	}
	if a.Class != Dynamic {
		t.Errorf("default class = %q, want dynamic", a.Class)
	}
	if got, ok := d.Lookup(b.Handle()); !ok || got != b {
		t.Error("Lookup(b) failed")
	}
	if d.Find("a") != a || d.Find("zzz") != nil {
		t.Error("Find by id failed")
	}
	if d.Version() != 2 {
		t.Errorf("Version() = %d, want 2", d.Version())
	}
}

func TestAddRejects(t *testing.T) {
	tests := []struct {
		name string
		el   *Element
	}{
		{"bad class", &Element{Class: "floating"}},
		{"bad id", &Element{ID: "has space"}},
		{"duplicate id", &Element{ID: "dup"}},
		{"negative size", &Element{Rect: geom.Rect{W: -1}}},
	}
	d := New()
	mustAdd(t, d, &Element{ID: "dup"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Add(tt.el)
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Add() error = %v, want INVALID_SCENE", err)
			}
		})
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d after rejected adds", d.Len())
	}
}

func TestRemove(t *testing.T) {
	d := New()
	a := mustAdd(t, d, &Element{ID: "a"})
	b := mustAdd(t, d, &Element{ID: "b"})

	if !d.Remove(a.Handle()) {
		t.Fatal("Remove(a) = false")
	}
	if d.Remove(a.Handle()) {
		t.Error("second Remove(a) = true")
	}
	if d.Len() != 1 || d.Elements()[0] != b {
		t.Errorf("elements after remove = %v", d.Elements())
	}

	r := box.NewRegistry()
	if n := r.Rebuild(d); n != 1 {
		t.Errorf("registry after remove has %d boxes, want 1", n)
	}
}

func TestPrepareOverlay(t *testing.T) {
	d := New()
	dyn := mustAdd(t, d, &Element{ID: "dyn"})
	st := mustAdd(t, d, &Element{ID: "st", Class: Static})
	st.editing, st.editable, st.original, st.hasOrig = true, true, "stale", true

	box.NewRegistry().Rebuild(d)

	if !dyn.Focusable() || !st.Focusable() {
		t.Error("registered elements should be focusable")
	}
	if dyn.Z != NormalZ {
		t.Errorf("Z = %d, want %d", dyn.Z, NormalZ)
	}
	if st.Editing() || st.Editable() || st.hasOrig {
		t.Error("static element kept edit state")
	}
}

func TestBoundsAutoSize(t *testing.T) {
	d := New()
	d.SetCell(geom.Size{W: 10, H: 10})
	e := mustAdd(t, d, &Element{Rect: geom.Rect{X: 20, Y: 30}, Content: "abcd<br>ef"})

	// 4 chars + 2 margin = 3 interior cells, 2 lines: border spans 5x4 cells.
	want := geom.Rect{X: 20, Y: 30, W: 40, H: 30}
	if got := e.Bounds(); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}

	e.FreezeWidth(55)
	if got := e.Bounds().W; got != 55 {
		t.Errorf("frozen W = %v, want 55", got)
	}

	fixed := mustAdd(t, d, &Element{Rect: geom.Rect{W: 100, H: 50}, Content: "x"})
	if got := fixed.Bounds(); got.W != 100 || got.H != 50 {
		t.Errorf("explicit size overridden: %+v", got)
	}
}

func TestContentSize(t *testing.T) {
	cell := geom.Size{W: 10, H: 20}
	tests := []struct {
		name  string
		lines []string
		want  geom.Size
	}{
		{"empty", nil, geom.Size{W: 20, H: 40}},
		{"one", []string{"abc"}, geom.Size{W: 40, H: 40}},
		{"wide runes", []string{"世界"}, geom.Size{W: 40, H: 40}},
		{"three lines", []string{"a", "b", "c"}, geom.Size{W: 30, H: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentSize(tt.lines, cell); got != tt.want {
				t.Errorf("ContentSize() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if got := ContentSize([]string{"x"}, geom.Size{}); got != (geom.Size{}) {
		t.Errorf("invalid cell should yield zero size, got %+v", got)
	}
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  hello  ", "hello"},
		{"a\nb", "a<br>b"},
		{"\n a\r\nb \n", "a<br>b"},
		{"", ""},
		{"cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		if got := NormalizeContent(tt.in); got != tt.want {
			t.Errorf("NormalizeContent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	got := Lines("a<br>b<br/>c<br />d")
	if strings.Join(got, "|") != "a|b|c|d" {
		t.Errorf("Lines() = %q", got)
	}
	if Lines("") != nil {
		t.Error("Lines(\"\") should be nil")
	}
}

func TestEditFlow(t *testing.T) {
	d := New()
	e := mustAdd(t, d, &Element{Content: "hello<br>world"})

	if !e.BeginEdit() {
		t.Fatal("BeginEdit() = false")
	}
	if e.BeginEdit() {
		t.Error("BeginEdit() while editing = true")
	}
	if !e.Editing() || !e.Editable() || d.Editing() != e {
		t.Fatal("edit markers not set")
	}
	if e.EditText() != "hello\nworld" {
		t.Errorf("EditText() = %q", e.EditText())
	}

	e.InsertText("!\n  ")
	e.DeleteBack()
	if got := e.EditLines("_"); len(got) != 3 || got[2] != " _" {
		t.Errorf("EditLines() = %q", got)
	}

	if !e.FinishEdit() {
		t.Error("FinishEdit() should report a change")
	}
	if e.Content != "hello<br>world!" {
		t.Errorf("Content = %q", e.Content)
	}
	if e.Editing() || e.Editable() || d.Editing() != nil {
		t.Error("edit markers not cleared")
	}
}

func TestCancelEditRestores(t *testing.T) {
	d := New()
	e := mustAdd(t, d, &Element{Content: " a<br>b "})
	e.BeginEdit()
	e.InsertText("more")
	e.CancelEdit()
	if e.Content != "a<br>b" {
		t.Errorf("Content = %q, want restored and normalized", e.Content)
	}
	if e.Editing() {
		t.Error("still editing after cancel")
	}
}

func TestBeginEditRejects(t *testing.T) {
	d := New()
	st := mustAdd(t, d, &Element{Class: Static, Content: "x"})
	img := mustAdd(t, d, &Element{Image: "logo.png"})
	if st.BeginEdit() || img.BeginEdit() {
		t.Error("static and image elements must not enter edit mode")
	}
	if st.FinishEdit() {
		t.Error("FinishEdit on static element reported a change")
	}
	if st.Content != "x" {
		t.Errorf("static content changed to %q", st.Content)
	}
}

func TestFocusOrder(t *testing.T) {
	d := New()
	a := mustAdd(t, d, &Element{ID: "a"})
	b := mustAdd(t, d, &Element{ID: "b", TabIndex: 2})
	c := mustAdd(t, d, &Element{ID: "c", TabIndex: 1})
	hidden := mustAdd(t, d, &Element{ID: "hidden", TabIndex: -1})
	_ = hidden
	box.NewRegistry().Rebuild(d)

	got := d.FocusOrder()
	if len(got) != 3 || got[0] != c || got[1] != b || got[2] != a {
		ids := make([]string, len(got))
		for i, e := range got {
			ids[i] = e.ID
		}
		t.Errorf("FocusOrder() = %v, want [c b a]", ids)
	}
}

const sampleScene = `
nav_height = 40

[[box]]
id = "title"
class = "static"
x = 10
y = 50
w = 200
h = 60
content = "Hello"

[[box]]
id = "card"
class = "dynamic"
x = 30
y = 120
content = "drag<br>me"
`

func TestDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if d.NavHeight != 40 || d.Len() != 2 {
		t.Fatalf("NavHeight = %v, Len = %d", d.NavHeight, d.Len())
	}
	title := d.Find("title")
	if title == nil || title.Movable() || title.Rect.W != 200 {
		t.Errorf("title = %+v", title)
	}
	card := d.Find("card")
	if card == nil || !card.Movable() || !card.AutoSized() {
		t.Errorf("card = %+v", card)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", "[[box]\n"},
		{"unknown key", "[[box]]\ncolour = \"red\"\n"},
		{"bad class", "[[box]]\nclass = \"wobbly\"\n"},
		{"negative nav", "nav_height = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Decode() error = %v, want INVALID_SCENE", err)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	d.Find("card").MoveTo(geom.Point{X: 90, Y: 160})

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	if got := back.Find("card").Rect; got.X != 90 || got.Y != 160 {
		t.Errorf("card rect after reload = %+v", got)
	}

	a, _ := Fingerprint(d)
	b, _ := Fingerprint(back)
	if a != b {
		t.Errorf("fingerprints differ after reload: %d != %d", a, b)
	}
}

func TestFingerprintChanges(t *testing.T) {
	d, _ := Decode(strings.NewReader(sampleScene))
	before, err := Fingerprint(d)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	d.Find("card").MoveTo(geom.Point{X: 1, Y: 1})
	after, _ := Fingerprint(d)
	if before == after {
		t.Error("fingerprint did not change after move")
	}
}

func TestFileKeepsOriginalWhileEditing(t *testing.T) {
	d, _ := Decode(strings.NewReader(sampleScene))
	card := d.Find("card")
	card.BeginEdit()
	card.InsertText(" typing")
	if got := d.File().Boxes[1].Content; got != "drag<br>me" {
		t.Errorf("File() content = %q, want saved content", got)
	}
}

func TestWriteJSON(t *testing.T) {
	d, _ := Decode(strings.NewReader(sampleScene))
	var buf bytes.Buffer
	if err := WriteJSON(&buf, d); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	var f File
	if err := json.Unmarshal(buf.Bytes(), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.NavHeight != 40 || len(f.Boxes) != 2 || f.Boxes[0].Class != Static {
		t.Errorf("json file = %+v", f)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	if err := os.WriteFile(path, []byte(sampleScene), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(path)
	if err != nil || d.Len() != 2 {
		t.Fatalf("Load() = %v, %v", d, err)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestStarterIsValid(t *testing.T) {
	d, err := FromFile(Starter())
	if err != nil {
		t.Fatalf("FromFile(Starter()) error: %v", err)
	}
	if d.Len() == 0 {
		t.Error("starter scene is empty")
	}
}
