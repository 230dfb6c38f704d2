package scene_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/dotgrid/pkg/box"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

func Example() {
	doc, err := scene.Decode(strings.NewReader(`
[[box]]
id = "card"
x = 0
y = 0
content = "hi"
`))
	if err != nil {
		panic(err)
	}
	doc.SetCell(geom.Size{W: 10, H: 10})

	reg := box.NewRegistry()
	reg.Rebuild(doc)
	fmt.Println(reg.Len(), reg.At(0).Rect, reg.At(0).Movable)
	// Output: 1 {0 0 30 20} true
}
