// Package scene is the overlay document the engine draws around.
//
// A [Document] holds [Element] values in document order. Elements carry a
// class marker ([Dynamic] or [Static]), a pixel rectangle, display content
// using "<br>" line-break markup, and the interaction state the drag and edit
// flows write back: position, stacking order, frozen width and edit markers.
//
// Elements satisfy [box.Element], so a Document can be handed straight to a
// [box.Registry]. Dynamic elements also satisfy [drag.Mover].
//
// # Files
//
// Scenes are stored as TOML:
//
//	nav_height = 36
//
//	[[box]]
//	id = "about"
//	class = "dynamic"
//	x = 72
//	y = 90
//	content = "drag me<br>double click to edit"
//
// Boxes without a width or height are sized from their content in cells
// ([Document.SetCell] supplies the cell size). [Decode] and [Encode] read and
// write this format; [WriteJSON] exports the same structure as JSON.
//
// [box.Element]: github.com/matzehuels/dotgrid/pkg/box.Element
// [box.Registry]: github.com/matzehuels/dotgrid/pkg/box.Registry
// [drag.Mover]: github.com/matzehuels/dotgrid/pkg/drag.Mover
package scene
