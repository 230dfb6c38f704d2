// Package occlusion reclassifies every grid cell once per animation frame.
//
// # Classification
//
// Each cell is tested by its pixel center against the closed rectangles of
// all boxes. Cells inside any box become [grid.Blank]; the overlay layer draws
// box content there. Every other cell becomes [grid.Background].
//
// # Pointer Trail
//
// The cell under the pointer, if it is outside every box, is marked
// [grid.Trail] and stamped with the frame time. Stamped cells keep rendering
// as trail while their age is within the decay window (100 ms by default,
// inclusive) and they are still plain background. Older stamps, and stamps on
// cells that a box now covers, are cleared.
//
// # Borders
//
// After classification, every box border is drawn on top in registry order:
// horizontal edges, then vertical edges, then the four corners. Writes outside
// the grid are skipped. Where borders of different boxes meet, the box drawn
// last wins.
//
// The update is a function of (boxes, pointer, previous stamps, now); the
// only state carried between frames is the stamp array inside the grid.
package occlusion
