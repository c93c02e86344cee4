// Package resize computes the boxes of derived formats and renders them.
//
// A Resizer answers two questions for a format's settings: how large the
// derived image will be (Box), and what its bytes are (Resize). Box is pure
// arithmetic over the asset's intrinsic dimensions and is what the
// rendering planner calls; Resize hands the pixels to an Engine.
//
// Two engines are available. ImagingEngine is pure Go and always works.
// VipsEngine uses libvips, which shrinks JPEGs during decode and keeps
// memory low for large originals.
package resize
