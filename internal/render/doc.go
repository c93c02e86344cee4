// Package render turns an asset and a requested format into the parameters
// of an image element.
//
// Planner.Plan is the entry point. It produces one of two shapes:
//
//   - a flat set of img attributes (alt, title, src, width, height and,
//     outside the admin format, srcset and sizes)
//   - a picture group: an ordered list of sources keyed by media query plus
//     the img fallback
//
// Options selects the shape. Srcset and Picture are mutually exclusive;
// everything in Attributes is passed through and wins over computed keys.
//
// URLs are resolved by URLResolver: the reference format maps to the stored
// original, every other format to its thumbnail, and relative paths are
// prefixed by the CDN.
package render
