// Package mediatypes holds the extension and MIME tables used to validate
// uploads.
//
// It has no dependencies beyond the standard library so any package can
// import it without cycles.
//
//	ext := mediatypes.Extension("Photo.JPG") // ".jpg"
//	if mediatypes.IsImageExtension(ext) {
//	    mime := mediatypes.GetMimeType(ext) // "image/jpeg"
//	}
package mediatypes
