// Package format holds the registry of named derived formats.
//
// A format name is conventionally "<context>_<label>", for example
// "gallery_small". Two identifiers are special: Reference, the original
// upload, which is never registered, and Admin, the back-office thumbnail,
// which is registered like any other format.
//
// Formats belong to a context by name prefix. That rule lives in BelongsTo
// and nowhere else.
package format
