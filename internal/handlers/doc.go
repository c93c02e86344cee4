// Package handlers implements the HTTP API of the media library.
//
// Endpoints:
//
//	POST   /api/media                 upload (multipart: file, context, name, description)
//	GET    /api/media?context=        list a context, newest first
//	GET    /api/media/{id}            asset record
//	DELETE /api/media/{id}            remove the asset and its files
//	POST   /api/media/{id}/metadata   re-read intrinsic properties
//	GET    /api/media/{id}/render     render parameters as JSON or HTML
//	GET    /api/media/{id}/urls       public and private URL of one format
//	GET    /api/formats?context=      registered formats
//
// Health and version endpoints live alongside for probes and tooling.
// Domain errors are mapped to status codes by writeError.
package handlers
