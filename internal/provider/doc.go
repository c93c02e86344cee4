// Package provider ties ingestion, metadata, thumbnails and rendering
// together for image assets.
//
// An ImageProvider is what handlers talk to. Ingest validates an upload,
// records its intrinsic properties, stores the reference and renders the
// derived formats of the asset's context. The remaining methods answer
// questions about stored assets: their render parameters and URLs.
package provider
