// Package media defines media assets and the metadata extraction step run
// on ingestion.
//
// An Asset carries its intrinsic size, box and status. The Extractor reads
// those properties from uploaded bytes, or from a temporary copy of the
// stored reference when no upload is at hand. Extraction failures are
// returned as values; Apply turns them into an error status so that a batch
// of uploads keeps going.
package media
