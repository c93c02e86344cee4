/*
Package filesystem stores reference images and derived formats on a local
(or NFS mounted) directory.

Local maps slash separated keys such as "gallery/ab/cd/thumb_x_gallery_small.jpg"
to files under its root and refuses keys that would escape it. Writes go to
a sibling temp file which is renamed into place, so readers never see a
partial thumbnail.

Open and Exists retry ESTALE (stale NFS file handle) errors with capped
exponential backoff:

	store, err := filesystem.NewLocal("/media",
	    filesystem.WithObserver(metrics.NewFilesystemObserver()))
	rc, err := store.Open(ctx, "gallery/ab/cd/abcd.jpg")

Operation durations, errors and retries are reported to an Observer; the
metrics package provides the Prometheus implementation.
*/
package filesystem
