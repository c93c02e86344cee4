/*
Package workers sizes and runs bounded worker pools.

Sizing uses GOMAXPROCS rather than runtime.NumCPU so that container CPU
limits are respected:

	n := workers.ForMixed(8) // thumbnail generation: read, resize, write

The THUMBNAIL_WORKERS environment variable overrides the computed count,
still capped by the limit passed in.

ForEach runs n indexed tasks on at most limit goroutines and returns the
first error. Tasks that have not started when an error occurs, or when the
context is cancelled, are skipped:

	err := workers.ForEach(ctx, workers.ForMixed(8), len(formats), func(ctx context.Context, i int) error {
		return render(ctx, formats[i])
	})
*/
package workers
