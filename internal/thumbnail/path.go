package thumbnail

import (
	"path"
	"strings"

	"media-library/internal/media"
)

// PathGenerator returns the storage directory of an asset.
type PathGenerator interface {
	Path(asset *media.Asset) string
}

// UUIDPathGenerator shards assets as <context>/<id[0:2]>/<id[2:4]>.
type UUIDPathGenerator struct{}

// Path implements PathGenerator. Identifiers shorter than four characters
// yield shorter shards.
func (UUIDPathGenerator) Path(asset *media.Asset) string {
	id := strings.ReplaceAll(asset.ID, "-", "")
	first, second := shard(id, 0), shard(id, 2)
	return path.Join(asset.Context, first, second)
}

func shard(id string, at int) string {
	if at >= len(id) {
		return ""
	}
	return id[at:min(at+2, len(id))]
}
