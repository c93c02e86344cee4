package media

import (
	"math"
	"time"
)

// Status is the provider status of an asset.
type Status string

const (
	// StatusOK marks an asset whose reference decoded correctly.
	StatusOK Status = "ok"
	// StatusPending marks an asset that has not been processed yet.
	StatusPending Status = "pending"
	// StatusError marks an asset whose content could not be decoded.
	StatusError Status = "error"
)

// Box is a width x height pair in pixels.
type Box struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether either side is zero.
func (b Box) IsZero() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Scale multiplies both sides by ratio, rounding half away from zero.
func (b Box) Scale(ratio float64) Box {
	return Box{
		Width:  int(math.Round(float64(b.Width) * ratio)),
		Height: int(math.Round(float64(b.Height) * ratio)),
	}
}

// Widen scales the box proportionally so that its width equals width.
func (b Box) Widen(width int) Box {
	if b.Width == 0 {
		return Box{Width: width}
	}
	return b.Scale(float64(width) / float64(b.Width))
}

// Asset is an uploaded media item and its intrinsic properties.
type Asset struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Context           string    `json:"context"`
	ProviderName      string    `json:"providerName"`
	ProviderReference string    `json:"providerReference"`
	ContentType       string    `json:"contentType,omitempty"`
	Size              int64     `json:"size"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Status            Status    `json:"status"`
	CDNIsFlushable    bool      `json:"cdnIsFlushable"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// ContentPath points at freshly uploaded bytes on local disk. It is only
	// set while an upload is being ingested.
	ContentPath string `json:"-"`
}

// Box returns the intrinsic dimensions of the asset.
func (a *Asset) Box() Box {
	return Box{Width: a.Width, Height: a.Height}
}
