package resize

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"media-library/internal/format"
	"media-library/internal/media"
)

func asset(w, h int) *media.Asset {
	return &media.Asset{ID: "a1", ProviderReference: "abc.jpg", Width: w, Height: h}
}

func TestSimpleResizerBox(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		w, h     int
		settings format.Settings
		want     media.Box
	}{
		{"width only", ModeInset, 1600, 1200, format.Settings{Width: 100}, media.Box{Width: 100, Height: 75}},
		{"large width", ModeInset, 1600, 1200, format.Settings{Width: 800}, media.Box{Width: 800, Height: 600}},
		{"height only", ModeInset, 1600, 1200, format.Settings{Height: 300}, media.Box{Width: 400, Height: 300}},
		{"inset both sides", ModeInset, 1600, 1200, format.Settings{Width: 200, Height: 200}, media.Box{Width: 200, Height: 150}},
		{"outbound clamps", ModeOutbound, 1600, 1200, format.Settings{Width: 200, Height: 200}, media.Box{Width: 200, Height: 200}},
		{"portrait inset", ModeInset, 600, 900, format.Settings{Width: 300, Height: 300}, media.Box{Width: 200, Height: 300}},
		{"upscale allowed", ModeInset, 100, 50, format.Settings{Width: 400}, media.Box{Width: 400, Height: 200}},
		{"constraint prevents upscale", ModeInset, 100, 50, format.Settings{Width: 400, Constraint: true}, media.Box{Width: 100, Height: 50}},
		{"rounding", ModeInset, 333, 222, format.Settings{Width: 100}, media.Box{Width: 100, Height: 67}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSimpleResizer(ImagingEngine{}, tt.mode)
			got, err := r.Box(asset(tt.w, tt.h), tt.settings)
			if err != nil {
				t.Fatalf("Box() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Box() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSimpleResizerBoxErrors(t *testing.T) {
	tests := []struct {
		name     string
		resizer  *SimpleResizer
		asset    *media.Asset
		settings format.Settings
	}{
		{"no target", NewSimpleResizer(ImagingEngine{}, ModeInset), asset(100, 100), format.Settings{}},
		{"no intrinsic width", NewSimpleResizer(ImagingEngine{}, ModeInset), asset(0, 100), format.Settings{Width: 10}},
		{"no intrinsic height", NewSimpleResizer(ImagingEngine{}, ModeInset), asset(100, 0), format.Settings{Width: 10}},
		{"bad mode", &SimpleResizer{engine: ImagingEngine{}, mode: "stretch"}, asset(100, 100), format.Settings{Width: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.resizer.Box(tt.asset, tt.settings)
			if !errors.Is(err, ErrResizer) {
				t.Errorf("Box() error = %v, want ErrResizer", err)
			}
		})
	}
}

func TestSquareResizerBox(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		settings format.Settings
		want     media.Box
	}{
		{"square crop then shrink", 1600, 1200, format.Settings{Width: 100, Height: 100}, media.Box{Width: 100, Height: 100}},
		{"width only keeps ratio", 1600, 1200, format.Settings{Width: 100}, media.Box{Width: 100, Height: 75}},
		{"no upscale", 80, 60, format.Settings{Width: 100, Height: 100}, media.Box{Width: 60, Height: 60}},
		{"height only crops", 1600, 1200, format.Settings{Height: 300}, media.Box{Width: 300, Height: 300}},
	}

	r := NewSquareResizer(ImagingEngine{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Box(asset(tt.w, tt.h), tt.settings)
			if err != nil {
				t.Fatalf("Box() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Box() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := r.Box(asset(0, 0), format.Settings{Width: 10}); !errors.Is(err, ErrResizer) {
		t.Errorf("Box() on zero asset error = %v, want ErrResizer", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"inset", "OUTBOUND"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) error = %v", s, err)
		}
	}
	if _, err := ParseMode("fit"); err == nil {
		t.Error("ParseMode(fit) should fail")
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		ref      string
		settings format.Settings
		want     string
	}{
		{"abc.JPG", format.Settings{}, "jpg"},
		{"abc.png", format.Settings{Extension: ".webp"}, "webp"},
		{"abc", format.Settings{}, "jpg"},
	}
	for _, tt := range tests {
		got := Extension(&media.Asset{ProviderReference: tt.ref}, tt.settings)
		if got != tt.want {
			t.Errorf("Extension(%q, %+v) = %q, want %q", tt.ref, tt.settings, got, tt.want)
		}
	}
}

func TestChainPicksNamedResizer(t *testing.T) {
	simple := NewSimpleResizer(ImagingEngine{}, ModeInset)
	square := NewSquareResizer(ImagingEngine{})
	c := NewChain(simple, map[string]Resizer{"square": square})

	a := asset(1600, 1200)
	got, err := c.Box(a, format.Settings{Width: 100, Height: 100, Resizer: "square"})
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	if got != (media.Box{Width: 100, Height: 100}) {
		t.Errorf("square Box() = %+v", got)
	}

	got, err = c.Box(a, format.Settings{Width: 100, Height: 100, Resizer: "unknown"})
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	if got != (media.Box{Width: 100, Height: 75}) {
		t.Errorf("fallback Box() = %+v", got)
	}
}

func encodeTestImage(t *testing.T, w, h int, useJPEG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	var err error
	if useJPEG {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cfg.Width, cfg.Height, name
}

func TestSimpleResizerResize(t *testing.T) {
	src := encodeTestImage(t, 160, 120, true)
	r := NewSimpleResizer(ImagingEngine{}, ModeInset)

	out, err := r.Resize(context.Background(), asset(160, 120), src, format.Settings{Width: 40, Quality: 70})
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	w, h, name := decodedSize(t, out)
	if w != 40 || h != 30 || name != "jpeg" {
		t.Errorf("Resize() output = %dx%d %s, want 40x30 jpeg", w, h, name)
	}
}

func TestSquareResizerResizeCrops(t *testing.T) {
	src := encodeTestImage(t, 160, 120, false)
	r := NewSquareResizer(ImagingEngine{})

	a := asset(160, 120)
	a.ProviderReference = "abc.png"
	out, err := r.Resize(context.Background(), a, src, format.Settings{Width: 50, Height: 50})
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	w, h, name := decodedSize(t, out)
	if w != 50 || h != 50 || name != "png" {
		t.Errorf("Resize() output = %dx%d %s, want 50x50 png", w, h, name)
	}
}

func TestResizeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewSimpleResizer(ImagingEngine{}, ModeInset)
	if _, err := r.Resize(ctx, asset(10, 10), nil, format.Settings{Width: 5}); !errors.Is(err, context.Canceled) {
		t.Errorf("Resize() error = %v, want context.Canceled", err)
	}
}

func TestImagingEngineErrors(t *testing.T) {
	e := ImagingEngine{}
	src := encodeTestImage(t, 10, 10, false)

	if _, err := e.Thumbnail(src, media.Box{Width: 5, Height: 5}, ModeInset, Output{Extension: "xyz", Quality: 80}); !errors.Is(err, ErrResizer) {
		t.Errorf("unsupported extension error = %v, want ErrResizer", err)
	}
	if _, err := e.Thumbnail([]byte("not an image"), media.Box{Width: 5, Height: 5}, ModeInset, Output{Extension: "png"}); !errors.Is(err, ErrResizer) {
		t.Errorf("garbage input error = %v, want ErrResizer", err)
	}
	if _, err := e.Thumbnail(src, media.Box{}, ModeInset, Output{Extension: "png"}); !errors.Is(err, ErrResizer) {
		t.Errorf("empty box error = %v, want ErrResizer", err)
	}
}
