package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 8), uint8(y * 8), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

type fakeReferences struct {
	data []byte
	err  error
}

func (f fakeReferences) ReferenceFile(context.Context, *Asset) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not cleaned up: %d entries left", len(entries))
	}
}

func TestConfigDecoder(t *testing.T) {
	box, err := ConfigDecoder{}.Open(writeTemp(t, "a.png", pngBytes(t, 30, 20)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if box != (Box{30, 20}) {
		t.Errorf("Open() = %+v", box)
	}

	for name, path := range map[string]string{
		"garbage": writeTemp(t, "a.jpg", []byte("not an image")),
		"missing": filepath.Join(t.TempDir(), "nope.png"),
	} {
		if _, err := (ConfigDecoder{}).Open(path); !errors.Is(err, ErrDecode) {
			t.Errorf("%s: Open() error = %v, want ErrDecode", name, err)
		}
	}
}

func TestExtractFromContentPath(t *testing.T) {
	data := pngBytes(t, 30, 20)
	asset := &Asset{ID: "a", ContentPath: writeTemp(t, "upload.png", data)}

	md, err := NewExtractor(NewImageKind(nil), nil, "").Extract(context.Background(), asset)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if md.Size != int64(len(data)) || md.Box != (Box{30, 20}) {
		t.Errorf("Extract() = %+v", md)
	}
	if asset.Width != 0 || asset.Size != 0 {
		t.Error("Extract mutated the asset")
	}
}

func TestExtractFromReference(t *testing.T) {
	data := pngBytes(t, 12, 34)
	tempDir := t.TempDir()
	e := NewExtractor(NewImageKind(nil), fakeReferences{data: data}, tempDir)

	md, err := e.Extract(context.Background(), &Asset{ID: "a"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if md.Size != int64(len(data)) || md.Box != (Box{12, 34}) {
		t.Errorf("Extract() = %+v", md)
	}
	assertEmptyDir(t, tempDir)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		refs    ReferenceSource
		tempDir func(t *testing.T) string
		asset   func(t *testing.T) *Asset
		want    error
	}{
		{
			name:  "no reference source",
			asset: func(*testing.T) *Asset { return &Asset{ID: "a"} },
			want:  ErrTempResource,
		},
		{
			name:  "reference open fails",
			refs:  fakeReferences{err: os.ErrNotExist},
			asset: func(*testing.T) *Asset { return &Asset{ID: "a"} },
			want:  ErrTempResource,
		},
		{
			name:    "temp dir missing",
			refs:    fakeReferences{data: []byte("x")},
			tempDir: func(t *testing.T) string { return filepath.Join(t.TempDir(), "gone") },
			asset:   func(*testing.T) *Asset { return &Asset{ID: "a"} },
			want:    ErrTempResource,
		},
		{
			name:  "undecodable reference",
			refs:  fakeReferences{data: []byte("not an image")},
			asset: func(*testing.T) *Asset { return &Asset{ID: "a"} },
			want:  ErrDecode,
		},
		{
			name: "undecodable upload",
			asset: func(t *testing.T) *Asset {
				return &Asset{ID: "a", ContentPath: writeTemp(t, "u.jpg", []byte("nope"))}
			},
			want: ErrDecode,
		},
		{
			name: "missing upload",
			asset: func(t *testing.T) *Asset {
				return &Asset{ID: "a", ContentPath: filepath.Join(t.TempDir(), "gone.jpg")}
			},
			want: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			if tt.tempDir != nil {
				tempDir = tt.tempDir(t)
			}
			e := NewExtractor(NewImageKind(nil), tt.refs, tempDir)
			_, err := e.Extract(context.Background(), tt.asset(t))
			if !errors.Is(err, tt.want) {
				t.Errorf("Extract() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	asset := &Asset{Status: StatusPending, Size: 5, Width: 1, Height: 1}
	Apply(asset, Metadata{Size: 100, Box: Box{30, 20}}, nil)
	if asset.Size != 100 || asset.Width != 30 || asset.Height != 20 {
		t.Errorf("unexpected asset %+v", asset)
	}
	if asset.Status != StatusPending {
		t.Errorf("Status = %s, want unchanged", asset.Status)
	}

	Apply(asset, Metadata{Size: 7, Box: Box{1, 1}}, ErrDecode)
	if asset.Status != StatusError || asset.Size != 0 || asset.Width != 0 || asset.Height != 0 {
		t.Errorf("unexpected asset after failure %+v", asset)
	}
}

func TestUpdate(t *testing.T) {
	e := NewExtractor(NewImageKind(nil), fakeReferences{data: pngBytes(t, 8, 6)}, t.TempDir())
	asset := &Asset{ID: "a", Status: StatusOK}
	if err := e.Update(context.Background(), asset); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if asset.Width != 8 || asset.Height != 6 || asset.Status != StatusOK {
		t.Errorf("unexpected asset %+v", asset)
	}

	e = NewExtractor(NewImageKind(nil), fakeReferences{data: []byte("junk")}, t.TempDir())
	if err := e.Update(context.Background(), asset); !errors.Is(err, ErrDecode) {
		t.Fatalf("Update() error = %v, want ErrDecode", err)
	}
	if asset.Status != StatusError || asset.Width != 0 {
		t.Errorf("unexpected asset %+v", asset)
	}
}

func TestUpdateBadContentRepeated(t *testing.T) {
	tempDir := t.TempDir()
	e := NewExtractor(NewImageKind(nil), fakeReferences{data: []byte("not an image")}, tempDir)
	asset := &Asset{ID: "a", Status: StatusOK, Size: 2048, Width: 640, Height: 480}

	for i := 0; i < 2; i++ {
		if err := e.Update(context.Background(), asset); !errors.Is(err, ErrDecode) {
			t.Fatalf("Update() #%d error = %v, want ErrDecode", i+1, err)
		}
		if asset.Status != StatusError || asset.Size != 0 || asset.Width != 0 || asset.Height != 0 {
			t.Errorf("after Update() #%d asset = %+v", i+1, asset)
		}
		assertEmptyDir(t, tempDir)
	}
}
