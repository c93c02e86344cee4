package provider

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"media-library/internal/cdn"
	"media-library/internal/filesystem"
	"media-library/internal/format"
	"media-library/internal/media"
	"media-library/internal/render"
	"media-library/internal/resize"
	"media-library/internal/thumbnail"
)

type recordingFlusher struct {
	paths []string
}

func (f *recordingFlusher) Flush(path string) string {
	f.paths = append(f.paths, path)
	return strconv.Itoa(len(f.paths))
}

type fixture struct {
	provider *ImageProvider
	registry *format.Registry
	storage  *filesystem.Local
	thumbs   *thumbnail.Generator
	tempDir  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	storage, err := filesystem.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	reg := format.NewRegistry()
	for name, s := range map[string]format.Settings{
		"gallery_small": {Width: 100},
		"gallery_large": {Width: 800},
		format.Admin:    {Width: 100},
	} {
		if err := reg.Register(name, s); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	resizer := resize.NewSimpleResizer(resize.ImagingEngine{}, resize.ModeInset)
	thumbs := thumbnail.NewGenerator(storage, nil, reg, resizer, 2)
	kind := media.NewImageKind(nil)
	tempDir := t.TempDir()
	extractor := media.NewExtractor(kind, thumbs, tempDir)
	urls := render.NewURLResolver(thumbs, thumbs, cdn.New("/media"))
	planner := render.NewPlanner(kind, reg, resizer, urls)

	return fixture{
		provider: NewImageProvider(kind, extractor, storage, thumbs, planner, urls, tempDir),
		registry: reg,
		storage:  storage,
		thumbs:   thumbs,
		tempDir:  tempDir,
	}
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func (f fixture) exists(t *testing.T, key string) bool {
	t.Helper()
	ok, err := f.storage.Exists(context.Background(), key)
	if err != nil {
		t.Fatalf("Exists(%s) error = %v", key, err)
	}
	return ok
}

func (f fixture) assertTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir has %d leftover files", len(entries))
	}
}

func TestIngest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := jpegBytes(t, 1600, 1200)

	asset := &media.Asset{Name: "Sunset", Context: "gallery", ContentType: "image/jpeg"}
	if err := f.provider.Ingest(ctx, asset, bytes.NewReader(data), "Sunset.JPG"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if asset.ID == "" {
		t.Error("Ingest() did not assign an id")
	}
	if asset.Status != media.StatusOK {
		t.Errorf("Status = %s, want ok", asset.Status)
	}
	if asset.Width != 1600 || asset.Height != 1200 || asset.Size != int64(len(data)) {
		t.Errorf("metadata = %dx%d %d bytes, want 1600x1200 %d", asset.Width, asset.Height, asset.Size, len(data))
	}
	if !strings.HasSuffix(asset.ProviderReference, ".jpg") || asset.ProviderName != "image" {
		t.Errorf("provider fields = %q %q", asset.ProviderName, asset.ProviderReference)
	}
	if asset.ContentPath != "" {
		t.Error("ContentPath left set after Ingest()")
	}

	if !f.exists(t, f.thumbs.ReferencePath(asset)) {
		t.Error("reference not stored")
	}
	for _, name := range []string{"gallery_small", "gallery_large", format.Admin} {
		if !f.exists(t, f.thumbs.PublicURL(asset, name)) {
			t.Errorf("format %s not generated", name)
		}
	}
	f.assertTempDirEmpty(t)
}

func TestIngestUndecodableContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset := &media.Asset{Name: "broken", Context: "gallery"}
	if err := f.provider.Ingest(ctx, asset, strings.NewReader("definitely not a jpeg"), "broken.jpg"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if asset.Status != media.StatusError || asset.Size != 0 || asset.Width != 0 || asset.Height != 0 {
		t.Errorf("asset = %+v, want error status and zero metadata", asset)
	}
	if !f.exists(t, f.thumbs.ReferencePath(asset)) {
		t.Error("reference not stored for undecodable content")
	}
	if f.exists(t, f.thumbs.PublicURL(asset, "gallery_small")) {
		t.Error("formats generated for undecodable content")
	}
	f.assertTempDirEmpty(t)

	err := f.provider.UpdateMetadata(ctx, asset)
	if !errors.Is(err, media.ErrDecode) || asset.Status != media.StatusError {
		t.Errorf("UpdateMetadata() = %v, status %s; want ErrDecode and error status", err, asset.Status)
	}
	if err := f.provider.GenerateFormats(ctx, asset); err == nil {
		t.Error("GenerateFormats() on errored asset should fail")
	}
}

func TestIngestRejectsUnsupportedTypes(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		filename, contentType string
	}{
		{"notes.txt", "text/plain"},
		{"photo.jpg", "video/mp4"},
	}
	for _, tt := range tests {
		asset := &media.Asset{Context: "gallery", ContentType: tt.contentType}
		err := f.provider.Ingest(context.Background(), asset, strings.NewReader("x"), tt.filename)
		if !errors.Is(err, media.ErrUnsupportedType) {
			t.Errorf("Ingest(%s, %s) error = %v, want ErrUnsupportedType", tt.filename, tt.contentType, err)
		}
	}
}

func TestUpdateMetadataFromStoredReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset := &media.Asset{Name: "a", Context: "gallery"}
	if err := f.provider.Ingest(ctx, asset, bytes.NewReader(jpegBytes(t, 64, 48)), "a.jpg"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	asset.Width, asset.Height, asset.Size = 1, 1, 1
	if err := f.provider.UpdateMetadata(ctx, asset); err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}
	if asset.Width != 64 || asset.Height != 48 || asset.Size == 1 {
		t.Errorf("metadata = %dx%d %d bytes", asset.Width, asset.Height, asset.Size)
	}
	f.assertTempDirEmpty(t)
}

func TestHelperPropertiesAndURLs(t *testing.T) {
	f := newFixture(t)
	asset := &media.Asset{
		ID: "3fa85f64-5717-4562-b3fc-2c963f66afa6", Name: "Sunset", Context: "gallery",
		ProviderReference: "ref.jpg", Width: 1600, Height: 1200, Status: media.StatusOK,
	}

	res, err := f.provider.HelperProperties(asset, "small", render.Options{})
	if err != nil {
		t.Fatalf("HelperProperties() error = %v", err)
	}
	if res.Image.Width != 100 || res.Image.Height != 75 {
		t.Errorf("box = %dx%d, want 100x75", res.Image.Width, res.Image.Height)
	}
	if res.Image.Sizes != "(max-width: 100px) 100vw, 100px" {
		t.Errorf("Sizes = %q", res.Image.Sizes)
	}

	if got, want := f.provider.PublicURL(asset, format.Reference), "/media/gallery/3f/a8/ref.jpg"; got != want {
		t.Errorf("PublicURL(reference) = %q, want %q", got, want)
	}
	want := "/media/gallery/3f/a8/thumb_3fa85f64-5717-4562-b3fc-2c963f66afa6_gallery_small.jpg"
	if got := f.provider.PublicURL(asset, "small"); got != want {
		t.Errorf("PublicURL(small) = %q, want %q", got, want)
	}
	if got := f.provider.PrivateURL(asset, "small"); got != strings.TrimPrefix(want, "/media/") {
		t.Errorf("PrivateURL(small) = %q", got)
	}
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset := &media.Asset{Name: "a", Context: "gallery"}
	if err := f.provider.Ingest(ctx, asset, bytes.NewReader(jpegBytes(t, 64, 48)), "a.jpg"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := f.provider.Remove(ctx, asset); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if f.exists(t, f.thumbs.ReferencePath(asset)) || f.exists(t, f.thumbs.PublicURL(asset, "gallery_small")) {
		t.Error("files left after Remove()")
	}
}

func TestCDNFlush(t *testing.T) {
	tests := []struct {
		name      string
		flushable bool
		action    func(p *ImageProvider, ctx context.Context, a *media.Asset) error
	}{
		{"regenerate flushable", true, (*ImageProvider).GenerateFormats},
		{"remove flushable", true, (*ImageProvider).Remove},
		{"remove not flushable", false, (*ImageProvider).Remove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			flusher := &recordingFlusher{}
			f.provider.SetFlusher(flusher, f.registry)
			ctx := context.Background()

			asset := &media.Asset{Name: "a", Context: "gallery", CDNIsFlushable: tt.flushable}
			if err := f.provider.Ingest(ctx, asset, bytes.NewReader(jpegBytes(t, 64, 48)), "a.jpg"); err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if len(flusher.paths) != 0 {
				t.Fatalf("Ingest() flushed %v", flusher.paths)
			}

			if err := tt.action(f.provider, ctx, asset); err != nil {
				t.Fatalf("action error = %v", err)
			}

			var want []string
			if tt.flushable {
				want = []string{f.provider.PrivateURL(asset, format.Reference)}
				for _, fm := range f.registry.ForContext("gallery") {
					want = append(want, f.provider.PrivateURL(asset, fm.Name))
				}
				if len(want) != 3 {
					t.Fatalf("want %d paths, got %v", 3, want)
				}
			}
			if !reflect.DeepEqual(flusher.paths, want) {
				t.Errorf("flushed %v, want %v", flusher.paths, want)
			}
		})
	}
}
