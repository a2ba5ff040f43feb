package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyboard/internal/project"
	"storyboard/internal/services"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
}

func decodedSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	return cfg.Width, cfg.Height
}

func ptr(s string) *string { return &s }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("asset-%d", n)
	}
}

func TestThumbnailDimensions(t *testing.T) {
	tests := []struct {
		w, h, size   int
		wantW, wantH int
	}{
		{100, 50, 300, 100, 50},
		{3000, 1000, 300, 300, 100},
		{1000, 3000, 300, 100, 300},
		{300, 300, 300, 300, 300},
		{601, 200, 300, 300, 100},
		{5000, 1, 300, 300, 1},
		{0, 10, 300, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.w, tt.h), func(t *testing.T) {
			w, h := ThumbnailDimensions(tt.w, tt.h, tt.size)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImportAssetSmallImageNotUpscaled(t *testing.T) {
	projectDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "Small.PNG")
	writePNG(t, src, 100, 50)

	p := New(nil, WithIDGenerator(sequentialIDs()))
	asset, err := p.ImportAsset(context.Background(), projectDir, "s1", src)
	if err != nil {
		t.Fatalf("ImportAsset: %v", err)
	}
	if asset.ID != "asset-1" || asset.Filename != "asset-1.png" {
		t.Fatalf("unexpected identity %+v", asset)
	}
	if asset.Kind != project.KindImage {
		t.Fatalf("kind = %q", asset.Kind)
	}
	if asset.OriginalPath != src {
		t.Fatalf("original path = %q", asset.OriginalPath)
	}
	if asset.ThumbnailPath == nil {
		t.Fatal("expected thumbnail")
	}
	if want := ".thumbnails/scene-s1/asset-1_thumb.png"; *asset.ThumbnailPath != want {
		t.Fatalf("thumbnail path = %q, want %q", *asset.ThumbnailPath, want)
	}
	w, h := decodedSize(t, ThumbnailAbsolutePath(projectDir, *asset.ThumbnailPath))
	if w > 100 || h > 50 {
		t.Fatalf("thumbnail %dx%d larger than source 100x50", w, h)
	}

	copied, err := os.ReadFile(AssetAbsolutePath(projectDir, "s1", asset.Filename))
	if err != nil {
		t.Fatalf("read copied asset: %v", err)
	}
	original, _ := os.ReadFile(src)
	if !bytes.Equal(copied, original) {
		t.Fatal("copied asset differs from source")
	}
}

func TestImportAssetLargeImageScaledDown(t *testing.T) {
	projectDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "wide.jpg")
	writeJPEG(t, src, 3000, 1000)

	asset, err := New(nil).ImportAsset(context.Background(), projectDir, "s1", src)
	if err != nil {
		t.Fatalf("ImportAsset: %v", err)
	}
	if asset.ThumbnailPath == nil {
		t.Fatal("expected thumbnail")
	}
	w, h := decodedSize(t, ThumbnailAbsolutePath(projectDir, *asset.ThumbnailPath))
	if w != 300 || h != 100 {
		t.Fatalf("thumbnail = %dx%d, want 300x100", w, h)
	}
}

func TestImportAssetHonorsThumbnailSize(t *testing.T) {
	projectDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "square.png")
	writePNG(t, src, 400, 400)

	asset, err := New(nil, WithThumbnailSize(64)).ImportAsset(context.Background(), projectDir, "s1", src)
	if err != nil {
		t.Fatalf("ImportAsset: %v", err)
	}
	w, h := decodedSize(t, ThumbnailAbsolutePath(projectDir, *asset.ThumbnailPath))
	if w != 64 || h != 64 {
		t.Fatalf("thumbnail = %dx%d, want 64x64", w, h)
	}
}

func TestImportAssetWithoutThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantKind project.AssetKind
	}{
		{name: "svg", file: "logo.svg", content: "<svg xmlns='http://www.w3.org/2000/svg'/>", wantKind: project.KindImage},
		{name: "pdf", file: "notes.PDF", content: "%PDF-1.4", wantKind: project.KindReference},
		{name: "no extension", file: "README", content: "hello", wantKind: project.KindReference},
		{name: "corrupt png", file: "broken.png", content: "not really a png", wantKind: project.KindImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectDir := t.TempDir()
			src := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(src, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			asset, err := New(nil).ImportAsset(context.Background(), projectDir, "s1", src)
			if err != nil {
				t.Fatalf("ImportAsset: %v", err)
			}
			if asset.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", asset.Kind, tt.wantKind)
			}
			if asset.ThumbnailPath != nil {
				t.Fatalf("expected no thumbnail, got %q", *asset.ThumbnailPath)
			}
			if !strings.EqualFold(filepath.Ext(asset.Filename), filepath.Ext(src)) {
				t.Fatalf("filename %q lost extension", asset.Filename)
			}
			if _, err := os.Stat(AssetAbsolutePath(projectDir, "s1", asset.Filename)); err != nil {
				t.Fatalf("asset not copied: %v", err)
			}
		})
	}
}

func TestImportAssetMissingSource(t *testing.T) {
	projectDir := t.TempDir()
	_, err := New(nil, WithIDGenerator(sequentialIDs())).ImportAsset(context.Background(), projectDir, "s1", filepath.Join(projectDir, "missing.png"))
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if _, statErr := os.Stat(AssetAbsolutePath(projectDir, "s1", "asset-1.png")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial asset file left behind: %v", statErr)
	}
}

func TestImportBatchStopsAtFirstFailure(t *testing.T) {
	projectDir := t.TempDir()
	srcDir := t.TempDir()
	first := filepath.Join(srcDir, "one.txt")
	third := filepath.Join(srcDir, "three.txt")
	for _, f := range []string{first, third} {
		if err := os.WriteFile(f, []byte(f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	missing := filepath.Join(srcDir, "two.txt")

	p := New(nil, WithIDGenerator(sequentialIDs()))
	imported, err := p.ImportBatch(context.Background(), projectDir, "s1", []string{first, missing, third})
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if len(imported) != 1 || imported[0].OriginalPath != first {
		t.Fatalf("expected only the first asset, got %#v", imported)
	}
	entries, err := os.ReadDir(SceneAssetDir(projectDir, "s1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one file on disk, got %d", len(entries))
	}
	// ids are handed out per attempt; the third path never got one
	if id := p.newID(); id != "asset-3" {
		t.Fatalf("third import was attempted (next id %q)", id)
	}
}

func TestImportBatchSkipsBlankPaths(t *testing.T) {
	projectDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	imported, err := New(nil).ImportBatch(context.Background(), projectDir, "s1", []string{"", src, "   "})
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if len(imported) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(imported))
	}
}

func TestDeleteAssetIsIdempotent(t *testing.T) {
	projectDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "pic.png")
	writePNG(t, src, 20, 20)

	p := New(nil)
	asset, err := p.ImportAsset(context.Background(), projectDir, "s1", src)
	if err != nil {
		t.Fatalf("ImportAsset: %v", err)
	}
	if err := p.DeleteAsset(context.Background(), projectDir, "s1", asset); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := p.DeleteAsset(context.Background(), projectDir, "s1", asset); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	for _, path := range []string{
		AssetAbsolutePath(projectDir, "s1", asset.Filename),
		ThumbnailAbsolutePath(projectDir, *asset.ThumbnailPath),
	} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s still present: %v", path, err)
		}
	}

	p.RemoveSceneDirs(projectDir, "s1")
	if _, err := os.Stat(SceneAssetDir(projectDir, "s1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty scene dir not removed: %v", err)
	}
}

func TestDeleteAssetRefusesPathsOutsideProject(t *testing.T) {
	base := t.TempDir()
	projectDir := filepath.Join(base, "project")
	victim := filepath.Join(base, "victim.txt")
	if err := os.WriteFile(victim, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		sceneID string
		asset   project.Asset
	}{
		{name: "thumbnail", sceneID: "s1", asset: project.Asset{ID: "a", Filename: "a.png", ThumbnailPath: ptr("../victim.txt")}},
		{name: "filename", sceneID: "s1", asset: project.Asset{ID: "a", Filename: "../../../victim.txt"}},
		{name: "scene id", sceneID: "x/../../..", asset: project.Asset{ID: "a", Filename: "victim.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(nil).DeleteAsset(context.Background(), projectDir, tt.sceneID, tt.asset)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if _, err := os.Stat(victim); err != nil {
				t.Fatalf("file outside project removed: %v", err)
			}
		})
	}
}

func TestInsideProject(t *testing.T) {
	root := filepath.Join("work", "demo")
	tests := []struct {
		target string
		want   bool
	}{
		{filepath.Join(root, "assets", "scene-a", "x.png"), true},
		{filepath.Join(root, "..demo", "x.png"), true},
		{root, false},
		{filepath.Join(root, ".."), false},
		{filepath.Join(root, "..", "other", "x.png"), false},
		{filepath.Join("work", "demo-2", "x.png"), false},
	}
	for _, tt := range tests {
		if got := insideProject(root, tt.target); got != tt.want {
			t.Errorf("insideProject(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	root := filepath.Join("projects", "demo")
	if got, want := AssetAbsolutePath(root, "abc", "x.png"), filepath.Join(root, "assets", "scene-abc", "x.png"); got != want {
		t.Fatalf("AssetAbsolutePath = %q, want %q", got, want)
	}
	if got, want := ThumbnailAbsolutePath(root, ".thumbnails/scene-abc/x_thumb.png"), filepath.Join(root, ".thumbnails", "scene-abc", "x_thumb.png"); got != want {
		t.Fatalf("ThumbnailAbsolutePath = %q, want %q", got, want)
	}
}

func TestClassify(t *testing.T) {
	for ext, want := range map[string]project.AssetKind{
		".png": project.KindImage, ".JPEG": project.KindImage, ".webp": project.KindImage,
		".bmp": project.KindImage, ".gif": project.KindImage, ".svg": project.KindImage,
		".mp4": project.KindReference, ".wav": project.KindReference, "": project.KindReference,
	} {
		if got := Classify(ext); got != want {
			t.Errorf("Classify(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestRevealCommand(t *testing.T) {
	target := filepath.Join("/", "p", "a.png")
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"-R", target}},
		{"windows", "explorer", []string{"/select,", target}},
		{"linux", "xdg-open", []string{filepath.Dir(target)}},
	}
	for _, tt := range tests {
		name, args := RevealCommand(tt.goos, target)
		if name != tt.wantName || fmt.Sprint(args) != fmt.Sprint(tt.wantArgs) {
			t.Errorf("%s: got %s %v, want %s %v", tt.goos, name, args, tt.wantName, tt.wantArgs)
		}
	}
}

func TestReveal(t *testing.T) {
	var gotName string
	orig := startCommand
	startCommand = func(name string, args ...string) error {
		gotName = name
		return nil
	}
	t.Cleanup(func() { startCommand = orig })

	if err := Reveal(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	existing := filepath.Join(t.TempDir(), "here.txt")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Reveal(existing); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if gotName == "" {
		t.Fatal("reveal command not launched")
	}
}
