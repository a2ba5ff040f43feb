package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"storyboard/internal/fileutil"
	"storyboard/internal/logging"
)

var errEmptyImage = errors.New("decoded image is empty")

// ThumbnailDimensions scales width x height uniformly to fit within a
// size x size square. The factor never exceeds 1 and results are rounded to
// the nearest pixel, with a floor of one pixel per side.
func ThumbnailDimensions(width, height, size int) (int, int) {
	if width <= 0 || height <= 0 || size <= 0 {
		return 0, 0
	}
	ratio := math.Min(math.Min(float64(size)/float64(width), float64(size)/float64(height)), 1)
	w := int(math.Round(float64(width) * ratio))
	h := int(math.Round(float64(height) * ratio))
	return max(w, 1), max(h, 1)
}

// generateThumbnail writes a PNG preview for src and returns its
// project-relative path, or nil when the preview could not be produced.
func (p *Pipeline) generateThumbnail(ctx context.Context, projectDir, sceneID, assetID, src string) *string {
	data, err := renderThumbnail(src, p.thumbSize)
	if err == nil {
		rel := thumbnailRelPath(sceneID, assetID)
		dest := ThumbnailAbsolutePath(projectDir, rel)
		if err = os.MkdirAll(SceneThumbnailDir(projectDir, sceneID), 0o755); err == nil {
			if err = fileutil.WriteFileAtomic(dest, data, 0o644); err == nil {
				return &rel
			}
		}
	}
	logging.WarnWithContext(logging.WithContext(ctx, p.logger), "thumbnail generation failed", "thumbnail_failed",
		logging.AssetID(assetID),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "the file may be corrupt or in an unsupported encoding"),
		logging.Impact("asset imported without a preview"))
	return nil
}

func renderThumbnail(src string, size int) ([]byte, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errEmptyImage
	}

	w, h := ThumbnailDimensions(bounds.Dx(), bounds.Dy(), size)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
