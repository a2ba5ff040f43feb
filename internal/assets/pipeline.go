package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"storyboard/internal/fileutil"
	"storyboard/internal/logging"
	"storyboard/internal/project"
	"storyboard/internal/services"
)

// DefaultThumbnailSize is the bounding square for generated previews.
const DefaultThumbnailSize = 300

const component = "assets"

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".svg":  {},
}

// vector formats are classified as images but never rasterized
var vectorExtensions = map[string]struct{}{
	".svg": {},
}

// Pipeline imports and removes asset files for a project directory.
type Pipeline struct {
	logger    *slog.Logger
	thumbSize int
	newID     func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithThumbnailSize sets the thumbnail bounding square. Non-positive values
// are ignored.
func WithThumbnailSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.thumbSize = size
		}
	}
}

// WithIDGenerator overrides asset identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New constructs a Pipeline. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		logger:    logging.NewComponentLogger(logger, component),
		thumbSize: DefaultThumbnailSize,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classify maps a file extension to an asset kind.
func Classify(ext string) project.AssetKind {
	if _, ok := imageExtensions[strings.ToLower(ext)]; ok {
		return project.KindImage
	}
	return project.KindReference
}

// ImportAsset copies sourcePath into the scene's asset directory and returns
// the new Asset record. A failed copy leaves no file behind and returns an
// ErrIO-marked error.
func (p *Pipeline) ImportAsset(ctx context.Context, projectDir, sceneID, sourcePath string) (project.Asset, error) {
	ctx = services.WithSceneID(services.WithProjectDir(ctx, projectDir), sceneID)
	logger := logging.WithContext(ctx, p.logger)

	ext := strings.ToLower(filepath.Ext(sourcePath))
	id := p.newID()
	filename := id + ext

	sceneDir := SceneAssetDir(projectDir, sceneID)
	if err := os.MkdirAll(sceneDir, 0o755); err != nil {
		return project.Asset{}, services.Wrap(services.ErrIO, component, "import", "create scene asset directory", err)
	}
	dest := filepath.Join(sceneDir, filename)
	if err := fileutil.CopyFileVerified(sourcePath, dest); err != nil {
		_ = os.Remove(dest)
		logger.Warn("asset copy failed",
			logging.String(logging.FieldEventType, "asset_copy_failed"),
			logging.String("source", sourcePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the source file exists and is readable"))
		return project.Asset{}, services.Wrap(services.ErrIO, component, "import", fmt.Sprintf("copy %s", sourcePath), err)
	}

	asset := project.Asset{
		ID:           id,
		Kind:         Classify(ext),
		Filename:     filename,
		OriginalPath: sourcePath,
	}
	if asset.Kind == project.KindImage {
		if _, vector := vectorExtensions[ext]; !vector {
			asset.ThumbnailPath = p.generateThumbnail(ctx, projectDir, sceneID, id, dest)
		}
	}

	logger.Info("asset imported",
		logging.String(logging.FieldEventType, "asset_imported"),
		logging.AssetID(id),
		logging.String("kind", string(asset.Kind)),
		logging.Bool("thumbnail", asset.ThumbnailPath != nil))
	return asset, nil
}

// ImportBatch imports sourcePaths one at a time in the given order, skipping
// blank entries. The first failure stops the batch: assets imported before it
// are returned together with the error and later paths are never attempted.
func (p *Pipeline) ImportBatch(ctx context.Context, projectDir, sceneID string, sourcePaths []string) ([]project.Asset, error) {
	imported := make([]project.Asset, 0, len(sourcePaths))
	for _, src := range sourcePaths {
		if strings.TrimSpace(src) == "" {
			continue
		}
		asset, err := p.ImportAsset(ctx, projectDir, sceneID, src)
		if err != nil {
			return imported, err
		}
		imported = append(imported, asset)
	}
	return imported, nil
}

// DeleteAsset removes the asset file and its thumbnail. Files that are
// already gone are ignored, so repeated calls succeed.
func (p *Pipeline) DeleteAsset(ctx context.Context, projectDir, sceneID string, asset project.Asset) error {
	logger := logging.WithContext(services.WithSceneID(services.WithProjectDir(ctx, projectDir), sceneID), p.logger)

	targets := []string{AssetAbsolutePath(projectDir, sceneID, asset.Filename)}
	if asset.ThumbnailPath != nil && *asset.ThumbnailPath != "" {
		targets = append(targets, ThumbnailAbsolutePath(projectDir, *asset.ThumbnailPath))
	}
	for _, target := range targets {
		if !insideProject(projectDir, target) {
			return services.Wrap(services.ErrValidation, component, "delete", fmt.Sprintf("%s is outside the project directory", target), nil)
		}
	}
	for _, target := range targets {
		if err := os.Remove(target); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("asset file already absent",
					logging.String(logging.FieldEventType, "asset_remove_noop"),
					logging.String("path", target))
				continue
			}
			return services.Wrap(services.ErrIO, component, "delete", fmt.Sprintf("remove %s", target), err)
		}
	}
	logger.Info("asset deleted",
		logging.String(logging.FieldEventType, "asset_deleted"),
		logging.AssetID(asset.ID))
	return nil
}

// RemoveSceneDirs removes the scene's asset and thumbnail directories when
// they are empty. Non-empty or missing directories are left alone.
func (p *Pipeline) RemoveSceneDirs(projectDir, sceneID string) {
	for _, dir := range []string{SceneAssetDir(projectDir, sceneID), SceneThumbnailDir(projectDir, sceneID)} {
		if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.logger.Debug("scene directory kept",
				logging.String("path", dir),
				logging.Error(err))
		}
	}
}

// insideProject reports whether target lies strictly below projectDir.
func insideProject(projectDir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(projectDir), filepath.Clean(target))
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SceneAssetDir returns <projectDir>/assets/scene-<sceneID>.
func SceneAssetDir(projectDir, sceneID string) string {
	return filepath.Join(projectDir, project.AssetsDir, project.SceneDirName(sceneID))
}

// SceneThumbnailDir returns <projectDir>/.thumbnails/scene-<sceneID>.
func SceneThumbnailDir(projectDir, sceneID string) string {
	return filepath.Join(projectDir, project.ThumbnailsDir, project.SceneDirName(sceneID))
}

// AssetAbsolutePath joins the stored location of an asset file. It performs
// no I/O.
func AssetAbsolutePath(projectDir, sceneID, filename string) string {
	return filepath.Join(SceneAssetDir(projectDir, sceneID), filename)
}

// ThumbnailAbsolutePath resolves a project-relative thumbnail path. It
// performs no I/O.
func ThumbnailAbsolutePath(projectDir, relativePath string) string {
	return filepath.Join(projectDir, filepath.FromSlash(relativePath))
}

// thumbnailRelPath is stored with forward slashes so documents move between
// platforms unchanged.
func thumbnailRelPath(sceneID, assetID string) string {
	return path.Join(project.ThumbnailsDir, project.SceneDirName(sceneID), assetID+"_thumb.png")
}
