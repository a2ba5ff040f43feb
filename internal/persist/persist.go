package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"storyboard/internal/fileutil"
	"storyboard/internal/logging"
	"storyboard/internal/project"
	"storyboard/internal/services"
	"storyboard/internal/textutil"
)

const component = "persist"

// Persistence performs project document I/O.
type Persistence struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Persistence.
type Option func(*Persistence)

// WithClock overrides the timestamp source used for create and save.
func WithClock(now func() time.Time) Option {
	return func(p *Persistence) {
		if now != nil {
			p.now = now
		}
	}
}

// New constructs a Persistence. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Persistence {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Persistence{
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DocumentPath returns the location of project.json inside dir.
func DocumentPath(dir string) string {
	return filepath.Join(dir, project.FileName)
}

// CreateProject creates <parent>/<name> with its asset and thumbnail
// directories and writes an initial document. It returns the absolute
// project directory.
func (p *Persistence) CreateProject(ctx context.Context, name, parent string) (string, error) {
	dirName := textutil.SanitizeFileName(name)
	if dirName == "" || dirName == "." || dirName == ".." {
		return "", services.Wrap(services.ErrValidation, component, "create project", fmt.Sprintf("invalid project name %q", name), nil)
	}
	parentAbs, err := filepath.Abs(parent)
	if err != nil {
		return "", services.Wrap(services.ErrIO, component, "create project", "resolve parent directory", err)
	}
	dir := filepath.Join(parentAbs, dirName)

	if _, err := os.Stat(DocumentPath(dir)); err == nil {
		return "", services.Wrap(services.ErrIO, component, "create project", fmt.Sprintf("%s already contains a project", dir), fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", services.Wrap(services.ErrIO, component, "create project", "inspect project directory", err)
	}

	for _, sub := range []string{dir, filepath.Join(dir, project.AssetsDir), filepath.Join(dir, project.ThumbnailsDir)} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return "", services.Wrap(services.ErrIO, component, "create project", "create directory", err)
		}
	}

	file := project.NewFile(project.New(name, p.now()))
	if err := p.write(dir, file); err != nil {
		return "", services.Wrap(services.ErrIO, component, "create project", "write project document", err)
	}

	logging.WithContext(services.WithProjectDir(ctx, dir), p.logger).Info("project created",
		logging.String(logging.FieldEventType, "project_created"),
		logging.String("name", name))
	return dir, nil
}

// LoadProject reads and validates dir/project.json.
func (p *Persistence) LoadProject(ctx context.Context, dir string) (project.File, error) {
	data, err := os.ReadFile(DocumentPath(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// A missing document is an IO failure that callers may also
			// report as not found.
			ioErr := services.Wrap(services.ErrIO, component, "load project", fmt.Sprintf("no %s in %s", project.FileName, dir), err)
			return project.File{}, fmt.Errorf("%w: %w", services.ErrNotFound, ioErr)
		}
		return project.File{}, services.Wrap(services.ErrIO, component, "load project", "read project document", err)
	}

	var file project.File
	if err := json.Unmarshal(data, &file); err != nil {
		return project.File{}, services.Wrap(services.ErrFormat, component, "load project", "parse project document", err)
	}
	if file.Version != project.FileVersion {
		return project.File{}, services.Wrap(services.ErrFormat, component, "load project",
			fmt.Sprintf("unsupported document version %d (want %d)", file.Version, project.FileVersion), nil)
	}
	normalize(&file.Project)
	if err := file.Project.Validate(); err != nil {
		return project.File{}, services.Wrap(services.ErrFormat, component, "load project", "invalid project graph", err)
	}

	logging.WithContext(services.WithProjectDir(ctx, dir), p.logger).Debug("project loaded",
		logging.String(logging.FieldEventType, "project_loaded"),
		logging.Int("scenes", len(file.Project.Scenes)))
	return file, nil
}

// SaveProject stamps a new modification time on a copy of file and
// atomically replaces dir/project.json. The caller's value is not modified;
// the stamped document is returned on success.
func (p *Persistence) SaveProject(ctx context.Context, dir string, file project.File) (project.File, error) {
	out := project.File{Version: project.FileVersion, Project: file.Project.Clone()}
	stamp := p.now().UTC()
	if stamp.Before(out.Project.ModifiedAt) {
		stamp = out.Project.ModifiedAt
	}
	out.Project.ModifiedAt = stamp

	if err := p.write(dir, out); err != nil {
		return project.File{}, services.Wrap(services.ErrIO, component, "save project", "write project document", err)
	}

	logging.WithContext(services.WithProjectDir(ctx, dir), p.logger).Info("project saved",
		logging.String(logging.FieldEventType, "project_saved"),
		logging.Int("scenes", len(out.Project.Scenes)))
	return out, nil
}

func (p *Persistence) write(dir string, file project.File) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteFileAtomic(DocumentPath(dir), data, 0o644)
}

// normalize replaces absent collections with empty ones so hand-edited
// documents behave like freshly created ones.
func normalize(p *project.Project) {
	if p.Scenes == nil {
		p.Scenes = []project.Scene{}
	}
	for i := range p.Scenes {
		s := &p.Scenes[i]
		if s.Tags == nil {
			s.Tags = []string{}
		}
		if s.Assets == nil {
			s.Assets = []project.Asset{}
		}
		if s.GenerationRuns == nil {
			s.GenerationRuns = []project.GenerationRun{}
		}
		if s.Status == "" {
			s.Status = project.StatusDraft
		}
	}
	if p.Settings.AssetStrategy == "" {
		p.Settings.AssetStrategy = project.StrategyBundle
	}
}
