package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"storyboard/internal/assets"
	"storyboard/internal/fileutil"
	"storyboard/internal/logging"
	"storyboard/internal/persist"
	"storyboard/internal/project"
	"storyboard/internal/recent"
	"storyboard/internal/services"
)

const component = "store"

// Store is an editing session over a single project directory.
type Store struct {
	logger  *slog.Logger
	persist *persist.Persistence
	assets  *assets.Pipeline
	recent  *recent.List
	newID   func() string
	now     func() time.Time

	dir      string
	project  *project.Project
	dirty    bool
	selected string
}

// Option customizes a Store.
type Option func(*Store)

// WithIDGenerator overrides scene and generation run identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the timestamp source for generation runs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wires a Store to its collaborators. Nil collaborators are replaced by
// defaults that log nowhere; a nil recent list disables recent tracking.
func New(p *persist.Persistence, a *assets.Pipeline, r *recent.List, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	if p == nil {
		p = persist.New(logger)
	}
	if a == nil {
		a = assets.New(logger)
	}
	if r == nil {
		r = recent.New("", 0, logger)
	}
	s := &Store{
		logger:  logging.NewComponentLogger(logger, component),
		persist: p,
		assets:  a,
		recent:  r,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsOpen reports whether a project is loaded.
func (s *Store) IsOpen() bool {
	return s.project != nil
}

// Dir returns the open project's directory, or "" when closed.
func (s *Store) Dir() string {
	return s.dir
}

// Dirty reports whether the graph has changes not yet saved.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Project returns a deep copy of the open project.
func (s *Store) Project() (project.Project, bool) {
	if s.project == nil {
		return project.Project{}, false
	}
	return s.project.Clone(), true
}

// Scene returns a copy of the scene with id.
func (s *Store) Scene(id string) (project.Scene, bool) {
	if s.project == nil {
		return project.Scene{}, false
	}
	idx := s.project.SceneIndex(id)
	if idx < 0 {
		return project.Scene{}, false
	}
	return s.project.Scenes[idx].Clone(), true
}

// SelectScene marks id as the selected scene. Unknown ids leave the current
// selection unchanged and return false.
func (s *Store) SelectScene(id string) bool {
	if s.project == nil || s.project.SceneIndex(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// SelectedSceneID returns the selected scene id, or "".
func (s *Store) SelectedSceneID() string {
	return s.selected
}

// RecentProjects lists recently opened projects, newest first.
func (s *Store) RecentProjects(ctx context.Context) []project.RecentEntry {
	return s.recent.Entries(ctx)
}

// Create makes a new project under parent and opens it.
func (s *Store) Create(ctx context.Context, name, parent string) error {
	dir, err := s.persist.CreateProject(ctx, name, parent)
	if err != nil {
		return err
	}
	file, err := s.persist.LoadProject(ctx, dir)
	if err != nil {
		return err
	}
	s.replace(dir, file.Project)
	s.remember(ctx)
	return nil
}

// Open loads the project at path, which may name the project directory or
// its project.json.
func (s *Store) Open(ctx context.Context, path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return services.Wrap(services.ErrIO, component, "open", "resolve project path", err)
	}
	if filepath.Base(dir) == project.FileName {
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
	}
	file, err := s.persist.LoadProject(ctx, dir)
	if err != nil {
		return err
	}
	s.replace(dir, file.Project)
	s.remember(ctx)
	return nil
}

// Save writes the open project to its directory and clears the dirty flag.
func (s *Store) Save(ctx context.Context) error {
	if err := s.requireOpen("save"); err != nil {
		return err
	}
	stamped, err := s.persist.SaveProject(ctx, s.dir, project.NewFile(*s.project))
	if err != nil {
		return err
	}
	s.project.ModifiedAt = stamped.Project.ModifiedAt
	s.dirty = false
	return nil
}

// SaveAs writes the project into target, copying its asset and thumbnail
// trees, then makes target the session directory.
func (s *Store) SaveAs(ctx context.Context, target string) error {
	if err := s.requireOpen("save as"); err != nil {
		return err
	}
	dir, err := filepath.Abs(target)
	if err != nil {
		return services.Wrap(services.ErrIO, component, "save as", "resolve target", err)
	}
	if dir == s.dir {
		return s.Save(ctx)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, component, "save as", "create target directory", err)
	}
	for _, sub := range []string{project.AssetsDir, project.ThumbnailsDir} {
		if err := fileutil.CopyTree(filepath.Join(s.dir, sub), filepath.Join(dir, sub)); err != nil {
			return services.Wrap(services.ErrIO, component, "save as", "copy "+sub, err)
		}
	}
	stamped, err := s.persist.SaveProject(ctx, dir, project.NewFile(*s.project))
	if err != nil {
		return err
	}
	s.dir = dir
	s.project.ModifiedAt = stamped.Project.ModifiedAt
	s.dirty = false
	s.remember(ctx)
	return nil
}

// Close discards the open project without saving.
func (s *Store) Close() {
	if s.project != nil && s.dirty {
		s.logger.Info("closing project with unsaved changes",
			logging.String(logging.FieldEventType, "project_closed_dirty"),
			logging.ProjectDir(s.dir))
	}
	s.dir = ""
	s.project = nil
	s.dirty = false
	s.selected = ""
}

// ProjectUpdate carries optional project-level field changes.
type ProjectUpdate struct {
	Name          *string
	Description   *string
	AssetStrategy *project.AssetStrategy
}

// UpdateProject applies the non-nil fields of u.
func (s *Store) UpdateProject(u ProjectUpdate) error {
	if err := s.requireOpen("update project"); err != nil {
		return err
	}
	if u.AssetStrategy != nil && !u.AssetStrategy.Valid() {
		return services.Wrap(services.ErrValidation, component, "update project", "unknown asset strategy "+string(*u.AssetStrategy), nil)
	}
	if u.Name != nil {
		s.project.Name = *u.Name
	}
	if u.Description != nil {
		s.project.Description = *u.Description
	}
	if u.AssetStrategy != nil {
		s.project.Settings.AssetStrategy = *u.AssetStrategy
	}
	if u.Name != nil || u.Description != nil || u.AssetStrategy != nil {
		s.dirty = true
	}
	return nil
}

func (s *Store) replace(dir string, p project.Project) {
	if s.project != nil && s.dirty {
		s.logger.Info("discarding unsaved changes",
			logging.String(logging.FieldEventType, "project_replaced_dirty"),
			logging.ProjectDir(s.dir))
	}
	s.dir = dir
	s.project = &p
	s.dirty = false
	s.selected = ""
}

// remember records the open project in the recent list. Failures are logged
// only; the project itself is already open.
func (s *Store) remember(ctx context.Context) {
	if err := s.recent.Add(ctx, s.project.Name, s.dir); err != nil {
		logging.WarnWithContext(logging.WithContext(services.WithProjectDir(ctx, s.dir), s.logger), "recent projects not updated", "recent_add_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the data directory"),
			logging.Impact("project missing from the recent list"))
	}
}

func (s *Store) requireOpen(op string) error {
	if s.project == nil {
		return services.Wrap(services.ErrNoProject, component, op, "", nil)
	}
	return nil
}
