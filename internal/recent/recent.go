package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"storyboard/internal/fileutil"
	"storyboard/internal/logging"
	"storyboard/internal/project"
	"storyboard/internal/services"
)

// DefaultMaxEntries bounds the list when no explicit limit is configured.
const DefaultMaxEntries = 10

const component = "recent"

// List reads and updates the recent-projects file.
type List struct {
	path   string
	max    int
	logger *slog.Logger
	now    func() time.Time
	lock   *flock.Flock
}

// Option customizes a List.
type Option func(*List)

// WithClock overrides the timestamp source for new entries.
func WithClock(now func() time.Time) Option {
	return func(l *List) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a List backed by path. If path is empty, the list is inert:
// Entries returns nothing and Add does nothing. maxEntries <= 0 selects
// DefaultMaxEntries.
func New(path string, maxEntries int, logger *slog.Logger, opts ...Option) *List {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	l := &List{
		path:   path,
		max:    maxEntries,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
	if path != "" {
		l.lock = flock.New(path + ".lock")
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the backing file location.
func (l *List) Path() string {
	return l.path
}

// Entries returns the stored list, newest first, capped at the configured
// maximum even when the file holds more.
func (l *List) Entries(ctx context.Context) []project.RecentEntry {
	if l.path == "" {
		return []project.RecentEntry{}
	}
	entries, err := l.read()
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, l.logger), "recent projects unreadable", "recent_load_failed",
			logging.String("path", l.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file to reset the list"),
			logging.Impact("recent projects list shown as empty"))
		return []project.RecentEntry{}
	}
	return entries[:min(len(entries), l.max)]
}

// Add records projectPath as the most recent project. An existing entry with
// the same path is replaced and the list is truncated to the configured
// maximum. The file is always rewritten.
func (l *List) Add(ctx context.Context, name, projectPath string) error {
	if l.path == "" {
		return nil
	}
	projectPath = filepath.Clean(strings.TrimSpace(projectPath))
	if projectPath == "." {
		return services.Wrap(services.ErrValidation, component, "add", "project path is empty", nil)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return services.Wrap(services.ErrIO, component, "add", "create recent directory", err)
	}
	if err := l.lock.Lock(); err != nil {
		return services.Wrap(services.ErrIO, component, "add", "lock recent file", err)
	}
	defer func() {
		if err := l.lock.Unlock(); err != nil {
			l.logger.Warn("failed to release recent lock", logging.Error(err))
		}
	}()

	existing, err := l.read()
	if err != nil {
		l.logger.Debug("discarding unreadable recent file",
			logging.String(logging.FieldEventType, "recent_reset"),
			logging.Error(err))
		existing = nil
	}

	updated := make([]project.RecentEntry, 0, min(len(existing)+1, l.max))
	updated = append(updated, project.RecentEntry{Name: name, Path: projectPath, ModifiedAt: l.now().UTC()})
	for _, entry := range existing {
		if len(updated) >= l.max {
			break
		}
		if filepath.Clean(entry.Path) == projectPath {
			continue
		}
		updated = append(updated, entry)
	}

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrIO, component, "add", "encode recent list", err)
	}
	if err := fileutil.WriteFileAtomic(l.path, append(data, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrIO, component, "add", "write recent list", err)
	}

	l.logger.Debug("recorded recent project",
		logging.String(logging.FieldEventType, "recent_added"),
		logging.ProjectDir(projectPath),
		logging.Int("entry_count", len(updated)))
	return nil
}

func (l *List) read() ([]project.RecentEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []project.RecentEntry{}, nil
		}
		return nil, fmt.Errorf("read recent file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []project.RecentEntry{}, nil
	}
	var entries []project.RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse recent file: %w", err)
	}
	if entries == nil {
		entries = []project.RecentEntry{}
	}
	return entries, nil
}
