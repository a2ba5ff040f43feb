package fileserve

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"storyboard/internal/fileutil"
	"storyboard/internal/logging"
)

// PathPrefix is the URL prefix under which files are served.
const PathPrefix = "/files"

const component = "fileserve"

// Handler serves files that live under a set of allowed root directories.
type Handler struct {
	logger *slog.Logger
	goos   string

	mu    sync.RWMutex
	roots []string
}

// NewHandler returns a Handler allowing the given roots. A nil logger
// discards output.
func NewHandler(logger *slog.Logger, roots ...string) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &Handler{
		logger: logging.NewComponentLogger(logger, component),
		goos:   runtime.GOOS,
	}
	for _, root := range roots {
		h.AddRoot(root)
	}
	return h
}

// AddRoot allows files under dir to be served. Blank dirs are ignored.
func (h *Handler) AddRoot(dir string) {
	if strings.TrimSpace(dir) == "" {
		return
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		h.logger.Warn("ignoring file root", logging.String("root", dir), logging.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !slices.Contains(h.roots, abs) {
		h.roots = append(h.roots, abs)
	}
}

// Roots returns the allowed root directories.
func (h *Handler) Roots() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.roots)
}

// ServeHTTP serves the file named by the request path, which must already
// have PathPrefix removed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	target, ok := h.Resolve(r.URL.Path)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "path must be absolute")
		return
	}
	resolved, ok := h.contain(target)
	if !ok {
		h.logger.Warn("file request outside project roots",
			logging.String(logging.FieldEventType, "file_request_denied"),
			logging.String("path", target))
		h.writeError(w, http.StatusForbidden, "path outside project roots")
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.writeError(w, http.StatusNotFound, "file not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if info.IsDir() {
		h.writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	h.logger.Debug("served file", logging.String("path", target), logging.Int64("bytes", info.Size()))
}

// Resolve converts a request path into a cleaned absolute filesystem path.
func (h *Handler) Resolve(urlPath string) (string, bool) {
	p := fileutil.NormalizeURLPath(urlPath, h.goos)
	if p == "" {
		return "", false
	}
	p = filepath.Clean(p)
	if !filepath.IsAbs(p) {
		return "", false
	}
	return p, true
}

// contain returns the path to open for target when it lies under a root both
// as written and after following symlinks. A target that does not exist is
// judged on its lexical path; opening it then reports not found.
func (h *Handler) contain(target string) (string, bool) {
	roots := h.Roots()
	if !underAny(roots, target) {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return target, true
		}
		return "", false
	}
	realRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		if resolvedRoot, err := filepath.EvalSymlinks(root); err == nil {
			realRoots = append(realRoots, resolvedRoot)
		}
	}
	if !underAny(realRoots, resolved) {
		return "", false
	}
	return resolved, true
}

func underAny(roots []string, target string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, target)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode response", logging.Error(err))
	}
}
