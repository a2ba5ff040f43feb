package fileserve

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHandlerServesFilesUnderRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "assets", "scene-1", "a.png")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("pixels"), 0o644); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(nil, root)
	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{name: "asset", method: http.MethodGet, path: filepath.ToSlash(file), status: http.StatusOK, body: "pixels"},
		{name: "head", method: http.MethodHead, path: filepath.ToSlash(file), status: http.StatusOK},
		{name: "outside root", method: http.MethodGet, path: filepath.ToSlash(outside), status: http.StatusForbidden},
		{name: "traversal", method: http.MethodGet, path: filepath.ToSlash(root) + "/../" + filepath.Base(filepath.Dir(outside)) + "/secret.txt", status: http.StatusForbidden},
		{name: "missing", method: http.MethodGet, path: filepath.ToSlash(filepath.Join(root, "nope.png")), status: http.StatusNotFound},
		{name: "directory", method: http.MethodGet, path: filepath.ToSlash(root), status: http.StatusNotFound},
		{name: "post", method: http.MethodPost, path: filepath.ToSlash(file), status: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/placeholder", nil)
			req.URL.Path = tt.path
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestHandlerFollowsSymlinksOnlyWithinRoots(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "assets", "a.png")
	if err := os.MkdirAll(filepath.Dir(inside), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inside, []byte("pixels"), 0o644); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	escape := filepath.Join(root, "assets", "escape.png")
	alias := filepath.Join(root, "alias.png")
	if err := os.Symlink(outside, escape); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(inside, alias); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	h := NewHandler(nil, root)
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "link leaving root", path: filepath.ToSlash(escape), status: http.StatusForbidden},
		{name: "link within root", path: filepath.ToSlash(alias), status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/placeholder", nil)
			req.URL.Path = tt.path
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestHandlerRelativePathRejected(t *testing.T) {
	h := NewHandler(nil, t.TempDir())
	req := httptest.NewRequest(http.MethodGet, "/placeholder", nil)
	req.URL.Path = "relative/file.png"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestResolveCleansPath(t *testing.T) {
	h := NewHandler(nil)
	root := t.TempDir()
	got, ok := h.Resolve(filepath.ToSlash(root) + "/assets/../assets/./a.png")
	if !ok {
		t.Fatal("absolute path rejected")
	}
	if want := filepath.Join(root, "assets", "a.png"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
	if _, ok := h.Resolve(""); ok {
		t.Fatal("empty path accepted")
	}
}

func TestAddRootDeduplicates(t *testing.T) {
	root := t.TempDir()
	h := NewHandler(nil, root, root, "  ")
	h.AddRoot(root + string(filepath.Separator))
	if got := h.Roots(); len(got) != 1 {
		t.Fatalf("roots = %v", got)
	}
}

func TestServerServesOverHTTP(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "thumb.png")
	if err := os.WriteFile(file, []byte("thumb"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv, err := NewServer("127.0.0.1:0", NewHandler(nil, root), nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + PathPrefix + filepath.ToSlash(file))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "thumb" {
		t.Fatalf("status=%d body=%q", resp.StatusCode, body)
	}
}

func TestNewServerValidates(t *testing.T) {
	if _, err := NewServer("", NewHandler(nil), nil); err == nil {
		t.Fatal("expected error for empty bind")
	}
	if _, err := NewServer("127.0.0.1:0", nil, nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
