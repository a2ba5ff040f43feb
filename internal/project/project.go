package project

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"time"
)

// New returns a fresh project with no scenes, stamped with now in UTC.
func New(name string, now time.Time) Project {
	now = now.UTC()
	return Project{
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
		Settings:   Settings{AssetStrategy: StrategyBundle},
		Scenes:     []Scene{},
	}
}

// NewScene returns an empty draft scene at the given order.
func NewScene(id string, order int) Scene {
	return Scene{
		ID:             id,
		Order:          order,
		Tags:           []string{},
		Status:         StatusDraft,
		Assets:         []Asset{},
		GenerationRuns: []GenerationRun{},
	}
}

// NewFile wraps p in the current document version.
func NewFile(p Project) File {
	return File{Version: FileVersion, Project: p}
}

// SceneDirName returns the per-scene directory name used under assets/ and .thumbnails/.
func SceneDirName(sceneID string) string {
	return "scene-" + sceneID
}

// Clone returns a deep copy of the project graph.
func (p Project) Clone() Project {
	out := p
	if p.Scenes != nil {
		out.Scenes = make([]Scene, len(p.Scenes))
		for i := range p.Scenes {
			out.Scenes[i] = p.Scenes[i].Clone()
		}
	}
	if p.AudioTimeline != nil {
		tl := *p.AudioTimeline
		tl.SceneMarkers = slices.Clone(p.AudioTimeline.SceneMarkers)
		out.AudioTimeline = &tl
	}
	return out
}

// Clone returns a deep copy of the scene.
func (s Scene) Clone() Scene {
	out := s
	out.Tags = slices.Clone(s.Tags)
	if s.Assets != nil {
		out.Assets = make([]Asset, len(s.Assets))
		for i := range s.Assets {
			out.Assets[i] = s.Assets[i].Clone()
		}
	}
	if s.GenerationRuns != nil {
		out.GenerationRuns = make([]GenerationRun, len(s.GenerationRuns))
		for i := range s.GenerationRuns {
			out.GenerationRuns[i] = s.GenerationRuns[i].Clone()
		}
	}
	return out
}

// Clone returns a copy of the asset that shares no pointers with a.
func (a Asset) Clone() Asset {
	out := a
	if a.ThumbnailPath != nil {
		v := *a.ThumbnailPath
		out.ThumbnailPath = &v
	}
	return out
}

// Clone returns a copy of the run with its own parameter map.
func (r GenerationRun) Clone() GenerationRun {
	out := r
	out.Parameters = maps.Clone(r.Parameters)
	if r.OutputAssetID != nil {
		v := *r.OutputAssetID
		out.OutputAssetID = &v
	}
	return out
}

// SceneIndex returns the position of the scene with id, or -1.
func (p *Project) SceneIndex(id string) int {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// AssetIndex returns the position of the asset with id, or -1.
func (s *Scene) AssetIndex(id string) int {
	for i := range s.Assets {
		if s.Assets[i].ID == id {
			return i
		}
	}
	return -1
}

// Recompact renumbers scene order fields to 0..n-1 following slice position.
func Recompact(scenes []Scene) {
	for i := range scenes {
		scenes[i].Order = i
	}
}

// CheckOrder reports the first scene whose order does not match its position.
func CheckOrder(scenes []Scene) error {
	for i := range scenes {
		if scenes[i].Order != i {
			return fmt.Errorf("scene %q has order %d at position %d", scenes[i].ID, scenes[i].Order, i)
		}
	}
	return nil
}

// Validate checks the structural invariants a loaded document must satisfy.
func (p *Project) Validate() error {
	if err := CheckOrder(p.Scenes); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(p.Scenes))
	for _, scene := range p.Scenes {
		if scene.ID == "" {
			return fmt.Errorf("scene at order %d has no id", scene.Order)
		}
		if !isPathSegment(scene.ID) {
			return fmt.Errorf("scene id %q is not a valid directory name", scene.ID)
		}
		if _, dup := seen[scene.ID]; dup {
			return fmt.Errorf("duplicate scene id %q", scene.ID)
		}
		seen[scene.ID] = struct{}{}
		for _, asset := range scene.Assets {
			if err := validateAssetPaths(scene.ID, asset); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateAssetPaths keeps an asset's stored file inside assets/scene-<id>
// and its thumbnail inside .thumbnails/scene-<id>.
func validateAssetPaths(sceneID string, a Asset) error {
	if !isPathSegment(a.Filename) {
		return fmt.Errorf("asset %q in scene %q has invalid filename %q", a.ID, sceneID, a.Filename)
	}
	if a.ThumbnailPath == nil || *a.ThumbnailPath == "" {
		return nil
	}
	thumb := *a.ThumbnailPath
	dir := path.Join(ThumbnailsDir, SceneDirName(sceneID))
	if strings.Contains(thumb, `\`) || path.IsAbs(thumb) || path.Dir(path.Clean(thumb)) != dir {
		return fmt.Errorf("asset %q in scene %q has thumbnail %q outside %s", a.ID, sceneID, thumb, dir)
	}
	return nil
}

// isPathSegment reports whether name can be used as a single file or
// directory name without escaping its parent.
func isPathSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// Valid reports whether s is a known scene status.
func (s SceneStatus) Valid() bool {
	return s == StatusDraft || s == StatusApproved
}

// Valid reports whether s is a known asset strategy.
func (s AssetStrategy) Valid() bool {
	return s == StrategyBundle || s == StrategyReference
}

// Valid reports whether s is a known generation run status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunPending, RunRunning, RunCompleted, RunFailed:
		return true
	}
	return false
}
