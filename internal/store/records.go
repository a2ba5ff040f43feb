package store

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"storyboard/internal/logging"
	"storyboard/internal/project"
	"storyboard/internal/services"
)

// RunSpec describes a generation run being registered.
type RunSpec struct {
	Kind       project.RunKind
	Prompt     string
	Parameters map[string]any
}

// RunUpdate carries optional generation run changes.
type RunUpdate struct {
	Status        *project.RunStatus
	OutputAssetID *string
}

// AddGenerationRun appends a pending run to the scene.
func (s *Store) AddGenerationRun(sceneID string, spec RunSpec) (project.GenerationRun, error) {
	scene, err := s.mutableScene("add generation run", sceneID)
	if err != nil {
		return project.GenerationRun{}, err
	}
	if spec.Kind != project.RunText && spec.Kind != project.RunImage {
		return project.GenerationRun{}, services.Wrap(services.ErrValidation, component, "add generation run", fmt.Sprintf("unknown run type %q", spec.Kind), nil)
	}
	params := maps.Clone(spec.Parameters)
	if params == nil {
		params = map[string]any{}
	}
	run := project.GenerationRun{
		ID:         s.newID(),
		SceneID:    sceneID,
		Kind:       spec.Kind,
		Prompt:     spec.Prompt,
		Parameters: params,
		Status:     project.RunPending,
		Timestamp:  s.now().UTC(),
	}
	scene.GenerationRuns = append(scene.GenerationRuns, run)
	s.dirty = true
	return run.Clone(), nil
}

// UpdateGenerationRun applies u to the run. An output asset must belong to
// the same scene.
func (s *Store) UpdateGenerationRun(sceneID, runID string, u RunUpdate) error {
	scene, err := s.mutableScene("update generation run", sceneID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(scene.GenerationRuns, func(r project.GenerationRun) bool { return r.ID == runID })
	if idx < 0 {
		return services.Wrap(services.ErrNotFound, component, "update generation run", fmt.Sprintf("run %q", runID), nil)
	}
	if u.Status != nil && !u.Status.Valid() {
		return services.Wrap(services.ErrValidation, component, "update generation run", fmt.Sprintf("unknown status %q", *u.Status), nil)
	}
	if u.OutputAssetID != nil && scene.AssetIndex(*u.OutputAssetID) < 0 {
		return services.Wrap(services.ErrNotFound, component, "update generation run", fmt.Sprintf("asset %q", *u.OutputAssetID), nil)
	}
	run := &scene.GenerationRuns[idx]
	if u.Status != nil {
		run.Status = *u.Status
	}
	if u.OutputAssetID != nil {
		id := *u.OutputAssetID
		run.OutputAssetID = &id
	}
	if u.Status != nil || u.OutputAssetID != nil {
		s.dirty = true
	}
	return nil
}

// SetAudioTimeline attaches trackPath as the project soundtrack. Existing
// scene markers are kept.
func (s *Store) SetAudioTimeline(trackPath string) error {
	if err := s.requireOpen("set audio timeline"); err != nil {
		return err
	}
	trackPath = strings.TrimSpace(trackPath)
	if trackPath == "" {
		return services.Wrap(services.ErrValidation, component, "set audio timeline", "track path is empty", nil)
	}
	if s.project.AudioTimeline == nil {
		s.project.AudioTimeline = &project.AudioTimeline{SceneMarkers: []project.SceneMarker{}}
	}
	s.project.AudioTimeline.TrackPath = trackPath
	s.dirty = true
	return nil
}

// SetSceneMarker pins the scene at timestamp seconds on the soundtrack,
// replacing any earlier marker for it. Markers stay sorted by timestamp.
func (s *Store) SetSceneMarker(sceneID string, timestamp float64) error {
	if _, err := s.mutableScene("set scene marker", sceneID); err != nil {
		return err
	}
	tl := s.project.AudioTimeline
	if tl == nil {
		return services.Wrap(services.ErrValidation, component, "set scene marker", "project has no audio track", nil)
	}
	if timestamp < 0 || math.IsNaN(timestamp) || math.IsInf(timestamp, 0) {
		return services.Wrap(services.ErrValidation, component, "set scene marker", fmt.Sprintf("invalid timestamp %v", timestamp), nil)
	}
	tl.SceneMarkers = slices.DeleteFunc(tl.SceneMarkers, func(m project.SceneMarker) bool { return m.SceneID == sceneID })
	tl.SceneMarkers = append(tl.SceneMarkers, project.SceneMarker{SceneID: sceneID, Timestamp: timestamp})
	slices.SortStableFunc(tl.SceneMarkers, func(a, b project.SceneMarker) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	s.logger.Debug("scene pinned to soundtrack",
		logging.SceneID(sceneID),
		logging.Float64("timestamp_seconds", timestamp))
	s.dirty = true
	return nil
}

// ClearAudioTimeline detaches the soundtrack and all markers.
func (s *Store) ClearAudioTimeline() error {
	if err := s.requireOpen("clear audio timeline"); err != nil {
		return err
	}
	if s.project.AudioTimeline == nil {
		return nil
	}
	s.project.AudioTimeline = nil
	s.dirty = true
	return nil
}
