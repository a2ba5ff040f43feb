package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"storyboard/internal/logging"
	"storyboard/internal/project"
	"storyboard/internal/services"
)

const copySuffix = " (copy)"

// SceneUpdate carries optional scene field changes. Nil fields are left
// untouched; Tags, when set, replaces the whole tag set.
type SceneUpdate struct {
	Title        *string
	Description  *string
	CameraNote   *string
	DialogueNote *string
	Tags         *[]string
	Status       *project.SceneStatus
}

func (u SceneUpdate) empty() bool {
	return u.Title == nil && u.Description == nil && u.CameraNote == nil &&
		u.DialogueNote == nil && u.Tags == nil && u.Status == nil
}

// AddScene appends an empty draft scene.
func (s *Store) AddScene() (project.Scene, error) {
	if err := s.requireOpen("add scene"); err != nil {
		return project.Scene{}, err
	}
	scene := project.NewScene(s.newID(), len(s.project.Scenes))
	s.project.Scenes = append(s.project.Scenes, scene)
	s.dirty = true
	return scene.Clone(), nil
}

// DeleteScene removes the scene with id together with its asset files,
// thumbnails and audio markers. Unknown ids are a no-op. File removal is
// best effort: failures are logged and do not keep the scene in the graph.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	if err := s.requireOpen("delete scene"); err != nil {
		return err
	}
	idx := s.project.SceneIndex(id)
	if idx < 0 {
		return nil
	}
	removed := s.project.Scenes[idx]
	s.project.Scenes = slices.Delete(s.project.Scenes, idx, idx+1)
	project.Recompact(s.project.Scenes)
	if s.selected == id {
		s.selected = ""
	}
	if tl := s.project.AudioTimeline; tl != nil {
		tl.SceneMarkers = slices.DeleteFunc(tl.SceneMarkers, func(m project.SceneMarker) bool {
			return m.SceneID == id
		})
	}
	s.dirty = true

	ctx = services.WithSceneID(services.WithProjectDir(ctx, s.dir), id)
	for _, asset := range removed.Assets {
		if err := s.assets.DeleteAsset(ctx, s.dir, id, asset); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "scene asset not removed", "scene_asset_remove_failed",
				logging.AssetID(asset.ID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
				logging.Impact("orphaned file remains in the project directory"))
		}
	}
	s.assets.RemoveSceneDirs(s.dir, id)
	return nil
}

// DuplicateScene inserts a copy of the scene with id directly after it. The
// copy gets a fresh id, a " (copy)" title suffix and no assets or runs.
func (s *Store) DuplicateScene(id string) (project.Scene, error) {
	if err := s.requireOpen("duplicate scene"); err != nil {
		return project.Scene{}, err
	}
	idx := s.project.SceneIndex(id)
	if idx < 0 {
		return project.Scene{}, services.Wrap(services.ErrNotFound, component, "duplicate scene", fmt.Sprintf("scene %q", id), nil)
	}
	dup := s.project.Scenes[idx].Clone()
	dup.ID = s.newID()
	dup.Title += copySuffix
	dup.Assets = []project.Asset{}
	dup.GenerationRuns = []project.GenerationRun{}
	if dup.Tags == nil {
		dup.Tags = []string{}
	}

	s.project.Scenes = slices.Insert(s.project.Scenes, idx+1, dup)
	project.Recompact(s.project.Scenes)
	s.dirty = true
	return s.project.Scenes[idx+1].Clone(), nil
}

// UpdateScene merges u into the scene with id. Unknown ids are a no-op.
func (s *Store) UpdateScene(id string, u SceneUpdate) error {
	if err := s.requireOpen("update scene"); err != nil {
		return err
	}
	if u.Status != nil && !u.Status.Valid() {
		return services.Wrap(services.ErrValidation, component, "update scene", fmt.Sprintf("unknown status %q", *u.Status), nil)
	}
	idx := s.project.SceneIndex(id)
	if idx < 0 || u.empty() {
		return nil
	}
	scene := &s.project.Scenes[idx]
	if u.Title != nil {
		scene.Title = *u.Title
	}
	if u.Description != nil {
		scene.Description = *u.Description
	}
	if u.CameraNote != nil {
		scene.CameraNote = *u.CameraNote
	}
	if u.DialogueNote != nil {
		scene.DialogueNote = *u.DialogueNote
	}
	if u.Tags != nil {
		scene.Tags = normalizeTags(*u.Tags)
	}
	if u.Status != nil {
		scene.Status = *u.Status
	}
	s.dirty = true
	return nil
}

// AddTag adds tag to the scene. Blank or already present tags are ignored.
func (s *Store) AddTag(id, tag string) error {
	if err := s.requireOpen("add tag"); err != nil {
		return err
	}
	tag = strings.TrimSpace(tag)
	idx := s.project.SceneIndex(id)
	if idx < 0 || tag == "" {
		return nil
	}
	scene := &s.project.Scenes[idx]
	if slices.Contains(scene.Tags, tag) {
		return nil
	}
	scene.Tags = append(scene.Tags, tag)
	s.dirty = true
	return nil
}

// RemoveTag removes tag from the scene if present.
func (s *Store) RemoveTag(id, tag string) error {
	if err := s.requireOpen("remove tag"); err != nil {
		return err
	}
	idx := s.project.SceneIndex(id)
	if idx < 0 {
		return nil
	}
	scene := &s.project.Scenes[idx]
	pos := slices.Index(scene.Tags, tag)
	if pos < 0 {
		return nil
	}
	scene.Tags = slices.Delete(scene.Tags, pos, pos+1)
	s.dirty = true
	return nil
}

// ReorderScenes moves the scene activeID to the position currently held by
// overID. Absent or equal ids are a no-op.
func (s *Store) ReorderScenes(activeID, overID string) error {
	if err := s.requireOpen("reorder scenes"); err != nil {
		return err
	}
	if activeID == overID {
		return nil
	}
	from := s.project.SceneIndex(activeID)
	to := s.project.SceneIndex(overID)
	if from < 0 || to < 0 {
		return nil
	}
	moved := s.project.Scenes[from]
	s.project.Scenes = slices.Delete(s.project.Scenes, from, from+1)
	s.project.Scenes = slices.Insert(s.project.Scenes, to, moved)
	project.Recompact(s.project.Scenes)
	s.dirty = true
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
