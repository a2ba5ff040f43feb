package project

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func strptr(s string) *string { return &s }

func sampleProject() Project {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New("Pilot", now)
	s0 := NewScene("a", 0)
	s0.Title = "Opening"
	s0.Tags = []string{"day", "exterior"}
	s0.Assets = []Asset{{ID: "x1", Kind: KindImage, Filename: "x1.png", OriginalPath: "/tmp/x.png", ThumbnailPath: strptr(".thumbnails/scene-a/x1_thumb.png")}}
	s0.GenerationRuns = []GenerationRun{{ID: "r1", SceneID: "a", Kind: RunImage, Prompt: "wide shot", Parameters: map[string]any{"seed": 4.0}, Status: RunCompleted, OutputAssetID: strptr("x1"), Timestamp: now}}
	s1 := NewScene("b", 1)
	p.Scenes = []Scene{s0, s1}
	p.AudioTimeline = &AudioTimeline{TrackPath: "/music/theme.mp3", SceneMarkers: []SceneMarker{{SceneID: "a", Timestamp: 1.5}}}
	return p
}

func TestNewProjectDefaults(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	p := New("Demo", now)
	if p.Name != "Demo" {
		t.Fatalf("name = %q", p.Name)
	}
	if p.Description != "" {
		t.Fatalf("description = %q, want empty", p.Description)
	}
	if !p.CreatedAt.Equal(now) || !p.ModifiedAt.Equal(now) {
		t.Fatalf("timestamps not stamped with now: %v %v", p.CreatedAt, p.ModifiedAt)
	}
	if p.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps, got %v", p.CreatedAt.Location())
	}
	if p.Settings.AssetStrategy != StrategyBundle {
		t.Fatalf("strategy = %q", p.Settings.AssetStrategy)
	}
	if p.Scenes == nil || len(p.Scenes) != 0 {
		t.Fatalf("expected empty non-nil scenes, got %#v", p.Scenes)
	}
	if p.AudioTimeline != nil {
		t.Fatal("expected nil audio timeline")
	}
}

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene("id-1", 3)
	if s.Order != 3 || s.Status != StatusDraft {
		t.Fatalf("unexpected scene %+v", s)
	}
	if s.Tags == nil || s.Assets == nil || s.GenerationRuns == nil {
		t.Fatal("expected non-nil empty collections")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := sampleProject()
	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.Scenes[0].Tags[0] = "night"
	clone.Scenes[0].Assets[0].Filename = "changed.png"
	*clone.Scenes[0].Assets[0].ThumbnailPath = "changed"
	clone.Scenes[0].GenerationRuns[0].Parameters["seed"] = 9.0
	clone.AudioTimeline.SceneMarkers[0].Timestamp = 99

	if orig.Scenes[0].Tags[0] != "day" {
		t.Error("tags shared with clone")
	}
	if orig.Scenes[0].Assets[0].Filename != "x1.png" {
		t.Error("assets shared with clone")
	}
	if *orig.Scenes[0].Assets[0].ThumbnailPath != ".thumbnails/scene-a/x1_thumb.png" {
		t.Error("thumbnail pointer shared with clone")
	}
	if orig.Scenes[0].GenerationRuns[0].Parameters["seed"] != 4.0 {
		t.Error("parameters shared with clone")
	}
	if orig.AudioTimeline.SceneMarkers[0].Timestamp != 1.5 {
		t.Error("markers shared with clone")
	}
}

func TestJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(NewFile(sampleProject()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, key := range []string{
		`"version":1`, `"createdAt"`, `"modifiedAt"`, `"assetStrategy":"bundle"`,
		`"cameraNote"`, `"dialogueNote"`, `"generationRuns"`, `"type":"image"`,
		`"originalPath"`, `"thumbnailPath"`, `"sceneId"`, `"outputAssetId"`,
		`"audioTimeline"`, `"trackPath"`, `"sceneMarkers"`,
	} {
		if !strings.Contains(text, key) {
			t.Errorf("encoded document missing %s", key)
		}
	}
}

func TestNilThumbnailEncodesNull(t *testing.T) {
	data, err := json.Marshal(Asset{ID: "a", Kind: KindReference, Filename: "a.pdf"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"thumbnailPath":null`) {
		t.Fatalf("expected null thumbnail, got %s", data)
	}
}

func sceneWithAsset(id string, a Asset) Scene {
	s := NewScene(id, 0)
	s.Assets = []Asset{a}
	return s
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		scenes  []Scene
		wantErr string
	}{
		{name: "empty"},
		{name: "contiguous", scenes: []Scene{NewScene("a", 0), NewScene("b", 1)}},
		{name: "gap", scenes: []Scene{NewScene("a", 0), NewScene("b", 2)}, wantErr: "order 2 at position 1"},
		{name: "duplicate", scenes: []Scene{NewScene("a", 0), NewScene("a", 1)}, wantErr: "duplicate scene id"},
		{name: "missing id", scenes: []Scene{NewScene("", 0)}, wantErr: "no id"},
		{name: "id with separator", scenes: []Scene{NewScene("../a", 0)}, wantErr: "not a valid directory name"},
		{name: "asset in scene dir", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "x.png", ThumbnailPath: strptr(".thumbnails/scene-a/x_thumb.png")})}},
		{name: "asset without thumbnail", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "x.txt"})}},
		{name: "filename with separator", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "../../x.png"})}, wantErr: "invalid filename"},
		{name: "filename with backslash", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: `..\x.png`})}, wantErr: "invalid filename"},
		{name: "parent filename", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: ".."})}, wantErr: "invalid filename"},
		{name: "thumbnail escapes project", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "x.png", ThumbnailPath: strptr("../../victim.txt")})}, wantErr: "outside .thumbnails/scene-a"},
		{name: "thumbnail climbs out of scene dir", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "x.png", ThumbnailPath: strptr(".thumbnails/scene-a/../../project.json")})}, wantErr: "outside"},
		{name: "thumbnail of other scene", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "x.png", ThumbnailPath: strptr(".thumbnails/scene-b/x_thumb.png")})}, wantErr: "outside"},
		{name: "absolute thumbnail", scenes: []Scene{sceneWithAsset("a", Asset{ID: "x", Filename: "x.png", ThumbnailPath: strptr("/etc/passwd")})}, wantErr: "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{Scenes: tt.scenes}
			err := p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRecompact(t *testing.T) {
	scenes := []Scene{NewScene("a", 5), NewScene("b", 0), NewScene("c", 9)}
	Recompact(scenes)
	if err := CheckOrder(scenes); err != nil {
		t.Fatalf("order not contiguous after recompact: %v", err)
	}
}

func TestLookupHelpers(t *testing.T) {
	p := sampleProject()
	if got := p.SceneIndex("b"); got != 1 {
		t.Fatalf("SceneIndex(b) = %d", got)
	}
	if got := p.SceneIndex("zzz"); got != -1 {
		t.Fatalf("SceneIndex(zzz) = %d", got)
	}
	if got := p.Scenes[0].AssetIndex("x1"); got != 0 {
		t.Fatalf("AssetIndex(x1) = %d", got)
	}
	if got := p.Scenes[0].AssetIndex("nope"); got != -1 {
		t.Fatalf("AssetIndex(nope) = %d", got)
	}
	if SceneDirName("abc") != "scene-abc" {
		t.Fatalf("SceneDirName = %q", SceneDirName("abc"))
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusApproved.Valid() || SceneStatus("done").Valid() {
		t.Fatal("scene status validation wrong")
	}
	if !StrategyReference.Valid() || AssetStrategy("link").Valid() {
		t.Fatal("strategy validation wrong")
	}
	if !RunFailed.Valid() || RunStatus("queued").Valid() {
		t.Fatal("run status validation wrong")
	}
}
