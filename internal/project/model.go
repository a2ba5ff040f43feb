package project

import "time"

// On-disk layout of a project directory.
const (
	FileVersion   = 1
	FileName      = "project.json"
	AssetsDir     = "assets"
	ThumbnailsDir = ".thumbnails"
)

// AssetStrategy controls whether imported media is copied into the project.
type AssetStrategy string

const (
	StrategyBundle    AssetStrategy = "bundle"
	StrategyReference AssetStrategy = "reference"
)

// SceneStatus is the review state of a scene.
type SceneStatus string

const (
	StatusDraft    SceneStatus = "draft"
	StatusApproved SceneStatus = "approved"
)

// AssetKind classifies an imported file.
type AssetKind string

const (
	KindImage     AssetKind = "image"
	KindVideo     AssetKind = "video"
	KindAudio     AssetKind = "audio"
	KindReference AssetKind = "reference"
)

// RunKind identifies what a generation run produces.
type RunKind string

const (
	RunText  RunKind = "text"
	RunImage RunKind = "image"
)

// RunStatus is the lifecycle state of a generation run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Settings holds per-project preferences.
type Settings struct {
	AssetStrategy AssetStrategy `json:"assetStrategy"`
}

// Project is the top-level persisted creative unit.
type Project struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	CreatedAt     time.Time      `json:"createdAt"`
	ModifiedAt    time.Time      `json:"modifiedAt"`
	Settings      Settings       `json:"settings"`
	Scenes        []Scene        `json:"scenes"`
	AudioTimeline *AudioTimeline `json:"audioTimeline"`
}

// Scene is one ordered unit of the storyboard.
type Scene struct {
	ID             string          `json:"id"`
	Order          int             `json:"order"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	CameraNote     string          `json:"cameraNote"`
	DialogueNote   string          `json:"dialogueNote"`
	Tags           []string        `json:"tags"`
	Status         SceneStatus     `json:"status"`
	Assets         []Asset         `json:"assets"`
	GenerationRuns []GenerationRun `json:"generationRuns"`
}

// Asset is an imported media file owned by exactly one scene. Filename is
// always "<id><ext>"; OriginalPath is informational and never read again.
type Asset struct {
	ID            string    `json:"id"`
	Kind          AssetKind `json:"type"`
	Filename      string    `json:"filename"`
	OriginalPath  string    `json:"originalPath"`
	ThumbnailPath *string   `json:"thumbnailPath"`
}

// GenerationRun records an externally executed content-generation attempt.
type GenerationRun struct {
	ID            string         `json:"id"`
	SceneID       string         `json:"sceneId"`
	Kind          RunKind        `json:"type"`
	Prompt        string         `json:"prompt"`
	Parameters    map[string]any `json:"parameters"`
	OutputAssetID *string        `json:"outputAssetId"`
	Status        RunStatus      `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
}

// AudioTimeline pins scenes to positions on a soundtrack.
type AudioTimeline struct {
	TrackPath    string        `json:"trackPath"`
	SceneMarkers []SceneMarker `json:"sceneMarkers"`
}

// SceneMarker places a scene at Timestamp seconds into the track.
type SceneMarker struct {
	SceneID   string  `json:"sceneId"`
	Timestamp float64 `json:"timestamp"`
}

// File is the persisted envelope written to project.json.
type File struct {
	Version int     `json:"version"`
	Project Project `json:"project"`
}

// RecentEntry is one remembered project in the application-scoped recent list.
type RecentEntry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
