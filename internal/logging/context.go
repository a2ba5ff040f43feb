package logging

import (
	"context"
	"log/slog"

	"storyboard/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is the standardized key naming the event a log line records.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized key suggesting a next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldProjectDir is the standardized structured logging key for project directories.
	FieldProjectDir = "project_dir"
	// FieldSceneID is the standardized structured logging key for scene identifiers.
	FieldSceneID = "scene_id"
	// FieldAssetID is the standardized structured logging key for asset identifiers.
	FieldAssetID = "asset_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if dir, ok := services.ProjectDirFromContext(ctx); ok {
		fields = append(fields, ProjectDir(dir))
	}
	if id, ok := services.SceneIDFromContext(ctx); ok {
		fields = append(fields, SceneID(id))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
