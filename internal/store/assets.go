package store

import (
	"context"
	"fmt"
	"slices"

	"storyboard/internal/assets"
	"storyboard/internal/project"
	"storyboard/internal/services"
)

// ImportAssets copies sourcePaths into the scene in order and registers each
// successful import on the scene. The first failing path stops the batch;
// assets imported before it stay registered and are returned alongside the
// error.
func (s *Store) ImportAssets(ctx context.Context, sceneID string, sourcePaths []string) ([]project.Asset, error) {
	scene, err := s.mutableScene("import assets", sceneID)
	if err != nil {
		return nil, err
	}
	imported, err := s.assets.ImportBatch(ctx, s.dir, sceneID, sourcePaths)
	if len(imported) > 0 {
		for _, asset := range imported {
			scene.Assets = append(scene.Assets, asset.Clone())
		}
		s.dirty = true
	}
	return imported, err
}

// DeleteAsset removes the asset's files and then drops it from the scene. If
// file removal fails the asset stays registered so the call can be retried.
func (s *Store) DeleteAsset(ctx context.Context, sceneID, assetID string) error {
	scene, err := s.mutableScene("delete asset", sceneID)
	if err != nil {
		return err
	}
	idx := scene.AssetIndex(assetID)
	if idx < 0 {
		return services.Wrap(services.ErrNotFound, component, "delete asset", fmt.Sprintf("asset %q", assetID), nil)
	}
	if err := s.assets.DeleteAsset(ctx, s.dir, sceneID, scene.Assets[idx]); err != nil {
		return err
	}
	scene.Assets = slices.Delete(scene.Assets, idx, idx+1)
	s.dirty = true
	return nil
}

// Asset returns a copy of the asset record.
func (s *Store) Asset(sceneID, assetID string) (project.Asset, error) {
	scene, err := s.mutableScene("lookup asset", sceneID)
	if err != nil {
		return project.Asset{}, err
	}
	idx := scene.AssetIndex(assetID)
	if idx < 0 {
		return project.Asset{}, services.Wrap(services.ErrNotFound, component, "lookup asset", fmt.Sprintf("asset %q", assetID), nil)
	}
	return scene.Assets[idx].Clone(), nil
}

// AssetPath resolves the absolute location of an asset file.
func (s *Store) AssetPath(sceneID, assetID string) (string, error) {
	asset, err := s.Asset(sceneID, assetID)
	if err != nil {
		return "", err
	}
	return assets.AssetAbsolutePath(s.dir, sceneID, asset.Filename), nil
}

// ThumbnailPath resolves the absolute location of an asset's thumbnail.
func (s *Store) ThumbnailPath(sceneID, assetID string) (string, error) {
	asset, err := s.Asset(sceneID, assetID)
	if err != nil {
		return "", err
	}
	if asset.ThumbnailPath == nil {
		return "", services.Wrap(services.ErrNotFound, component, "thumbnail path", fmt.Sprintf("asset %q has no thumbnail", assetID), nil)
	}
	return assets.ThumbnailAbsolutePath(s.dir, *asset.ThumbnailPath), nil
}

// RevealAsset shows the asset file in the platform file manager.
func (s *Store) RevealAsset(sceneID, assetID string) error {
	path, err := s.AssetPath(sceneID, assetID)
	if err != nil {
		return err
	}
	return assets.Reveal(path)
}

// mutableScene returns the live scene with id; callers must not retain it
// across structural scene operations.
func (s *Store) mutableScene(op, id string) (*project.Scene, error) {
	if err := s.requireOpen(op); err != nil {
		return nil, err
	}
	idx := s.project.SceneIndex(id)
	if idx < 0 {
		return nil, services.Wrap(services.ErrNotFound, component, op, fmt.Sprintf("scene %q", id), nil)
	}
	return &s.project.Scenes[idx], nil
}
