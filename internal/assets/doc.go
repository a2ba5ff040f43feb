// Package assets copies user media into a project and derives previews.
//
// Imported files land in assets/scene-<sceneId>/<assetId><ext>, where ext is
// the lower-cased source extension; the user's filename is never reused.
// Raster images additionally get a PNG thumbnail under
// .thumbnails/scene-<sceneId>/<assetId>_thumb.png, scaled to fit a square
// bound without ever enlarging the source. Thumbnail failures are logged
// and leave the asset without a preview; only copy failures fail an import.
package assets
