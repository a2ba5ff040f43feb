// Package fileserve exposes project files over local HTTP so a renderer can
// display assets and thumbnails by absolute path.
//
// Requests take the form GET /files/<absolute path>. The URL path is turned
// into a filesystem path by fileutil.NormalizeURLPath, which drops the slash
// in front of a Windows drive letter. Only files under registered project
// roots are served.
package fileserve
