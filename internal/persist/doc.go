// Package persist reads and writes the versioned project document.
//
// A project directory contains project.json plus the assets/ and
// .thumbnails/ trees. Documents are written through a temporary file in the
// same directory followed by a rename, so a crash mid-save leaves the
// previous document intact. Loading rejects any envelope whose version is
// not project.FileVersion and any graph whose scene ordering is broken; both
// surface as services.ErrFormat. Filesystem failures surface as
// services.ErrIO.
package persist
