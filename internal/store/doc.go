// Package store owns the live project graph for one editing session.
//
// A Store is created once and handed to whatever drives the session (the
// CLI, a file server, tests); there is no package-level state. It holds at
// most one open project together with its directory, a dirty flag and the
// current scene selection. Every mutation of the graph goes through a Store
// method, and each structural scene operation leaves scene order fields
// contiguous and zero based before it returns.
//
// Disk I/O is delegated to persist (project.json), recent (the recent
// projects list) and assets (media files and thumbnails). A failed create,
// open, save or save-as leaves the in-memory session exactly as it was.
//
// A Store is not safe for concurrent use.
package store
