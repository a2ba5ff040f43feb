// Package main hosts the storyboard CLI entrypoint and command graph.
//
// The Cobra command tree drives a store.Store session against one project
// directory (selected with --project, defaulting to the working directory):
// each mutating command opens the project, applies one change, and saves.
// Read-only commands render tables for terminals or JSON with --json.
//
// Keep this package thin. Behavior belongs in the internal packages; commands
// only parse arguments, call the store, and format results.
package main
