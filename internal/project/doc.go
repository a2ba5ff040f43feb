// Package project defines the storyboard project graph and its persisted
// envelope.
//
// A Project holds an ordered list of Scenes; each Scene exclusively owns its
// Assets and GenerationRuns. Scene order fields are contiguous and zero based
// (scenes[i].Order == i) whenever the graph is observed outside a mutation.
// The File envelope carries the document version; only FileVersion is
// accepted on load.
//
// Values in this package are plain data. Mutation goes through the store
// package, which enforces the ordering and identity invariants.
package project
