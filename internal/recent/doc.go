// Package recent maintains the application-scoped list of recently opened
// projects.
//
// The list is a JSON array of {name, path, modifiedAt} objects stored newest
// first and capped at a configured length (10 by default). Reading never
// fails the caller: a missing or unparsable file yields an empty list.
// Writes take an exclusive advisory lock on a sibling ".lock" file so two
// processes adding entries at once do not drop each other's update, and the
// file itself is replaced by rename.
package recent
