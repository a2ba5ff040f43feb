// Package textutil turns user-entered project names into directory names
// that are safe on every supported filesystem.
package textutil
