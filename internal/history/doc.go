// Package history merges the recent changesets of every repository on a Plastic SCM server
// into one list ordered newest first.
package history
