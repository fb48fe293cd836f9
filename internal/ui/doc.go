// Package ui renders cm command lifecycle events as short console messages
// while the structured log keeps the full command details.
package ui
