// Package events defines the solver related events emitted on the event bus.
//
// Available event types:
//   - ProgressEvent: periodic incumbent and node-count updates of a running solve
//   - ResultEvent: terminal status of a finished solve
package events
