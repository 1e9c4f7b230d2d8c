// Package document holds the canonical state of the shared document.
//
// # Overview
//
// A document is two fields: the markdown text and the view mode. Both travel
// together inside the share link, so every change is published as the full
// State rather than a delta.
//
// # Two write paths
//
//	Local (user edits):              External (link changed):
//	┌────────────────────┐           ┌────────────────────┐
//	│ SetContent/SetMode │           │ Hydrate            │
//	│        ↓           │           │        ↓           │
//	│ state updated      │           │ state updated      │
//	│        ↓           │           │ (no notification)  │
//	│ Notifier.Notify()  │           └────────────────────┘
//	└────────────────────┘
//
// The paths are separate methods so a read of the link can never be echoed
// back as a write.
//
// # Sync phase
//
// A Store starts in PhaseLoading. Local edits made while loading mutate the
// state but are not published. The session moves the store to PhaseReady
// once the first hydration attempt has finished, whether it succeeded or not.
//
// # Concurrency
//
// Store uses a readers-writer lock. The notifier is called after the lock is
// released, so it may read the store again.
package document
