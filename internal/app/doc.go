// Package app is the composition root for sharemd.
//
// # Startup
//
// Run wires everything in this order:
//
//  1. Load ~/.config/sharemd/config.toml (defaults when missing)
//  2. Open the slog log file; the terminal belongs to the UI
//  3. Open the link file, replacing it first when a link was given
//  4. Load UI prefs (theme, line numbers)
//  5. Build the session: store, debounced publisher, external-change listener
//  6. Start the session, which hydrates the store once from the link file
//  7. Build the Bubble Tea program and start watching the link file
//  8. Run the program until the user quits or the context is cancelled
//
// # Data Flow
//
//	keystroke ─> ui.Model ─> document.Store ─> publish.Publisher ─(debounce)─> link file
//	                 ^                                                           │
//	                 └── ExternalChangeMsg <── session.Listener <── fsnotify ────┘
//
// Publisher results and external changes arrive on timer and watcher
// goroutines; both reach the model through tea.Program.Send.
//
// # Watching
//
// The link file is watched with fsnotify. When a watcher cannot be created
// (exhausted inotify instances, some network filesystems) StartPoller re-reads
// the file every two seconds instead, backing off while reads fail.
package app
