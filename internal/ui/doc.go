// Package ui is the Bubble Tea front end for sharemd.
//
// # Layout
//
// One screen with three rows:
//
//   - Header: logo, mode badge, size of the current link, transient notices
//   - Body: a textarea in edit mode, a glamour-rendered viewport in preview mode
//   - Footer: short key help from bubbles/help
//
// # Event Flow
//
//  1. Keystrokes go to the editor; every change is copied into document.Store,
//     which hands it to the debounced publisher
//  2. The app forwards publisher results as PublishedMsg and external link
//     changes as ExternalChangeMsg via tea.Program.Send
//  3. ctrl+s runs Share in a command and reports the copied link
//
// The model never writes the link itself; the session owns that.
//
// # Themes
//
// Dracula and Slate, cycled with ctrl+t. The choice and the line number toggle
// are saved through the prefs package.
package ui
