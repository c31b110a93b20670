// Package ui is the terminal front end for the potluck guest list, built on
// Bubble Tea.
//
// The Model never talks to the remote store. It reads cache snapshots from a
// reconcile engine on a short tick and turns key presses into engine calls
// that run as tea.Cmds, so a slow store never blocks rendering. Optimistic
// writes show up on the next tick; the engine's result arrives later as a
// status message.
//
// # Screens
//
//   - List: guests sorted by name with a category row and RSVP split in the
//     header. Rows whose mutation has not been confirmed are dimmed and marked.
//   - Search: "/" filters live across name, dish, categories and RSVP.
//   - Form: add or edit a guest. Edits send only the fields that changed.
//   - Confirm: "d" asks before removing.
//
// The theme and the last search are saved through package prefs.
package ui
