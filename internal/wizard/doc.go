// Package wizard implements the eight wizard pages, the fragment router that
// selects between them, and the navigator that tracks the current page.
//
// # Navigation
//
// The current page is a Fragment held by a Navigator. Pages never move the
// navigator themselves: a successful save returns a Result naming the
// suggested next Fragment and the caller (CLI or TUI) applies it. Any
// fragment can be visited directly; the linear order is only a suggestion.
//
// # Rendering
//
// Router.Route maps a raw fragment string to a PageFunc and always returns a
// View. A page that panics or fails to build its view is replaced by a
// diagnostic View carrying a *RenderError. A page whose store reads fail
// still renders, with View.Banner describing the failure.
//
// # Persistence
//
// Pages hold no state between renders. Every render re-reads the records it
// shows and every save is a single full-record Put. Reads of different
// collections are independent; a write landing between two of them is
// visible in one and not the other.
package wizard
