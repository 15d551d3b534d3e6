// Package ui implements an interactive terminal browser for custom lists using bubbletea's Elm architecture.
//
// Two views:
//  1. [ListsView] : the signed-in user's lists, fed by [cache.ListCache.Subscribe]
//  2. [DetailView] : one list with its items enriched by the metadata service
//
// The [Model] never polls: every cache change arrives as a snapshot message. `s` cycles the sort order
// through the catalog engine and `r` asks the cache to reload.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
