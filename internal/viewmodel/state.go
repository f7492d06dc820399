package viewmodel

import (
	"time"

	"pharmstock/m/domain"
)

// State is what a viewer of one scope currently has on screen: the latest snapshot
// and the search box contents. It is a value; every change returns a new State.
type State struct {
	Scope  domain.Scope
	Items  []domain.Item
	Search string
}

// NewState starts an empty view of scope.
func NewState(scope domain.Scope) State {
	return State{Scope: scope}
}

// WithItems replaces the item list with a fresh snapshot.
func (s State) WithItems(items []domain.Item) State {
	s.Items = items
	return s
}

// WithSearch replaces the search term.
func (s State) WithSearch(term string) State {
	s.Search = term
	return s
}

// View projects the state.
func (s State) View(now time.Time, opts Options) View {
	return Build(s.Items, s.Search, now, opts)
}
