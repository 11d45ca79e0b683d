// Package scraper contains the worker that owns the browser session and the
// state container it shares with its readers.
package scraper

import (
	"sync"

	"github.com/jakopako/cursorwatch/usage"
)

// Phase describes what the worker is currently doing.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseFetching  Phase = "fetching"
	PhaseLoggingIn Phase = "logging_in"
	PhaseError     Phase = "error"
)

// State is the bridge between the worker goroutine and any number of
// readers. The worker is the only writer. All fields are guarded by one
// mutex so a reader can never observe a torn combination of fields.
type State struct {
	mu            sync.Mutex
	phase         Phase
	lastError     string
	authenticated bool
	snapshot      *usage.Snapshot
	lastFetchTime string
}

func NewState() *State {
	return &State{phase: PhaseIdle}
}

// An Update names the fields to merge into the state. Nil fields are left
// untouched. The set of updatable fields is fixed at compile time, there is
// no way to smuggle an unknown field past the type checker.
type Update struct {
	Phase         *Phase
	LastError     *string
	Authenticated *bool
	Snapshot      *usage.Snapshot
	LastFetchTime *string
}

// Apply atomically merges the update into the state.
func (s *State) Apply(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Phase != nil {
		s.phase = *u.Phase
	}
	if u.LastError != nil {
		s.lastError = *u.LastError
	}
	if u.Authenticated != nil {
		s.authenticated = *u.Authenticated
	}
	if u.Snapshot != nil {
		snapshot := *u.Snapshot
		s.snapshot = &snapshot
	}
	if u.LastFetchTime != nil {
		s.lastFetchTime = *u.LastFetchTime
	}
}

// A View is a copy of all state fields taken at a single instant.
type View struct {
	Phase         Phase
	LastError     string
	Authenticated bool
	Snapshot      *usage.Snapshot
	LastFetchTime string
}

// View atomically copies the current state. The contained snapshot is a copy
// as well, a caller can never reach the live state through it.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Phase:         s.phase,
		LastError:     s.lastError,
		Authenticated: s.authenticated,
		LastFetchTime: s.lastFetchTime,
	}
	if s.snapshot != nil {
		snapshot := *s.snapshot
		v.Snapshot = &snapshot
	}
	return v
}

func ptr[T any](v T) *T {
	return &v
}
