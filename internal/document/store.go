package document

import "sync"

// Notifier receives the full state after every local change.
type Notifier interface {
	Notify(State)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(State)

// Notify calls f(s).
func (f NotifierFunc) Notify(s State) { f(s) }

// Store holds the canonical document state and sync phase.
//
// Local edits (SetContent, SetMode, ToggleMode) notify the publisher once the
// store is ready. Hydrate is the external path: it applies state read from the
// link and never notifies, so re-reading the link cannot trigger a write.
// Concurrent local edits notify in the order they were applied.
type Store struct {
	// editMu orders local edits together with their notification. It is held
	// while the notifier runs, so a notifier must not edit the store.
	editMu   sync.Mutex
	mu       sync.RWMutex
	state    State
	phase    Phase
	notifier Notifier
}

// NewStore returns a loading store seeded with seed. notifier may be nil.
func NewStore(seed State, notifier Notifier) *Store {
	return &Store{state: seed, notifier: notifier}
}

// Read returns a copy of the current state.
func (s *Store) Read() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Phase returns the current sync phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Ready reports whether the store has left the loading phase.
func (s *Store) Ready() bool {
	return s.Phase() == PhaseReady
}

// MarkReady moves the store to PhaseReady. It reports whether this call made
// the transition.
func (s *Store) MarkReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseReady {
		return false
	}
	s.phase = PhaseReady
	return true
}

// SetContent replaces the document text as a local edit.
func (s *Store) SetContent(text string) {
	s.mutate(func(st *State) { st.Content = text })
}

// SetMode changes the view mode as a local edit.
func (s *Store) SetMode(mode Mode) {
	s.mutate(func(st *State) { st.Mode = mode })
}

// ToggleMode flips the view mode as a local edit and returns the new mode.
func (s *Store) ToggleMode() Mode {
	return s.mutate(func(st *State) { st.Mode = st.Mode.Toggle() }).Mode
}

// Hydrate replaces the state with one read from the link. It never notifies.
func (s *Store) Hydrate(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

func (s *Store) mutate(apply func(*State)) State {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	s.mu.Lock()
	prev := s.state
	apply(&s.state)
	next := s.state
	ready := s.phase == PhaseReady
	notifier := s.notifier
	s.mu.Unlock()

	if next != prev && ready && notifier != nil {
		notifier.Notify(next)
	}
	return next
}
