package supplement

import "sync"

// Store holds the authoritative Slice for the currently open question.
// It is refreshed wholesale from the database after every mutation; there is
// no partial-update API, so client and server state cannot diverge.
type Store struct {
	mu    sync.RWMutex
	slice Slice
	gen   uint64 // bumped on every Replace; cached resolutions must not outlive it
}

func NewStore() *Store {
	return &Store{slice: Slice{}}
}

// Replace swaps the whole slice. Any "latest" pointer derived from the
// previous generation is invalid after this call.
func (s *Store) Replace(slice Slice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slice == nil {
		slice = Slice{}
	}
	s.slice = slice
	s.gen++
}

// Snapshot returns the current slice and its generation counter.
// The slice must be treated as read-only by callers.
func (s *Store) Snapshot() (Slice, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slice, s.gen
}

// GetVersions returns the ordered history for (action, groupKey).
func (s *Store) GetVersions(action, groupKey string) []VersionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slice.Versions(action, groupKey)
}

// Generation returns the replace counter, used as a stale-response guard:
// a fetch started against an older generation is discarded on arrival.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}
