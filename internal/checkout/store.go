package checkout

import (
	"sync"
	"time"
)

// Store keeps live sessions addressable across HTTP requests. Finished
// sessions are swept after a TTL so clients have a window to read the final
// state before the session disappears.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	st := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
	go st.sweep()
	return st
}

func (st *Store) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) sweep() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		cutoff := time.Now().Add(-st.ttl)
		st.mu.Lock()
		for id, s := range st.sessions {
			if s.Finished() && s.StartedAt().Before(cutoff) {
				delete(st.sessions, id)
			}
		}
		st.mu.Unlock()
	}
}
