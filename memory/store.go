package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an idle conversation is remembered
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	lock   chan struct{} // holds one token while leased
	window *Window

	// guarded by Store.mu
	refs      int
	forgotten bool
}

// Store maps session ids to their conversation windows.
// Idle sessions live in the cache; sessions with a pending Acquire or an
// open Lease are also pinned in active so they cannot expire mid-request.
type Store struct {
	mu         sync.Mutex
	cache      *cache.Cache
	active     map[string]*session
	windowSize int
	ttl        time.Duration
}

// NewStore creates a session store. Sessions idle longer than ttl are dropped.
func NewStore(windowSize int, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		// Purge expired sessions every ttl/2
		cache:      cache.New(ttl, ttl/2),
		active:     make(map[string]*session),
		windowSize: windowSize,
		ttl:        ttl,
	}
}

// Lease is exclusive access to one session's window
type Lease struct {
	Window *Window

	store     *Store
	sessionID string
	sess      *session
	once      sync.Once
}

// Release unlocks the session and refreshes its expiry.
// A session forgotten while leased stays forgotten.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.store.unpin(l.sessionID, l.sess)
		<-l.sess.lock
	})
}

// Acquire locks the window of sessionID, creating an empty one for new sessions.
// It waits for any other lease on the session until ctx is done.
// Callers must Release the lease.
func (s *Store) Acquire(ctx context.Context, sessionID string) (*Lease, error) {
	sess := s.pin(sessionID)
	select {
	case sess.lock <- struct{}{}:
	case <-ctx.Done():
		s.unpin(sessionID, sess)
		return nil, ctx.Err()
	}
	return &Lease{
		Window:    sess.window,
		store:     s,
		sessionID: sessionID,
		sess:      sess,
	}, nil
}

func (s *Store) pin(sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[sessionID]
	if !ok {
		if x, found := s.cache.Get(sessionID); found {
			sess = x.(*session)
		} else {
			sess = &session{
				lock:   make(chan struct{}, 1),
				window: NewWindow(s.windowSize),
			}
		}
		s.active[sessionID] = sess
	}
	sess.refs++
	s.cache.Set(sessionID, sess, cache.DefaultExpiration)
	return sess
}

func (s *Store) unpin(sessionID string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.refs--
	if sess.refs == 0 && s.active[sessionID] == sess {
		delete(s.active, sessionID)
	}
	if !sess.forgotten {
		s.cache.Set(sessionID, sess, cache.DefaultExpiration)
	}
}

// Forget discards a session and its turns
func (s *Store) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.active[sessionID]; ok {
		sess.forgotten = true
		delete(s.active, sessionID)
	}
	if x, found := s.cache.Get(sessionID); found {
		x.(*session).forgotten = true
	}
	s.cache.Delete(sessionID)
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
