package views

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/gohye/catalogbot/catalogbot/metrics"
)

var (
	ErrSessionNotFound = errors.New("view session not found or expired")
	ErrNotOwner        = errors.New("only the user who ran the command can use these buttons")
)

// ExpireFunc publishes the frozen rendering of an expired session, typically by editing the
// interaction's original message.
type ExpireFunc func(s *Session)

// Session binds a view to the user that created it. Interactions on one session run one at a
// time.
type Session struct {
	ID      string
	OwnerID snowflake.ID

	mu       sync.Mutex
	view     Navigator
	onExpire ExpireFunc
}

// View returns the session's view. Callers must hold the session through SessionStore.Do.
func (s *Session) View() Navigator { return s.view }

// Replace swaps the view, used when a shortcut opens another kind in place.
func (s *Session) Replace(view Navigator) { s.view = view }

func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Freeze()
	if s.onExpire != nil {
		s.onExpire(s)
	}
}

// SessionStore keeps live sessions until they sit idle for the configured timeout.
type SessionStore struct {
	cache *gocache.Cache
	idle  time.Duration
}

func NewSessionStore(idle, cleanup time.Duration) *SessionStore {
	store := &SessionStore{
		cache: gocache.New(idle, cleanup),
		idle:  idle,
	}
	store.cache.OnEvicted(func(id string, value any) {
		metrics.Sessions.Dec()
		if s, ok := value.(*Session); ok {
			slog.Debug("View session expired",
				slog.String("type", "cmd"),
				slog.String("session", id))
			s.expire()
		}
	})
	return store
}

// Start registers a new session for view.
func (st *SessionStore) Start(owner snowflake.ID, view Navigator, onExpire ExpireFunc) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		OwnerID:  owner,
		view:     view,
		onExpire: onExpire,
	}
	st.cache.Set(s.ID, s, st.idle)
	metrics.Sessions.Inc()
	return s
}

// Get returns the live session with id.
func (st *SessionStore) Get(id string) (*Session, error) {
	value, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return value.(*Session), nil
}

// Do runs fn with exclusive access to the session and restarts its idle timer.
func (st *SessionStore) Do(id string, user snowflake.ID, fn func(s *Session) error) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}
	if s.OwnerID != 0 && s.OwnerID != user {
		return ErrNotOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := st.touch(s); err != nil {
		return err
	}
	return fn(s)
}

// touch restarts the idle timer of a session that is still cached. An evicted session is
// never put back, so the eviction hook runs once per session.
func (st *SessionStore) touch(s *Session) error {
	if err := st.cache.Replace(s.ID, s, st.idle); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

func (st *SessionStore) Len() int {
	return st.cache.ItemCount()
}

// Close expires every live session.
func (st *SessionStore) Close() {
	for id := range st.cache.Items() {
		st.cache.Delete(id)
	}
}
