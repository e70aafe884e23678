package bot

import (
	"sync"
	"time"
)

// sessionTTL bounds how long a picked title stays attached to a user.
const sessionTTL = 10 * time.Minute

type session struct {
	titleID string
	expires time.Time
}

// sessionStore holds each user's most recently picked title so that
// bare /enable and /disable commands know what they refer to. Entries
// expire after sessionTTL.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]session
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[int64]session),
		now:      time.Now,
	}
}

// Put records the user's picked title, replacing any previous pick.
func (s *sessionStore) Put(userID int64, titleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session{
		titleID: titleID,
		expires: s.now().Add(sessionTTL),
	}
}

// Get returns the user's picked title, or false when there is none or it
// has expired. Expired entries are removed on access.
func (s *sessionStore) Get(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return "", false
	}
	if s.now().After(sess.expires) {
		delete(s.sessions, userID)
		return "", false
	}
	return sess.titleID, true
}

// Clear drops the user's pick, if any.
func (s *sessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
