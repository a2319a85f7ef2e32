package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/ports"

	"github.com/google/uuid"
)

type session struct {
	mu      sync.Mutex
	tracker *tracker.VoteTracker
}

// Store keeps live sessions in process memory. The registry lock only guards
// the session map; each session has its own lock so sessions never contend.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
	}
}

func (s *Store) CreateSession(_ context.Context, sessionID string, vt *tracker.VoteTracker) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || vt == nil {
		return domainerrors.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sessionID]; exists {
		return domainerrors.ErrInvalidArgument
	}
	s.sessions[sessionID] = &session{tracker: vt}
	return nil
}

func (s *Store) WithSession(ctx context.Context, sessionID string, fn func(vt *tracker.VoteTracker) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	item, ok := s.sessions[strings.TrimSpace(sessionID)]
	s.mu.RUnlock()
	if !ok {
		return domainerrors.ErrSessionNotFound
	}

	item.mu.Lock()
	defer item.mu.Unlock()
	return fn(item.tracker)
}

func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionID = strings.TrimSpace(sessionID)
	if _, ok := s.sessions[sessionID]; !ok {
		return domainerrors.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.SessionRepository = (*Store)(nil)
	_ ports.Clock             = (*Store)(nil)
	_ ports.IDGenerator       = (*Store)(nil)
)
