package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

// Store keeps sessions in process memory and evicts those idle for longer than ttl.
type Store struct {
	ttl   time.Duration
	clock ports.Clock

	mu       sync.Mutex
	sessions map[domain.ConversationID]domain.Session
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore(ttl time.Duration, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{
		ttl:      ttl,
		clock:    clock,
		sessions: map[domain.ConversationID]domain.Session{},
	}
}

func (s *Store) Get(ctx context.Context, conversation domain.ConversationID) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[conversation]
	if !ok {
		return domain.NewSession(conversation, now), nil
	}
	if session.Expired(now, s.ttl) {
		delete(s.sessions, conversation)
		release(session)
		return domain.NewSession(conversation, now), nil
	}

	return session, nil
}

func (s *Store) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session.LastActive = s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Conversation] = session
	return nil
}

func (s *Store) Delete(ctx context.Context, conversation domain.ConversationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[conversation]; ok {
		delete(s.sessions, conversation)
		release(session)
	}
	return nil
}

func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		if !session.Expired(now, s.ttl) {
			continue
		}
		delete(s.sessions, id)
		release(session)
		evicted++
	}

	return evicted, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func release(session domain.Session) {
	if session.Pending != nil {
		_ = session.Pending.Close()
	}
}
