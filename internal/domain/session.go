package domain

import "time"

type Stage string

const (
	StageIdle              Stage = "IDLE"
	StageWaitFollowers     Stage = "WAIT_FOLLOWERS"
	StageWaitFollowing     Stage = "WAIT_FOLLOWING"
	StageWaitCookies       Stage = "WAIT_COOKIES"
	StageWaitLoginUsername Stage = "WAIT_LOGIN_USERNAME"
	StageWaitLoginPassword Stage = "WAIT_LOGIN_PASSWORD"
	StageAwait2FA          Stage = "AWAIT_2FA"
)

type ConversationID int64

type MessageID int

// PendingHandle owns a live login that is waiting for a second factor.
type PendingHandle interface {
	ID() string
	Close() error
}

type Session struct {
	Conversation  ConversationID
	Stage         Stage
	Target        Identifier
	Followers     IdentifierSet
	Following     IdentifierSet
	Pending       PendingHandle
	Cookies       *CookieJar
	LoginUsername Identifier
	Retract       []MessageID
	LastActive    time.Time
}

func NewSession(conversation ConversationID, now time.Time) Session {
	return Session{
		Conversation: conversation,
		Stage:        StageIdle,
		LastActive:   now,
	}
}

// ClearLists drops both membership lists.
func (s *Session) ClearLists() {
	s.Followers = nil
	s.Following = nil
}

// ClearLogin drops the in-flight credentials and closes any pending second-factor handle.
func (s *Session) ClearLogin() {
	s.LoginUsername = ""
	s.Retract = nil
	if s.Pending != nil {
		_ = s.Pending.Close()
		s.Pending = nil
	}
}

// Reset returns the session to its initial stage. Authenticated cookies survive.
func (s *Session) Reset() {
	s.ClearLists()
	s.ClearLogin()
	s.Target = ""
	s.Stage = StageIdle
}

func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastActive) >= ttl
}
