package client

import (
	"slices"
	"sync"
	"time"
)

// EventKind identifies a session transition.
type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
	TokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// Session is the signed-in administrator as reported by the API.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Tokens is the credential pair issued by login and refresh.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Event is delivered to subscribers on every session transition. Session is
// nil for SignedOut.
type Event struct {
	Kind    EventKind
	Session *Session
}

// SessionContext holds the current session and notifies subscribers when it
// changes. The zero value is not usable; call NewSessionContext.
type SessionContext struct {
	mu      sync.RWMutex
	session *Session
	tokens  *Tokens
	subs    map[int]func(Event)
	nextID  int
}

func NewSessionContext() *SessionContext {
	return &SessionContext{subs: make(map[int]func(Event))}
}

// Current returns the signed-in session, if any.
func (s *SessionContext) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	cp := *s.session
	return &cp, true
}

// Subscribe registers fn for session events and returns an id for
// Unsubscribe. Handlers run synchronously on the goroutine that changed the
// session and must not call back into Subscribe or Unsubscribe.
func (s *SessionContext) Subscribe(fn func(Event)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.subs[s.nextID] = fn
	return s.nextID
}

// Unsubscribe removes the handler registered under id. Unknown ids are
// ignored.
func (s *SessionContext) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *SessionContext) tokenPair() (Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return Tokens{}, false
	}
	return *s.tokens, true
}

func (s *SessionContext) set(kind EventKind, tokens Tokens, session *Session) {
	s.mu.Lock()
	s.tokens = &tokens
	if session != nil {
		cp := *session
		s.session = &cp
	}
	current := s.session
	handlers := s.handlers()
	s.mu.Unlock()

	var ev Event
	ev.Kind = kind
	if current != nil {
		cp := *current
		ev.Session = &cp
	}
	for _, h := range handlers {
		h(ev)
	}
}

func (s *SessionContext) clear() {
	s.mu.Lock()
	wasSignedIn := s.tokens != nil
	s.tokens = nil
	s.session = nil
	handlers := s.handlers()
	s.mu.Unlock()

	if !wasSignedIn {
		return
	}
	for _, h := range handlers {
		h(Event{Kind: SignedOut})
	}
}

// handlers snapshots subscribers in registration order. Caller holds mu.
func (s *SessionContext) handlers() []func(Event) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}
