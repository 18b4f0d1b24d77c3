// Package session tracks the client's own login and battle status
package session

import "sync"

// State is the login/battle status of the local user
type State int

const (
	NotLoggedIn State = iota
	LoggedIn
	InBattle
)

// String returns the label shown on the status line
func (s State) String() string {
	switch s {
	case NotLoggedIn:
		return "not login"
	case LoggedIn:
		return "login"
	case InBattle:
		return "battle"
	default:
		return "unknown"
	}
}

// UnknownName is the display name before a login attempt and after logout
const UnknownName = "<unknown>"

// Snapshot is a consistent copy of the session fields
type Snapshot struct {
	State State
	Name  string
}

// Session is shared by the UI goroutine and the dispatcher goroutine.
// Every access goes through mu
type Session struct {
	mu      sync.Mutex
	state   State
	name    string
	changed chan struct{}
}

// New creates a session in NotLoggedIn with the sentinel name
func New() *Session {
	return &Session{
		state:   NotLoggedIn,
		name:    UnknownName,
		changed: make(chan struct{}),
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Name returns the current display name
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Snapshot returns state and name read under one lock
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Name: s.name}
}

// Changed returns a channel that is closed at the next state change
func (s *Session) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// BeginLogin records the name submitted to the server. The server has not
// confirmed it yet, so the state is left alone
func (s *Session) BeginLogin(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// LoginSucceeded moves the session to LoggedIn
func (s *Session) LoginSucceeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setState(LoggedIn)
}

// LoginFailed is a no-op on the state; the server refused the name
func (s *Session) LoginFailed() {}

// EnterBattle moves a logged in session into a battle
func (s *Session) EnterBattle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == LoggedIn {
		s.setState(InBattle)
	}
}

// LeaveBattle returns a session in battle to LoggedIn
func (s *Session) LeaveBattle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == InBattle {
		s.setState(LoggedIn)
	}
}

// Killed ends the battle for the local user. The state change wakes the
// battle screen, which then returns to the main screen
func (s *Session) Killed() {
	s.LeaveBattle()
}

// Logout resets the session to NotLoggedIn with the sentinel name
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = UnknownName
	s.setState(NotLoggedIn)
}

// setState must be called with mu held
func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.state = state
	close(s.changed)
	s.changed = make(chan struct{})
}
