package client

import (
	"sync"

	"ecuestre_go/models"
)

// Session is the logged-in panel user and their bearer token. It is passed
// to New explicitly and shared by every component built on that Client.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

func NewSession() *Session {
	return &Session{}
}

// Load stores the token and user returned by a successful login.
func (s *Session) Load(token string, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

// Clear forgets the current user.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the session may change the catalogue.
func (s *Session) IsAdmin() bool {
	u := s.User()
	return u != nil && u.Rol == models.RolAdmin
}
