package gate

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPinRequired = errors.New("pin is required")
	ErrPinInvalid  = errors.New("invalid pin")
)

const sessionTTL = 30 * 24 * time.Hour

// Service guards the application behind a single shared PIN. Successful
// logins mint opaque session tokens; valid checks push a session's expiry
// forward, so only idle sessions ever lapse.
type Service struct {
	mu       sync.RWMutex
	pinHash  string
	sessions map[string]time.Time
	now      func() time.Time
}

// NewService creates a gate from a bcrypt PIN hash. An empty hash disables
// the gate: every login succeeds and every check passes.
func NewService(pinHash string) *Service {
	return &Service{
		pinHash:  strings.TrimSpace(pinHash),
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Enabled reports whether a PIN is configured.
func (s *Service) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pinHash != ""
}

// Login verifies the PIN and returns a fresh session token.
func (s *Service) Login(pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pinHash != "" {
		if strings.TrimSpace(pin) == "" {
			return "", ErrPinRequired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.pinHash), []byte(pin)); err != nil {
			return "", ErrPinInvalid
		}
	}

	token := uuid.NewString()
	s.sessions[token] = s.now().Add(sessionTTL)
	return token, nil
}

// Check reports whether the token names a live session. Valid tokens have
// their expiry pushed forward.
func (s *Service) Check(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pinHash == "" {
		return true
	}

	expiry, ok := s.sessions[strings.TrimSpace(token)]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.sessions, token)
		return false
	}

	s.sessions[token] = s.now().Add(sessionTTL)
	return true
}

// Logout discards the session token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.TrimSpace(token))
}
