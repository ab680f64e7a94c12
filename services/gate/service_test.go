package gate

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func hashPIN(t *testing.T, pin string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	return string(hash)
}

func TestLoginWithCorrectPIN(t *testing.T) {
	svc := NewService(hashPIN(t, "123456"))

	token, err := svc.Login("123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if !svc.Check(token) {
		t.Error("expected fresh token to be valid")
	}
}

func TestLoginRejectsWrongPIN(t *testing.T) {
	svc := NewService(hashPIN(t, "123456"))

	if _, err := svc.Login("654321"); !errors.Is(err, ErrPinInvalid) {
		t.Errorf("expected ErrPinInvalid, got %v", err)
	}
	if _, err := svc.Login(""); !errors.Is(err, ErrPinRequired) {
		t.Errorf("expected ErrPinRequired, got %v", err)
	}
}

func TestCheckUnknownToken(t *testing.T) {
	svc := NewService(hashPIN(t, "123456"))
	if svc.Check("not-a-token") {
		t.Error("expected unknown token rejected")
	}
	if svc.Check("") {
		t.Error("expected empty token rejected")
	}
}

func TestSessionExpiry(t *testing.T) {
	svc := NewService(hashPIN(t, "123456"))

	now := time.Now()
	svc.now = func() time.Time { return now }

	token, err := svc.Login("123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Just inside the window: valid, and the check refreshes expiry.
	now = now.Add(sessionTTL - time.Minute)
	if !svc.Check(token) {
		t.Fatal("expected token valid inside the window")
	}

	// The refresh pushed expiry forward, so another near-TTL jump still passes.
	now = now.Add(sessionTTL - time.Minute)
	if !svc.Check(token) {
		t.Fatal("expected refreshed token still valid")
	}

	// Idle past the TTL: gone.
	now = now.Add(sessionTTL + time.Minute)
	if svc.Check(token) {
		t.Error("expected idle token expired")
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := NewService(hashPIN(t, "123456"))

	token, err := svc.Login("123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	svc.Logout(token)
	if svc.Check(token) {
		t.Error("expected logged-out token rejected")
	}
}

func TestDisabledGate(t *testing.T) {
	svc := NewService("")

	if svc.Enabled() {
		t.Error("expected gate disabled with empty hash")
	}
	if !svc.Check("anything") {
		t.Error("expected every check to pass with gate disabled")
	}
	token, err := svc.Login("")
	if err != nil {
		t.Fatalf("expected login to succeed with gate disabled, got %v", err)
	}
	if token == "" {
		t.Error("expected a token even with gate disabled")
	}
}
