package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"facultyportal/pkg/domain"
)

var testIdentity = domain.Session{ID: "2", Email: "faculty@uni.com", Role: domain.RoleFaculty}

func TestMemorySessionRoundTrip(t *testing.T) {
	s := NewMemorySessionStore()
	token, err := s.NewSession(testIdentity)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	sess, ok, err := s.SessionByToken(token)
	if err != nil || !ok {
		t.Fatalf("session by token: ok=%v err=%v", ok, err)
	}
	if sess != testIdentity {
		t.Fatalf("session = %+v, want %+v", sess, testIdentity)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.SessionByToken(token); ok {
		t.Fatalf("expected session gone after delete")
	}
	// Sign-out is idempotent.
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestRedisSessionRoundTrip(t *testing.T) {
	r := miniredis.RunT(t)
	s := NewRedisSessionStore(r.Addr(), "", time.Hour)
	token, err := s.NewSession(testIdentity)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	sess, ok, err := s.SessionByToken(token)
	if err != nil || !ok {
		t.Fatalf("session by token: ok=%v err=%v", ok, err)
	}
	if sess.Role != domain.RoleFaculty {
		t.Fatalf("role = %s, want Faculty", sess.Role)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.SessionByToken(token); ok {
		t.Fatalf("expected session gone after delete")
	}
	if err := s.DeleteSession("unknown-token"); err != nil {
		t.Fatalf("delete of unknown token should be a no-op, got %v", err)
	}
}

func TestJWTSessionRoundTrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
	token, err := s.NewSession(testIdentity)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	sess, ok, err := s.SessionByToken(token)
	if err != nil || !ok {
		t.Fatalf("session by token: ok=%v err=%v", ok, err)
	}
	if sess != testIdentity {
		t.Fatalf("session = %+v, want %+v", sess, testIdentity)
	}
	// Wrong secret must not validate.
	other := NewJWTSessionStore("other-secret", time.Hour)
	if _, ok, _ := other.SessionByToken(token); ok {
		t.Fatalf("token validated under wrong secret")
	}
}

func TestJWTSessionExpiry(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)
	token, err := s.NewSession(testIdentity)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := s.SessionByToken(token); ok {
		t.Fatalf("expired token should not validate")
	}
}
