package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/faizan/spotify-tracks/apperr"
	"github.com/faizan/spotify-tracks/store"
	"github.com/faizan/spotify-tracks/testutil"
	jwt "github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.New(testutil.NewDB(t)), NewTokens("test-secret"))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("HashesPassword", func(t *testing.T) {
		s := newService(t)

		user, err := s.Register(ctx, "alice", "s3cret")
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if user.ID == 0 {
			t.Error("expected an assigned id")
		}
		if user.PasswordHash == "s3cret" {
			t.Fatal("plaintext password stored")
		}
		cost, err := bcrypt.Cost([]byte(user.PasswordHash))
		if err != nil {
			t.Fatalf("stored hash is not bcrypt: %v", err)
		}
		if cost != 10 {
			t.Errorf("expected cost 10, got %d", cost)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := newService(t)

		if _, err := s.Register(ctx, "alice", "one"); err != nil {
			t.Fatalf("register failed: %v", err)
		}
		_, err := s.Register(ctx, "alice", "two")
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		s := newService(t)

		for _, tc := range []struct{ username, password string }{
			{"", "pw"},
			{"   ", "pw"},
			{"bob", ""},
			{"bob", strings.Repeat("x", 73)},
		} {
			if _, err := s.Register(ctx, tc.username, tc.password); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("register(%q, len %d): expected ErrValidation, got %v", tc.username, len(tc.password), err)
			}
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesToken", func(t *testing.T) {
		s := newService(t)
		if _, err := s.Register(ctx, "alice", "s3cret"); err != nil {
			t.Fatalf("register failed: %v", err)
		}

		token, err := s.Login(ctx, "alice", "s3cret")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if strings.Contains(token, "s3cret") {
			t.Error("token must not carry the password")
		}

		claims, err := s.Verify(token)
		if err != nil {
			t.Fatalf("token should verify: %v", err)
		}
		if claims.Username != "alice" {
			t.Errorf("expected username alice, got %s", claims.Username)
		}
		ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
		if ttl != time.Hour {
			t.Errorf("expected one hour expiry, got %s", ttl)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		s := newService(t)
		if _, err := s.Register(ctx, "alice", "s3cret"); err != nil {
			t.Fatalf("register failed: %v", err)
		}

		if _, err := s.Login(ctx, "alice", "nope"); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		s := newService(t)

		if _, err := s.Login(ctx, "ghost", "pw"); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})
}

func TestTokens(t *testing.T) {
	t.Run("Expired", func(t *testing.T) {
		tokens := NewTokens("test-secret")
		tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

		token, err := tokens.Issue("alice")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if _, err := NewTokens("test-secret").Verify(token); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth for expired token, got %v", err)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := NewTokens("one").Issue("alice")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if _, err := NewTokens("two").Verify(token); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := &Claims{
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to build unsigned token: %v", err)
		}
		if _, err := NewTokens("test-secret").Verify(unsigned); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("NoExpiry", func(t *testing.T) {
		claims := &Claims{Username: "alice"}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		if _, err := NewTokens("test-secret").Verify(signed); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth for a token without exp, got %v", err)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := NewTokens("test-secret").Verify("not-a-jwt"); !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})
}
