package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	userCtx, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if userCtx.UserID != "user-1" {
		t.Fatalf("unexpected user id %q", userCtx.UserID)
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, _ := IssueToken(testSecret, "user-1", -time.Minute)
	wrongKey, _ := IssueToken("other-secret", "user-1", time.Hour)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong key", wrongKey, ErrInvalidToken},
		{"no subject", noSubject, ErrInvalidToken},
		{"wrong algorithm", wrongAlg, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(testSecret, tt.token)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if token, ok := BearerToken("Bearer abc"); !ok || token != "abc" {
		t.Fatalf("unexpected result %q %v", token, ok)
	}
	for _, header := range []string{"", "abc", "Basic abc", "Bearer "} {
		if _, ok := BearerToken(header); ok {
			t.Errorf("expected %q to be rejected", header)
		}
	}
}

func TestUserContextRoundTrip(t *testing.T) {
	if _, err := UserContextFromContext(context.Background()); err == nil {
		t.Fatal("expected error for empty context")
	}
	ctx := ContextWithUserContext(context.Background(), &UserContext{UserID: "u1"})
	userCtx, err := UserContextFromContext(ctx)
	if err != nil || userCtx.UserID != "u1" {
		t.Fatalf("unexpected result %+v, %v", userCtx, err)
	}
}
