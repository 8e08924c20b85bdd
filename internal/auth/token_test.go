package auth

import (
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	user := &models.User{ID: 7, Username: "alice"}

	pair, err := issuer.Issue(user, 3)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Parse(pair.AccessToken, models.TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != 7 || claims.ProfileID != 3 || claims.Username != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := issuer.Parse(pair.RefreshToken, models.TokenTypeRefresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestParseRejectsWrongType(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	pair, err := issuer.Issue(&models.User{ID: 1, Username: "bob"}, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(pair.RefreshToken, models.TokenTypeAccess); err != ErrWrongTokenType {
		t.Fatalf("expected ErrWrongTokenType got %v", err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	pair, err := NewTokenIssuer("one", time.Minute, time.Hour).Issue(&models.User{ID: 1}, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenIssuer("two", time.Minute, time.Hour).Parse(pair.AccessToken, models.TokenTypeAccess); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("s", -time.Minute, time.Hour)
	pair, err := issuer.Issue(&models.User{ID: 1}, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(pair.AccessToken, models.TokenTypeAccess); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}
