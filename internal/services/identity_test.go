package services

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/snapgram/backend/internal/auth"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/testutil"
)

var _ IDTokenVerifier = (*fbauth.Client)(nil)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("token rejected")
}

func newIdentity(t *testing.T, verifier IDTokenVerifier) (*Identity, *auth.TokenIssuer) {
	db := testutil.NewTestDB(t)
	issuer := auth.NewTokenIssuer("secret", time.Minute, time.Hour)
	return NewIdentity(db, issuer, verifier), issuer
}

func TestRegisterAndLogin(t *testing.T) {
	id, issuer := newIdentity(t, nil)
	ctx := context.Background()

	profile, err := id.Register(ctx, &models.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.ID == 0 || profile.DisplayName != "alice" || profile.Username() != "alice" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	pair, err := id.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := issuer.Parse(pair.AccessToken, models.TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ProfileID != profile.ID {
		t.Fatalf("expected profile id %d in token, got %d", profile.ID, claims.ProfileID)
	}

	if _, err := id.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := id.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	id, _ := newIdentity(t, nil)
	ctx := context.Background()

	req := &models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}
	if _, err := id.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}

	dupName := &models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password123"}
	if _, err := id.Register(ctx, dupName); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on username, got %v", err)
	}
	dupEmail := &models.RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "password123"}
	if _, err := id.Register(ctx, dupEmail); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on email, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	id, _ := newIdentity(t, nil)
	ctx := context.Background()

	if _, err := id.Register(ctx, &models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := id.Login(ctx, "bob", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := id.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := id.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected access token to be refused, got %v", err)
	}
}

func TestFirebaseLogin(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*fbauth.Token{
		"new-user": {UID: "uid-1", Claims: map[string]interface{}{"email": "carol.smith@example.com", "name": "Carol"}},
		"existing": {UID: "uid-2", Claims: map[string]interface{}{"email": "dave@example.com"}},
	}}
	id, issuer := newIdentity(t, verifier)
	ctx := context.Background()

	pair, err := id.FirebaseLogin(ctx, "new-user")
	if err != nil {
		t.Fatalf("firebase login: %v", err)
	}
	claims, err := issuer.Parse(pair.AccessToken, models.TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "carolsmith" {
		t.Fatalf("expected derived username carolsmith, got %s", claims.Username)
	}

	// Second login resolves the same user through its uid.
	again, err := id.FirebaseLogin(ctx, "new-user")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	againClaims, _ := issuer.Parse(again.AccessToken, models.TokenTypeAccess)
	if againClaims.UserID != claims.UserID {
		t.Fatalf("expected same user, got %d and %d", claims.UserID, againClaims.UserID)
	}

	// A password account with the same email gets linked.
	reg, err := id.Register(ctx, &models.RegisterRequest{Username: "dave", Email: "dave@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	linked, err := id.FirebaseLogin(ctx, "existing")
	if err != nil {
		t.Fatalf("link login: %v", err)
	}
	linkedClaims, _ := issuer.Parse(linked.AccessToken, models.TokenTypeAccess)
	if linkedClaims.ProfileID != reg.ID {
		t.Fatalf("expected linked profile %d, got %d", reg.ID, linkedClaims.ProfileID)
	}

	if _, err := id.FirebaseLogin(ctx, "forged"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestFirebaseLoginDisabled(t *testing.T) {
	id, _ := newIdentity(t, nil)
	if id.FirebaseEnabled() {
		t.Fatalf("expected firebase to be disabled")
	}
	if _, err := id.FirebaseLogin(context.Background(), "x"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
}

func TestDeriveUsername(t *testing.T) {
	cases := map[string]string{
		"jane.doe@example.com":                    "janedoe",
		"a@example.com":                           "usera",
		"Very-Long.Local+Part.Name.Here@mail.com": "verylonglocalpartname",
	}
	for email, want := range cases {
		if got := DeriveUsername(email); got != want {
			t.Errorf("DeriveUsername(%q) = %q, want %q", email, got, want)
		}
	}
}
