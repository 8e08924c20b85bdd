package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/snapgram/backend/internal/auth"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDTokenVerifier verifies ID tokens issued by an external identity
// provider. *auth.Client from the Firebase Admin SDK satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Identity owns users, their profiles and token issuance.
type Identity struct {
	db       *gorm.DB
	tokens   *auth.TokenIssuer
	verifier IDTokenVerifier
}

// NewIdentity builds the identity service. verifier may be nil, which
// disables FirebaseLogin.
func NewIdentity(db *gorm.DB, tokens *auth.TokenIssuer, verifier IDTokenVerifier) *Identity {
	return &Identity{db: db, tokens: tokens, verifier: verifier}
}

// FirebaseEnabled reports whether external ID tokens can be exchanged.
func (s *Identity) FirebaseEnabled() bool {
	return s.verifier != nil
}

// Register creates a user and its profile together.
func (s *Identity) Register(ctx context.Context, req *models.RegisterRequest) (*models.Profile, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var profile *models.Profile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewPostgresUserRepository(tx)

		taken, err := users.UsernameExists(ctx, req.Username)
		if err != nil {
			return err
		}
		if taken {
			return Conflict("username already taken")
		}
		if _, err := users.GetUserByEmail(ctx, req.Email); err == nil {
			return Conflict("email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user := &models.User{
			Username: req.Username,
			Email:    strings.ToLower(req.Email),
			Password: hashed,
		}
		profile, err = createUserWithProfile(ctx, tx, user, req.DisplayName)
		return err
	})
	if isDuplicate(err) {
		return nil, Conflict("username or email already registered")
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func createUserWithProfile(ctx context.Context, tx *gorm.DB, user *models.User, displayName string) (*models.Profile, error) {
	if err := repositories.NewPostgresUserRepository(tx).CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = user.Username
	}
	profile := &models.Profile{UserID: user.ID, DisplayName: displayName}
	if err := repositories.NewPostgresProfileRepository(tx).CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	profile.User = user
	return profile, nil
}

// Login checks the password and issues a token pair.
func (s *Identity) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	user, err := repositories.NewPostgresUserRepository(s.db).GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if user.Password == "" || !auth.CheckPassword(user.Password, password) {
		return nil, Unauthorized("invalid username or password")
	}
	return s.issue(ctx, user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Identity) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, Unauthorized("refresh token is required")
	}
	claims, err := s.tokens.Parse(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, Unauthorized("invalid refresh token")
	}

	user, err := repositories.NewPostgresUserRepository(s.db).GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized("user no longer exists")
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

// FirebaseLogin verifies an external ID token and signs the matching user
// in. Users are matched by provider uid, then by email; unknown users are
// created with a username derived from their email.
func (s *Identity) FirebaseLogin(ctx context.Context, idToken string) (*auth.TokenPair, error) {
	if s.verifier == nil {
		return nil, InvalidOperation("firebase login is not configured")
	}
	if idToken == "" {
		return nil, Validation("idToken is required")
	}

	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, Unauthorized("invalid firebase id token")
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	uid := token.UID

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewPostgresUserRepository(tx)

		found, err := users.GetUserByFirebaseUID(ctx, uid)
		if err == nil {
			user = found
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if email == "" {
			return Validation("firebase account has no email")
		}

		found, err = users.GetUserByEmail(ctx, email)
		if err == nil {
			found.FirebaseUID = &uid
			user = found
			return users.UpdateUser(ctx, found)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		username, err := s.uniqueUsername(ctx, users, email)
		if err != nil {
			return err
		}
		user = &models.User{
			Username:    username,
			Email:       strings.ToLower(email),
			FirebaseUID: &uid,
		}
		_, err = createUserWithProfile(ctx, tx, user, name)
		return err
	})
	if isDuplicate(err) {
		return nil, Conflict("account already linked")
	}
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

var nonUsernameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

func (s *Identity) uniqueUsername(ctx context.Context, users repositories.UserRepository, email string) (string, error) {
	base := DeriveUsername(email)
	taken, err := users.UsernameExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

// DeriveUsername turns the local part of an email into a valid username of
// at most 21 characters, leaving room for a collision suffix.
func DeriveUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := nonUsernameChars.ReplaceAllString(local, "")
	if len(name) > 21 {
		name = name[:21]
	}
	if len(name) < 3 {
		name = "user" + name
	}
	return strings.ToLower(name)
}

func (s *Identity) issue(ctx context.Context, user *models.User) (*auth.TokenPair, error) {
	profile, err := repositories.NewPostgresProfileRepository(s.db).GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(user, profile.ID)
}
