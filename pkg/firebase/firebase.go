// Package firebase connects to the Firebase Admin SDK. Only its auth client
// is used: it verifies the ID tokens that /api/v1/auth/firebase-login
// exchanges for locally issued JWTs.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrNoCredentials is returned when no service account file is configured.
var ErrNoCredentials = errors.New("firebase credentials path not provided")

// NewAuthClient loads the service account at credentialsPath and returns
// the auth client used as the identity service's ID token verifier.
func NewAuthClient(ctx context.Context, credentialsPath string) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	logrus.WithField("credentials", filepath.Base(credentialsPath)).Info("Firebase ID token verification enabled")
	return client, nil
}
