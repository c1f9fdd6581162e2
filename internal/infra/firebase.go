// README: Firebase Admin SDK token verifier guarding the admin catalog endpoints.
package infra

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrAuthDisabled is returned by the verifier used when no Firebase project is configured.
var ErrAuthDisabled = errors.New("admin authentication is not configured")

// FirebaseToken holds the verified caller identity.
type FirebaseToken struct {
	UID    string
	Claims map[string]interface{}
}

// Role returns the custom "role" claim, or "" when absent.
func (t *FirebaseToken) Role() string {
	if t == nil {
		return ""
	}
	role, _ := t.Claims["role"].(string)
	return role
}

// TokenVerifier verifies a raw Firebase ID token string.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier creates a TokenVerifier backed by the Firebase Admin SDK.
// An empty credentialsFile falls back to application-default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	if projectID == "" {
		return disabledVerifier{}, nil
	}
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &FirebaseToken{UID: token.UID, Claims: token.Claims}, nil
}

// DisabledVerifier returns the verifier used when no Firebase project is configured.
func DisabledVerifier() TokenVerifier {
	return disabledVerifier{}
}

// disabledVerifier rejects every token so admin routes stay closed without Firebase.
type disabledVerifier struct{}

func (disabledVerifier) VerifyIDToken(context.Context, string) (*FirebaseToken, error) {
	return nil, ErrAuthDisabled
}
