package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/config"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"
)

var tracer = otel.Tracer("codeberg.org/algrv/authgate/internal/identity")

// process-wide Firebase Admin client, created once by Init
var (
	initOnce sync.Once
	shared   *Firebase
	initErr  error
)

// verifies Firebase ID tokens with the Admin SDK
type Firebase struct {
	client *fbauth.Client
}

// initializes the shared Firebase client on first call; later calls return
// the same instance (or the same error) without touching the SDK again
func Init(ctx context.Context, cfg config.FirebaseConfig) (*Firebase, error) {
	initOnce.Do(func() {
		shared, initErr = newFirebase(ctx, cfg)
	})

	return shared, initErr
}

func newFirebase(ctx context.Context, cfg config.FirebaseConfig) (*Firebase, error) {
	credentials, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}

	return &Firebase{client: client}, nil
}

// service-account credentials from a file, or assembled from discrete env values
func credentialsOption(cfg config.FirebaseConfig) (option.ClientOption, error) {
	if cfg.CredentialsFile != "" {
		return option.WithCredentialsFile(cfg.CredentialsFile), nil
	}

	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  cfg.PrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})

	if err != nil {
		return nil, fmt.Errorf("failed to encode firebase credentials: %w", err)
	}

	return option.WithCredentialsJSON(raw), nil
}

// checks signature, audience, issuer and expiry against Firebase's keys
func (f *Firebase) VerifyIDToken(ctx context.Context, token string) (*Verification, error) {
	ctx, span := tracer.Start(ctx, "identity.firebase.VerifyIDToken")
	defer span.End()

	if token == "" {
		span.SetStatus(codes.Error, "empty token")
		return nil, ErrInvalidToken
	}

	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verification failed")

		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	span.SetAttributes(attribute.String("identity.uid", decoded.UID))

	return &Verification{
		Identity:  identityFromToken(decoded),
		ExpiresAt: time.Unix(decoded.Expires, 0),
	}, nil
}

func identityFromToken(tok *fbauth.Token) users.ExternalIdentity {
	return users.ExternalIdentity{
		UID:           tok.UID,
		Email:         stringClaim(tok.Claims, "email"),
		EmailVerified: tok.Claims["email_verified"] == true,
		Name:          stringClaim(tok.Claims, "name"),
		PhotoURL:      stringClaim(tok.Claims, "picture"),
	}
}

func stringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}

	return ""
}
