package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"mybench_backend/internal/config"
	"mybench_backend/internal/shared"
)

// FirebaseService verifies Firebase ID tokens for the auth middleware.
type FirebaseService struct {
	authClient *auth.Client
	logger     *zap.Logger
}

var _ shared.TokenVerifier = (*FirebaseService)(nil)

// NewFirebaseService initializes the Firebase Admin SDK from the service account key in config.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseService{authClient: authClient, logger: logger.Named("firebase")}, nil
}

// VerifyIDToken verifies a Firebase ID token and returns the token claims.
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	s.logger.Debug("Firebase ID token verified", zap.String("uid", token.UID))
	return token, nil
}
