package shared

import (
	"context"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// User is the cross-package view of an account. Packages that must not import
// internal/user (middleware, app) work with this type.
type User struct {
	ID                uuid.UUID
	FirebaseUID       string
	Email             string
	FirstName         *string
	LastName          *string
	ProfilePictureURL *string
	Role              string
	CompanyID         *uuid.UUID
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}

// Service defines the user operations other packages depend on.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
	GetOrCreateUserFromFirebaseClaims(ctx context.Context, firebaseToken *firebaseauth.Token) (usr *User, wasCreated bool, err error)
}

// TokenVerifier checks Firebase ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}
