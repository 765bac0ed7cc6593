// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for storing the authenticated user's role
	UserRoleKey = "userRole"
	// UserCompanyIDKey is the context key for the company the user belongs to, if any
	UserCompanyIDKey = "userCompanyID"
	// FirebaseUIDKey is the context key for storing the Firebase UID
	FirebaseUIDKey = "firebaseUID"
	// LoggerKey is the context key for the request-scoped logger
	LoggerKey = "logger"
)
