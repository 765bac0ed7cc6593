package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mybench_backend/internal/common"
	"mybench_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	args := m.Called(ctx, idToken)
	if tok, ok := args.Get(0).(*firebaseauth.Token); ok {
		return tok, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*shared.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) GetUserByFirebaseUID(ctx context.Context, uid string) (*shared.User, error) {
	args := m.Called(ctx, uid)
	if u, ok := args.Get(0).(*shared.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) GetOrCreateUserFromFirebaseClaims(ctx context.Context, tok *firebaseauth.Token) (*shared.User, bool, error) {
	args := m.Called(ctx, tok)
	if u, ok := args.Get(0).(*shared.User); ok {
		return u, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func newAuthRouter(v shared.TokenVerifier, s shared.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(v, s, zap.NewNop())}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuthMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		viewer := common.ViewerFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": viewer.UserID.String(), "role": viewer.Role, "in_company": viewer.CompanyID != nil})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	r := newAuthRouter(&mockVerifier{}, &mockUserService{})

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer ").Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	v := &mockVerifier{}
	v.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("expired"))
	r := newAuthRouter(v, &mockUserService{})

	w := doRequest(r, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	v.AssertExpectations(t)
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	tok := &firebaseauth.Token{UID: "uid-1"}
	companyID := uuid.New()
	usr := &shared.User{ID: uuid.New(), FirebaseUID: "uid-1", Email: "r@acme.io", Role: common.RoleRecruiter, CompanyID: &companyID, IsActive: true}

	v := &mockVerifier{}
	v.On("VerifyIDToken", mock.Anything, "good").Return(tok, nil)
	s := &mockUserService{}
	s.On("GetOrCreateUserFromFirebaseClaims", mock.Anything, tok).Return(usr, false, nil)

	w := doRequest(newAuthRouter(v, s), "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), usr.ID.String())
	assert.Contains(t, w.Body.String(), `"in_company":true`)
}

func TestAuthMiddleware_InactiveUserForbidden(t *testing.T) {
	tok := &firebaseauth.Token{UID: "uid-2"}
	v := &mockVerifier{}
	v.On("VerifyIDToken", mock.Anything, "good").Return(tok, nil)
	s := &mockUserService{}
	s.On("GetOrCreateUserFromFirebaseClaims", mock.Anything, tok).
		Return(&shared.User{ID: uuid.New(), Role: common.RoleCandidate, IsActive: false}, false, nil)

	assert.Equal(t, http.StatusForbidden, doRequest(newAuthRouter(v, s), "Bearer good").Code)
}

func TestAuthMiddleware_ProvisioningConflict(t *testing.T) {
	tok := &firebaseauth.Token{UID: "uid-3"}
	v := &mockVerifier{}
	v.On("VerifyIDToken", mock.Anything, "good").Return(tok, nil)
	s := &mockUserService{}
	s.On("GetOrCreateUserFromFirebaseClaims", mock.Anything, tok).
		Return(nil, false, common.ErrConflict.WithDetails("email taken"))

	assert.Equal(t, http.StatusConflict, doRequest(newAuthRouter(v, s), "Bearer good").Code)
}

func TestRoleAuthMiddleware(t *testing.T) {
	tok := &firebaseauth.Token{UID: "uid-4"}
	v := &mockVerifier{}
	v.On("VerifyIDToken", mock.Anything, "good").Return(tok, nil)
	s := &mockUserService{}
	s.On("GetOrCreateUserFromFirebaseClaims", mock.Anything, tok).
		Return(&shared.User{ID: uuid.New(), Role: common.RoleCandidate, IsActive: true}, false, nil)

	assert.Equal(t, http.StatusForbidden, doRequest(newAuthRouter(v, s, common.RoleRecruiter, common.RoleSuperAdmin), "Bearer good").Code)
	assert.Equal(t, http.StatusOK, doRequest(newAuthRouter(v, s, common.RoleCandidate), "Bearer good").Code)
}
