package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mybench_backend/internal/application"
	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"
	"mybench_backend/internal/company"
	"mybench_backend/internal/config"
	"mybench_backend/internal/credit"
	"mybench_backend/internal/job"
	"mybench_backend/internal/notification"
	"mybench_backend/internal/platform/database/dbtest"
	"mybench_backend/internal/search"
	"mybench_backend/internal/shared"
	"mybench_backend/internal/user"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenStub struct{}

func (tokenStub) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return &firebaseauth.Token{UID: idToken}, nil
}

// fixedUsers resolves every token UID to a pre-registered account.
type fixedUsers map[string]*shared.User

func (u fixedUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	for _, usr := range u {
		if usr.ID == id {
			return usr, nil
		}
	}
	return nil, common.ErrNotFound
}

func (u fixedUsers) GetUserByFirebaseUID(ctx context.Context, uid string) (*shared.User, error) {
	if usr, ok := u[uid]; ok {
		return usr, nil
	}
	return nil, common.ErrNotFound
}

func (u fixedUsers) GetOrCreateUserFromFirebaseClaims(ctx context.Context, tok *firebaseauth.Token) (*shared.User, bool, error) {
	usr, err := u.GetUserByFirebaseUID(ctx, tok.UID)
	return usr, false, err
}

func newTestServer(t *testing.T, users fixedUsers) *Server {
	db := dbtest.New(t,
		&user.User{}, &company.Company{}, &candidate.Candidate{},
		&credit.CreditAccount{}, &credit.CreditTransaction{}, &credit.ContactUnlock{},
		&job.Job{}, &application.Application{}, &notification.Notification{},
	)
	cfg := &config.Config{GinMode: gin.TestMode, ContactUnlockCost: 1, SignupBonusCredits: 5, DefaultJobLifespanDays: 30, SearchMaxResults: 100}
	logger := zap.NewNop()

	candidateRepo := candidate.NewGORMRepository(db)
	jobRepo := job.NewGORMRepository(db)
	creditService := credit.NewService(credit.NewGORMRepository(db), candidateRepo, cfg, logger)
	userService := user.NewService(user.NewGORMRepository(db), creditService, cfg, logger)
	companyService := company.NewService(company.NewGORMRepository(db), userService, logger)
	candidateService := candidate.NewService(candidateRepo, nil, creditService, logger)
	jobService := job.NewService(jobRepo, companyService, cfg, logger)
	notificationService := notification.NewService(notification.NewGORMRepository(db), logger)
	searchService := search.NewService(candidateRepo, jobService, creditService, cfg, logger)
	applicationService := application.NewService(application.NewGORMRepository(db), jobRepo, candidateRepo, creditService, notificationService, logger)

	handlers := Handlers{
		User:         user.NewHandler(userService, logger),
		Company:      company.NewHandler(companyService, logger),
		Candidate:    candidate.NewHandler(candidateService, logger),
		Search:       search.NewHandler(searchService, logger),
		Credit:       credit.NewHandler(creditService, logger),
		Job:          job.NewHandler(jobService, logger),
		Application:  application.NewHandler(applicationService, logger),
		Notification: notification.NewHandler(notificationService, logger),
	}
	return NewServer(cfg, logger, tokenStub{}, users, handlers, nil, nil)
}

func do(t *testing.T, s *Server, method, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	var body map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestServer_Routes(t *testing.T) {
	companyID := uuid.New()
	users := fixedUsers{
		"recruiter": {ID: uuid.New(), Role: common.RoleRecruiter, CompanyID: &companyID, IsActive: true},
		"candidate": {ID: uuid.New(), Role: common.RoleCandidate, IsActive: true},
	}
	s := newTestServer(t, users)

	w, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", body["status"])

	w, _ = do(t, s, http.MethodGet, "/api/v1/jobs", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = do(t, s, http.MethodGet, "/api/v1/search/candidates?q=go+AND+(java", "recruiter")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUERY", body["code"])

	w, _ = do(t, s, http.MethodGet, "/api/v1/search/candidates?q=golang", "recruiter")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/v1/search/candidates?q=golang", "candidate")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = do(t, s, http.MethodGet, "/api/v1/credits/balance", "recruiter")
	assert.Equal(t, http.StatusOK, w.Code)
	data, _ := body["data"].(map[string]interface{})
	assert.EqualValues(t, 0, data["balance"])

	w, body = do(t, s, http.MethodGet, "/api/v1/notifications/unread-count", "candidate")
	assert.Equal(t, http.StatusOK, w.Code)
	data, _ = body["data"].(map[string]interface{})
	assert.EqualValues(t, 0, data["unread"])

	w, _ = do(t, s, http.MethodGet, "/api/v1/applications/mine", "candidate")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/v1/jobs/"+uuid.NewString()+"/applications", "recruiter")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
