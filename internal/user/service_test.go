package user

import (
	"context"
	"errors"
	"testing"

	"mybench_backend/internal/common"
	"mybench_backend/internal/config"
	"mybench_backend/internal/platform/database/dbtest"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCredits struct{ mock.Mock }

func (m *mockCredits) EnsureAccount(ctx context.Context, userID uuid.UUID, bonus int) error {
	return m.Called(ctx, userID, bonus).Error(0)
}

func newTestService(t *testing.T, credits CreditProvisioner) (*ServiceImplementation, Repository) {
	db := dbtest.New(t, &User{})
	repo := NewGORMRepository(db)
	cfg := &config.Config{SignupBonusCredits: 5, SuperAdminEmails: []string{"root@mybench.io"}}
	return NewService(repo, credits, cfg, zap.NewNop()), repo
}

func token(uid, email, role string) *firebaseauth.Token {
	claims := map[string]interface{}{"name": "Ada Lovelace", "picture": "https://img.example.com/a.png"}
	if email != "" {
		claims["email"] = email
	}
	if role != "" {
		claims["role"] = role
	}
	return &firebaseauth.Token{UID: uid, Claims: claims}
}

func TestGetOrCreate_NewCandidateDefaults(t *testing.T) {
	credits := &mockCredits{}
	svc, _ := newTestService(t, credits)

	usr, created, err := svc.GetOrCreateUserFromFirebaseClaims(context.Background(), token("uid-1", "Ada@Example.com", ""))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, common.RoleCandidate, usr.Role)
	assert.Equal(t, "ada@example.com", usr.Email)
	assert.True(t, usr.IsActive)
	require.NotNil(t, usr.FirstName)
	assert.Equal(t, "Ada", *usr.FirstName)
	require.NotNil(t, usr.LastName)
	assert.Equal(t, "Lovelace", *usr.LastName)
	credits.AssertNotCalled(t, "EnsureAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrCreate_RecruiterGetsCreditAccount(t *testing.T) {
	credits := &mockCredits{}
	credits.On("EnsureAccount", mock.Anything, mock.AnythingOfType("uuid.UUID"), 5).Return(nil).Once()
	svc, _ := newTestService(t, credits)

	usr, created, err := svc.GetOrCreateUserFromFirebaseClaims(context.Background(), token("uid-2", "rec@agency.io", "recruiter"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, common.RoleRecruiter, usr.Role)
	credits.AssertExpectations(t)
}

func TestGetOrCreate_RoleClaimCannotGrantSuperAdmin(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})

	usr, _, err := svc.GetOrCreateUserFromFirebaseClaims(context.Background(), token("uid-3", "x@y.io", "super_admin"))
	require.NoError(t, err)
	assert.Equal(t, common.RoleCandidate, usr.Role)

	root, _, err := svc.GetOrCreateUserFromFirebaseClaims(context.Background(), token("uid-4", "ROOT@mybench.io", ""))
	require.NoError(t, err)
	assert.Equal(t, common.RoleSuperAdmin, root.Role)
}

func TestGetOrCreate_ExistingUserRefreshed(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})
	ctx := context.Background()

	first, created, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-5", "a@b.io", ""))
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-5", "a@b.io", "recruiter"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, common.RoleCandidate, again.Role, "role claim only applies on creation")
	assert.NotNil(t, again.LastLoginAt)
}

func TestGetOrCreate_RetriesCreditAccountAfterFailure(t *testing.T) {
	credits := &mockCredits{}
	credits.On("EnsureAccount", mock.Anything, mock.Anything, 5).Return(errors.New("db blip")).Once()
	credits.On("EnsureAccount", mock.Anything, mock.Anything, 5).Return(nil).Once()
	svc, repo := newTestService(t, credits)
	ctx := context.Background()

	_, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-r", "rec@agency.io", "recruiter"))
	require.Error(t, err)

	stored, err := repo.FindByFirebaseUID(ctx, "uid-r")
	require.NoError(t, err)

	usr, created, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-r", "rec@agency.io", "recruiter"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, usr.ID)
	credits.AssertNumberOfCalls(t, "EnsureAccount", 2)
	credits.AssertCalled(t, "EnsureAccount", mock.Anything, stored.ID, 5)
}

func TestGetOrCreate_EmailChangeKeepsTakenAddress(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})
	ctx := context.Background()

	_, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-a", "a@x.io", ""))
	require.NoError(t, err)
	b, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-b", "b@x.io", ""))
	require.NoError(t, err)

	again, created, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-b", "A@x.io", ""))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, b.ID, again.ID)
	assert.Equal(t, "b@x.io", again.Email)

	moved, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-b", "new@x.io", ""))
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", moved.Email)
}

func TestGetOrCreate_DuplicateEmailConflict(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})
	ctx := context.Background()

	_, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-6", "dup@b.io", ""))
	require.NoError(t, err)

	_, _, err = svc.GetOrCreateUserFromFirebaseClaims(ctx, token("uid-7", "DUP@b.io", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestGetOrCreate_UsersWithoutEmail(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})
	ctx := context.Background()

	a, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("phone-1", "", ""))
	require.NoError(t, err)
	b, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("phone-2", "", ""))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.Email)
}

func TestUpdateRole(t *testing.T) {
	credits := &mockCredits{}
	credits.On("EnsureAccount", mock.Anything, mock.Anything, 5).Return(nil)
	svc, _ := newTestService(t, credits)
	ctx := context.Background()

	admin, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("root", "root@mybench.io", ""))
	require.NoError(t, err)
	target, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("cand", "c@b.io", ""))
	require.NoError(t, err)

	actor := common.Viewer{UserID: admin.ID, Role: admin.Role}
	updated, err := svc.UpdateRole(ctx, actor, target.ID, common.RoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, common.RoleRecruiter, updated.Role)
	credits.AssertCalled(t, "EnsureAccount", mock.Anything, target.ID, 5)

	_, err = svc.UpdateRole(ctx, actor, admin.ID, common.RoleCandidate)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.UpdateRole(ctx, actor, target.ID, "wizard")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestSetActiveAndList(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})
	ctx := context.Background()

	admin, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("root", "root@mybench.io", ""))
	require.NoError(t, err)
	target, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("cand", "c@b.io", ""))
	require.NoError(t, err)

	actor := common.Viewer{UserID: admin.ID, Role: admin.Role}
	updated, err := svc.SetActive(ctx, actor, target.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.SetActive(ctx, actor, admin.ID, false)
	assert.ErrorIs(t, err, common.ErrForbidden)

	users, pagination, err := svc.ListUsers(ctx, ListUsersQuery{Role: common.RoleCandidate})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, target.ID, users[0].ID)
	assert.False(t, users[0].IsActive)
	assert.EqualValues(t, 1, pagination.TotalItems)
}

func TestAssignCompany(t *testing.T) {
	svc, _ := newTestService(t, &mockCredits{})
	ctx := context.Background()

	usr, _, err := svc.GetOrCreateUserFromFirebaseClaims(ctx, token("cand", "c@b.io", ""))
	require.NoError(t, err)

	companyID := uuid.New()
	require.NoError(t, svc.AssignCompany(ctx, usr.ID, &companyID))

	members, err := svc.ListByCompany(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, usr.ID, members[0].ID)

	assert.ErrorIs(t, svc.AssignCompany(ctx, uuid.New(), &companyID), common.ErrNotFound)
}
