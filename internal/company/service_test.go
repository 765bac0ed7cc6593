package company

import (
	"context"
	"testing"

	"mybench_backend/internal/common"
	"mybench_backend/internal/platform/database/dbtest"
	"mybench_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMembers struct{ mock.Mock }

func (m *mockMembers) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*shared.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*shared.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) AssignCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error {
	return m.Called(ctx, userID, companyID).Error(0)
}

func (m *mockMembers) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]shared.User, error) {
	args := m.Called(ctx, companyID)
	users, _ := args.Get(0).([]shared.User)
	return users, args.Error(1)
}

func newTestService(t *testing.T) (Service, *mockMembers) {
	members := &mockMembers{}
	repo := NewGORMRepository(dbtest.New(t, &Company{}))
	return NewService(repo, members, zap.NewNop()), members
}

func companyAdmin() common.Viewer {
	return common.Viewer{UserID: uuid.New(), Role: common.RoleCompanyAdmin}
}

func TestCreateCompany_SlugAndMembership(t *testing.T) {
	svc, members := newTestService(t)
	ctx := context.Background()
	members.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	first, err := svc.CreateCompany(ctx, companyAdmin(), CreateCompanyRequest{Name: "Acme Staffing, Inc."})
	require.NoError(t, err)
	assert.Equal(t, "acme-staffing-inc", first.Slug)
	assert.Equal(t, StatusPending, first.Status)

	second, err := svc.CreateCompany(ctx, companyAdmin(), CreateCompanyRequest{Name: "Acme Staffing Inc"})
	require.NoError(t, err)
	assert.Equal(t, "acme-staffing-inc-2", second.Slug)

	members.AssertNumberOfCalls(t, "AssignCompany", 2)
}

func TestCreateCompany_Rules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}, CreateCompanyRequest{Name: "X Corp"})
	assert.ErrorIs(t, err, common.ErrForbidden)

	existing := uuid.New()
	admin := companyAdmin()
	admin.CompanyID = &existing
	_, err = svc.CreateCompany(ctx, admin, CreateCompanyRequest{Name: "X Corp"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestSetStatusAndEnsureCanPost(t *testing.T) {
	svc, members := newTestService(t)
	ctx := context.Background()
	members.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	company, err := svc.CreateCompany(ctx, companyAdmin(), CreateCompanyRequest{Name: "Globex"})
	require.NoError(t, err)

	_, err = svc.EnsureCanPost(ctx, company.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.SetStatus(ctx, company.ID, StatusActive)
	require.NoError(t, err)
	_, err = svc.EnsureCanPost(ctx, company.ID)
	assert.NoError(t, err)

	_, err = svc.SetStatus(ctx, company.ID, StatusSuspended)
	require.NoError(t, err)
	_, err = svc.EnsureCanPost(ctx, company.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestListCompanies_NonAdminSeesActiveOnly(t *testing.T) {
	svc, members := newTestService(t)
	ctx := context.Background()
	members.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	active, err := svc.CreateCompany(ctx, companyAdmin(), CreateCompanyRequest{Name: "Active Co"})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, active.ID, StatusActive)
	require.NoError(t, err)
	_, err = svc.CreateCompany(ctx, companyAdmin(), CreateCompanyRequest{Name: "Pending Co"})
	require.NoError(t, err)

	list, pagination, err := svc.ListCompanies(ctx, common.Viewer{Role: common.RoleRecruiter}, ListCompaniesQuery{Status: StatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
	assert.EqualValues(t, 1, pagination.TotalItems)

	all, _, err := svc.ListCompanies(ctx, common.Viewer{Role: common.RoleSuperAdmin}, ListCompaniesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddMember(t *testing.T) {
	svc, members := newTestService(t)
	ctx := context.Background()
	members.On("AssignCompany", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	admin := companyAdmin()
	company, err := svc.CreateCompany(ctx, admin, CreateCompanyRequest{Name: "Initech"})
	require.NoError(t, err)
	admin.CompanyID = &company.ID

	recruiter := &shared.User{ID: uuid.New(), Email: "r@initech.io", Role: common.RoleRecruiter}
	members.On("GetUserByEmail", mock.Anything, "r@initech.io").Return(recruiter, nil)
	candidateUser := &shared.User{ID: uuid.New(), Email: "c@x.io", Role: common.RoleCandidate}
	members.On("GetUserByEmail", mock.Anything, "c@x.io").Return(candidateUser, nil)
	members.On("GetUserByEmail", mock.Anything, "ghost@x.io").Return(nil, common.ErrNotFound)

	added, err := svc.AddMember(ctx, admin, company.ID, "r@initech.io")
	require.NoError(t, err)
	require.NotNil(t, added.CompanyID)
	assert.Equal(t, company.ID, *added.CompanyID)

	_, err = svc.AddMember(ctx, admin, company.ID, "c@x.io")
	assert.ErrorIs(t, err, common.ErrUnprocessableEntity)

	_, err = svc.AddMember(ctx, admin, company.ID, "ghost@x.io")
	assert.ErrorIs(t, err, common.ErrNotFound)

	outsider := companyAdmin()
	_, err = svc.AddMember(ctx, outsider, company.ID, "r@initech.io")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestRemoveMember(t *testing.T) {
	svc, members := newTestService(t)
	ctx := context.Background()
	companyID := uuid.New()
	admin := companyAdmin()
	admin.CompanyID = &companyID

	member := &shared.User{ID: uuid.New(), Role: common.RoleRecruiter, CompanyID: &companyID}
	stranger := &shared.User{ID: uuid.New(), Role: common.RoleRecruiter}
	members.On("GetUserByID", mock.Anything, member.ID).Return(member, nil)
	members.On("GetUserByID", mock.Anything, stranger.ID).Return(stranger, nil)
	members.On("AssignCompany", mock.Anything, member.ID, (*uuid.UUID)(nil)).Return(nil)

	require.NoError(t, svc.RemoveMember(ctx, admin, companyID, member.ID))
	assert.ErrorIs(t, svc.RemoveMember(ctx, admin, companyID, stranger.ID), common.ErrNotFound)
	assert.ErrorIs(t, svc.RemoveMember(ctx, admin, companyID, admin.UserID), common.ErrUnprocessableEntity)
	members.AssertExpectations(t)
}
