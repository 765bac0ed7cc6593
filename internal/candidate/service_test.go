package candidate

import (
	"context"
	"errors"
	"testing"

	"mybench_backend/internal/common"
	"mybench_backend/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) IndexCandidate(ctx context.Context, c *Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockIndexer) RemoveCandidate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type stubAccess struct {
	visible bool
	err     error
}

func (s stubAccess) CanViewContact(ctx context.Context, viewer common.Viewer, c *Candidate) (bool, error) {
	return s.visible, s.err
}

func newTestService(t *testing.T, idx Indexer, access ContactAccess) (*ServiceImplementation, Repository) {
	repo := NewGORMRepository(dbtest.New(t, &Candidate{}))
	return NewService(repo, idx, access, zap.NewNop()), repo
}

func recruiter() common.Viewer {
	return common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}
}

func benchReq(name, email string) BenchCandidateRequest {
	return BenchCandidateRequest{
		ProfileRequest: ProfileRequest{
			FullName:        name,
			Skills:          []string{"Go", "go", " SQL "},
			ExperienceYears: 5,
			Availability:    AvailabilityImmediate,
			Summary:         `<script>alert(1)</script><b>Backend</b> engineer & mentor`,
		},
		Email: email,
	}
}

func TestCreateBench_NormalisesAndIndexes(t *testing.T) {
	idx := &mockIndexer{}
	idx.On("IndexCandidate", mock.Anything, mock.AnythingOfType("*candidate.Candidate")).Return(errors.New("es down")).Once()
	svc, repo := newTestService(t, idx, nil)
	ctx := context.Background()
	owner := recruiter()

	c, err := svc.CreateBench(ctx, owner, benchReq("Jane Roe", "Jane@Corp.io"))
	require.NoError(t, err, "index failures must not fail the save")
	assert.Equal(t, "jane@corp.io", c.Email)
	assert.Equal(t, []string{"Go", "SQL"}, []string(c.Skills))
	assert.Equal(t, "Backend engineer & mentor", c.Summary)
	assert.True(t, c.IsActive)

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, []string(stored.Skills))
	idx.AssertExpectations(t)
}

func TestCreateBench_DuplicateEmailPerOwner(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	owner := recruiter()

	_, err := svc.CreateBench(ctx, owner, benchReq("Jane", "jane@corp.io"))
	require.NoError(t, err)

	_, err = svc.CreateBench(ctx, owner, benchReq("Jane Again", " JANE@corp.io"))
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.CreateBench(ctx, recruiter(), benchReq("Jane", "jane@corp.io"))
	assert.NoError(t, err, "another recruiter may bench the same person")
}

func TestCreateBench_RoleCheck(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.CreateBench(context.Background(), common.Viewer{UserID: uuid.New(), Role: common.RoleCandidate}, benchReq("X", "x@y.io"))
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpdateAndDeleteBench_OwnerOnly(t *testing.T) {
	idx := &mockIndexer{}
	idx.On("IndexCandidate", mock.Anything, mock.Anything).Return(nil)
	idx.On("RemoveCandidate", mock.Anything, mock.Anything).Return(nil)
	svc, _ := newTestService(t, idx, nil)
	ctx := context.Background()
	owner := recruiter()

	c, err := svc.CreateBench(ctx, owner, benchReq("Jane", "jane@corp.io"))
	require.NoError(t, err)

	_, err = svc.UpdateBench(ctx, recruiter(), c.ID, benchReq("Hacked", "jane@corp.io"))
	assert.ErrorIs(t, err, common.ErrForbidden)

	req := benchReq("Jane Updated", "jane@corp.io")
	req.IsPrivate = true
	updated, err := svc.UpdateBench(ctx, owner, c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Jane Updated", updated.FullName)
	assert.True(t, updated.IsPrivate)

	assert.ErrorIs(t, svc.DeleteBench(ctx, recruiter(), c.ID), common.ErrForbidden)
	require.NoError(t, svc.DeleteBench(ctx, owner, c.ID))
	idx.AssertCalled(t, "RemoveCandidate", mock.Anything, c.ID)

	_, err = svc.GetCandidate(ctx, owner, c.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsertMyProfile(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	me := common.Viewer{UserID: uuid.New(), Role: common.RoleCandidate, Email: "Me@Mail.io"}

	req := UpsertProfileRequest{ProfileRequest: ProfileRequest{FullName: "Me", Availability: AvailabilityTwoWeeks, ExperienceYears: 3}}
	created, err := svc.UpsertMyProfile(ctx, me, req)
	require.NoError(t, err)
	assert.Equal(t, SourceDirect, created.Source)
	assert.Equal(t, "me@mail.io", created.Email)

	inactive := false
	req.ExperienceYears = 4
	req.IsActive = &inactive
	updated, err := svc.UpsertMyProfile(ctx, me, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 4, updated.ExperienceYears)
	assert.False(t, updated.IsActive)

	got, err := svc.GetMyProfile(ctx, me)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.UpsertMyProfile(ctx, recruiter(), req)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestGetCandidate_VisibilityAndContact(t *testing.T) {
	svc, _ := newTestService(t, nil, stubAccess{visible: false})
	ctx := context.Background()
	owner := recruiter()

	req := benchReq("Private Pat", "pat@x.io")
	req.IsPrivate = true
	c, err := svc.CreateBench(ctx, owner, req)
	require.NoError(t, err)

	_, err = svc.GetCandidate(ctx, recruiter(), c.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	view, err := svc.GetCandidate(ctx, owner, c.ID)
	require.NoError(t, err)
	assert.False(t, view.ContactVisible, "decision is delegated to contact access")

	svcErr, _ := newTestService(t, nil, stubAccess{err: errors.New("db")})
	c2, err := svcErr.CreateBench(ctx, owner, benchReq("Public", "p@x.io"))
	require.NoError(t, err)
	_, err = svcErr.GetCandidate(ctx, owner, c2.ID)
	assert.Error(t, err)
}

func TestListBenchScope(t *testing.T) {
	svc, repo := newTestService(t, nil, nil)
	ctx := context.Background()
	company := uuid.New()
	owner := recruiter()
	owner.CompanyID = &company

	private := benchReq("Private", "a@x.io")
	private.IsPrivate = true
	_, err := svc.CreateBench(ctx, owner, private)
	require.NoError(t, err)
	_, err = svc.CreateBench(ctx, owner, benchReq("Public", "b@x.io"))
	require.NoError(t, err)

	outsider, err := repo.ListBench(ctx, BenchScope{ViewerID: uuid.New()}, 100)
	require.NoError(t, err)
	assert.Len(t, outsider, 1)

	colleague, err := repo.ListBench(ctx, BenchScope{ViewerID: uuid.New(), CompanyID: &company}, 100)
	require.NoError(t, err)
	assert.Len(t, colleague, 2)

	all, err := repo.ListBench(ctx, BenchScope{All: true}, 100)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	list, pagination, err := svc.ListMyBench(ctx, owner, 1, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 2, pagination.TotalItems)
}
