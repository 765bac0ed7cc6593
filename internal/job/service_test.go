package job

import (
	"context"
	"testing"
	"time"

	"mybench_backend/internal/common"
	"mybench_backend/internal/company"
	"mybench_backend/internal/config"
	"mybench_backend/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGate struct{ err error }

func (g stubGate) EnsureCanPost(ctx context.Context, companyID uuid.UUID) (*company.Company, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &company.Company{Status: company.StatusActive}, nil
}

func newTestService(t *testing.T, gate CompanyGate) *ServiceImplementation {
	repo := NewGORMRepository(dbtest.New(t, &Job{}))
	return NewService(repo, gate, &config.Config{DefaultJobLifespanDays: 30}, zap.NewNop())
}

func member(role string, companyID uuid.UUID) common.Viewer {
	return common.Viewer{UserID: uuid.New(), Role: role, CompanyID: &companyID}
}

func createReq(title string, visibility Visibility) CreateJobRequest {
	return CreateJobRequest{
		Title:          title,
		Description:    "## Role\n\nBuild **APIs**.<script>alert('x')</script>",
		EmploymentType: EmploymentContract,
		RequiredSkills: []string{"Go", "Postgres", "go"},
		MinExperience:  3,
		Visibility:     visibility,
	}
}

func TestCreateJob(t *testing.T) {
	svc := newTestService(t, stubGate{})
	ctx := context.Background()
	companyID := uuid.New()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	j, err := svc.CreateJob(ctx, member(common.RoleRecruiter, companyID), createReq("Backend Engineer", VisibilityBoth))
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, j.Status)
	assert.Equal(t, fixed.AddDate(0, 0, 30), j.ExpiresAt)
	assert.Equal(t, []string{"Go", "Postgres"}, []string(j.RequiredSkills))
	assert.Contains(t, j.DescriptionHTML, "<strong>APIs</strong>")
	assert.Contains(t, j.DescriptionHTML, "<h2")
	assert.NotContains(t, j.DescriptionHTML, "<script>")
}

func TestCreateJob_Rules(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	svc := newTestService(t, stubGate{})
	_, err := svc.CreateJob(ctx, common.Viewer{UserID: uuid.New(), Role: common.RoleCandidate}, createReq("Nope", VisibilityBoth))
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.CreateJob(ctx, common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}, createReq("No company", VisibilityBoth))
	assert.ErrorIs(t, err, common.ErrForbidden)

	req := createReq("Bad rates", VisibilityBoth)
	lo, hi := 90.0, 50.0
	req.RateMin, req.RateMax = &lo, &hi
	_, err = svc.CreateJob(ctx, member(common.RoleRecruiter, companyID), req)
	assert.ErrorIs(t, err, common.ErrBadRequest)

	past := time.Now().Add(-time.Hour)
	req = createReq("Past expiry", VisibilityBoth)
	req.ExpiresAt = &past
	_, err = svc.CreateJob(ctx, member(common.RoleRecruiter, companyID), req)
	assert.ErrorIs(t, err, common.ErrBadRequest)

	suspended := newTestService(t, stubGate{err: common.ErrForbidden.WithDetails("Company is not active.")})
	_, err = suspended.CreateJob(ctx, member(common.RoleCompanyAdmin, companyID), createReq("Suspended", VisibilityBoth))
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestVisibilityRules(t *testing.T) {
	svc := newTestService(t, stubGate{})
	ctx := context.Background()
	companyID := uuid.New()
	poster := member(common.RoleRecruiter, companyID)

	candidatesOnly, err := svc.CreateJob(ctx, poster, createReq("Candidates only", VisibilityCandidates))
	require.NoError(t, err)
	recruitersOnly, err := svc.CreateJob(ctx, poster, createReq("Recruiters only", VisibilityRecruiters))
	require.NoError(t, err)
	_, err = svc.CreateJob(ctx, poster, createReq("Everyone", VisibilityBoth))
	require.NoError(t, err)

	candidate := common.Viewer{UserID: uuid.New(), Role: common.RoleCandidate}
	outsider := member(common.RoleRecruiter, uuid.New())
	admin := common.Viewer{UserID: uuid.New(), Role: common.RoleSuperAdmin}

	_, err = svc.GetJob(ctx, candidate, recruitersOnly.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.GetJob(ctx, outsider, candidatesOnly.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.GetJob(ctx, poster, candidatesOnly.ID)
	assert.NoError(t, err)

	count := func(v common.Viewer, q ListJobsQuery) int64 {
		_, p, err := svc.ListJobs(ctx, v, q)
		require.NoError(t, err)
		return p.TotalItems
	}
	assert.EqualValues(t, 2, count(candidate, ListJobsQuery{}))
	assert.EqualValues(t, 2, count(outsider, ListJobsQuery{}))
	assert.EqualValues(t, 3, count(poster, ListJobsQuery{}))
	assert.EqualValues(t, 3, count(admin, ListJobsQuery{}))
	assert.EqualValues(t, 1, count(admin, ListJobsQuery{Search: "EVERY"}))
}

func TestCloseAndExpire(t *testing.T) {
	svc := newTestService(t, stubGate{})
	ctx := context.Background()
	companyID := uuid.New()
	poster := member(common.RoleCompanyAdmin, companyID)
	candidate := common.Viewer{UserID: uuid.New(), Role: common.RoleCandidate}

	closing, err := svc.CreateJob(ctx, poster, createReq("To close", VisibilityBoth))
	require.NoError(t, err)
	expiring, err := svc.CreateJob(ctx, poster, createReq("To expire", VisibilityBoth))
	require.NoError(t, err)

	_, err = svc.CloseJob(ctx, member(common.RoleRecruiter, uuid.New()), closing.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	closed, err := svc.CloseJob(ctx, poster, closing.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)

	_, err = svc.GetJob(ctx, candidate, closing.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	n, err := svc.ExpireJobs(ctx, expiring.ExpiresAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, p, err := svc.ListJobs(ctx, candidate, ListJobsQuery{})
	require.NoError(t, err)
	assert.Zero(t, p.TotalItems)

	_, p, err = svc.ListJobs(ctx, poster, ListJobsQuery{IncludeClosed: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.TotalItems)

	later := time.Now().Add(48 * time.Hour)
	reopened, err := svc.UpdateJob(ctx, poster, expiring.ID, UpdateJobRequest{ExpiresAt: &later})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, reopened.Status)
}

func TestUpdateJob_RerendersDescription(t *testing.T) {
	svc := newTestService(t, stubGate{})
	ctx := context.Background()
	poster := member(common.RoleRecruiter, uuid.New())

	j, err := svc.CreateJob(ctx, poster, createReq("Original", VisibilityBoth))
	require.NoError(t, err)

	desc := "Use *Go*"
	updated, err := svc.UpdateJob(ctx, poster, j.ID, UpdateJobRequest{Description: &desc, RequiredSkills: []string{"Rust"}})
	require.NoError(t, err)
	assert.Contains(t, updated.DescriptionHTML, "<em>Go</em>")
	assert.Equal(t, []string{"Rust"}, []string(updated.RequiredSkills))
}
