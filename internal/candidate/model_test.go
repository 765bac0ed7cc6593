package candidate

import (
	"testing"
	"unicode/utf8"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("john.doe@example.com"))
	assert.Equal(t, "", MaskEmail(""))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	masked := MaskEmail("élise@example.com")
	assert.Equal(t, "é***@example.com", masked)
	assert.True(t, utf8.ValidString(masked))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "***-1234", MaskPhone("+1 (555) 987-1234"))
	assert.Equal(t, "***", MaskPhone("123"))
	assert.Equal(t, "", MaskPhone(""))
}

func TestToCandidateResponse_Redaction(t *testing.T) {
	c := &Candidate{FullName: "Jane", Email: "jane@corp.io", Phone: "555-000-4321"}

	hidden := ToCandidateResponse(c, false)
	assert.Equal(t, "j***@corp.io", hidden.Email)
	assert.Equal(t, "***-4321", hidden.Phone)
	assert.False(t, hidden.ContactUnlocked)
	assert.NotNil(t, hidden.Skills)

	shown := ToCandidateResponse(c, true)
	assert.Equal(t, "jane@corp.io", shown.Email)
	assert.Equal(t, "555-000-4321", shown.Phone)
	assert.True(t, shown.ContactUnlocked)
}

func TestHasSkill(t *testing.T) {
	c := &Candidate{Skills: pq.StringArray{"Go", " Kubernetes "}}
	assert.True(t, c.HasSkill("go"))
	assert.True(t, c.HasSkill("kubernetes"))
	assert.False(t, c.HasSkill("golang"))
}

func TestVisibleTo(t *testing.T) {
	owner := uuid.New()
	company := uuid.New()
	candUser := uuid.New()

	bench := &Candidate{Source: SourceBench, OwnerRecruiterID: &owner, OwnerCompanyID: &company, IsActive: true}
	private := *bench
	private.IsPrivate = true
	direct := &Candidate{Source: SourceDirect, UserID: &candUser, IsActive: true}

	otherRecruiter := common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}
	colleague := common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter, CompanyID: &company}
	ownerViewer := common.Viewer{UserID: owner, Role: common.RoleRecruiter}
	admin := common.Viewer{UserID: uuid.New(), Role: common.RoleSuperAdmin}
	someCandidate := common.Viewer{UserID: uuid.New(), Role: common.RoleCandidate}
	self := common.Viewer{UserID: candUser, Role: common.RoleCandidate}

	assert.True(t, bench.VisibleTo(otherRecruiter))
	assert.False(t, private.VisibleTo(otherRecruiter))
	assert.True(t, private.VisibleTo(colleague))
	assert.True(t, private.VisibleTo(ownerViewer))
	assert.True(t, private.VisibleTo(admin))
	assert.False(t, bench.VisibleTo(someCandidate))

	assert.True(t, direct.VisibleTo(otherRecruiter))
	assert.True(t, direct.VisibleTo(self))
	assert.False(t, direct.VisibleTo(someCandidate))

	inactive := *direct
	inactive.IsActive = false
	assert.False(t, inactive.VisibleTo(otherRecruiter))
	assert.True(t, inactive.VisibleTo(self))
}

func TestSearchTextIncludesSkills(t *testing.T) {
	c := &Candidate{FullName: "Ada", Title: "Engineer", Skills: pq.StringArray{"Rust", "Go"}}
	assert.Contains(t, c.SearchText(), "Rust Go")
	assert.Contains(t, c.SearchText(), "Engineer")
}
