package search

import (
	"context"
	"errors"
	"testing"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	name string
	out  []candidate.Candidate
	err  error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Fetch(ctx context.Context, _ common.Viewer) ([]candidate.Candidate, error) {
	return s.out, s.err
}

func cand(source candidate.Source, name, email string) candidate.Candidate {
	return candidate.Candidate{
		BaseModel: common.BaseModel{ID: uuid.New()},
		Source:    source,
		FullName:  name,
		Email:     email,
		IsActive:  true,
	}
}

func TestAggregate_DirectWinsAndMarksBench(t *testing.T) {
	viewer := common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}
	bench := cand(candidate.SourceBench, "Bench Jane", "Jane@Example.com ")
	direct := cand(candidate.SourceDirect, "Jane", "jane@example.com")
	other := cand(candidate.SourceBench, "Other", "other@example.com")

	hits, err := Aggregate(context.Background(), viewer,
		staticSource{name: "bench", out: []candidate.Candidate{bench, other}},
		staticSource{name: "direct", out: []candidate.Candidate{direct}},
	)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, direct.ID, hits[0].Candidate.ID)
	assert.True(t, hits[0].AlsoOnBench)
	assert.Equal(t, other.ID, hits[1].Candidate.ID)
	assert.False(t, hits[1].AlsoOnBench)
}

func TestAggregate_NoEmailNeverMerged(t *testing.T) {
	viewer := common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}
	a := cand(candidate.SourceBench, "A", "")
	b := cand(candidate.SourceDirect, "B", "  ")

	hits, err := Aggregate(context.Background(), viewer,
		staticSource{name: "bench", out: []candidate.Candidate{a}},
		staticSource{name: "direct", out: []candidate.Candidate{b}},
	)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestAggregate_OwnBenchPreferredOverOthers(t *testing.T) {
	viewer := common.Viewer{UserID: uuid.New(), Role: common.RoleRecruiter}
	theirs := cand(candidate.SourceBench, "Theirs", "pat@example.com")
	mine := cand(candidate.SourceBench, "Mine", "pat@example.com")
	mine.OwnerRecruiterID = &viewer.UserID

	hits, err := Aggregate(context.Background(), viewer,
		staticSource{name: "bench", out: []candidate.Candidate{theirs, mine}},
	)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, mine.ID, hits[0].Candidate.ID)
	assert.False(t, hits[0].AlsoOnBench)
}

func TestAggregate_SourceFailureFailsSearch(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Aggregate(context.Background(), common.Viewer{},
		staticSource{name: "bench", out: []candidate.Candidate{cand(candidate.SourceBench, "A", "a@x.io")}},
		staticSource{name: "direct", err: boom},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "direct")
}
