// File: internal/search/sources.go
package search

import (
	"context"
	"fmt"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"

	"golang.org/x/sync/errgroup"
)

// CandidateStore is the slice of the candidate repository the sources read from.
type CandidateStore interface {
	ListBench(ctx context.Context, scope candidate.BenchScope, limit int) ([]candidate.Candidate, error)
	ListDirect(ctx context.Context, limit int) ([]candidate.Candidate, error)
}

// Source yields the candidates a viewer may search over.
type Source interface {
	Name() string
	Fetch(ctx context.Context, viewer common.Viewer) ([]candidate.Candidate, error)
}

// BenchSource returns active bench candidates visible to the viewer.
type BenchSource struct {
	Store CandidateStore
	Limit int
}

func (BenchSource) Name() string { return string(candidate.SourceBench) }

func (s BenchSource) Fetch(ctx context.Context, viewer common.Viewer) ([]candidate.Candidate, error) {
	scope := candidate.BenchScope{
		ViewerID:  viewer.UserID,
		CompanyID: viewer.CompanyID,
		All:       viewer.IsSuperAdmin(),
	}
	return s.Store.ListBench(ctx, scope, s.Limit)
}

// DirectSource returns active self-registered candidates.
type DirectSource struct {
	Store CandidateStore
	Limit int
}

func (DirectSource) Name() string { return string(candidate.SourceDirect) }

func (s DirectSource) Fetch(ctx context.Context, _ common.Viewer) ([]candidate.Candidate, error) {
	return s.Store.ListDirect(ctx, s.Limit)
}

// Hit is one aggregated candidate.
type Hit struct {
	Candidate candidate.Candidate
	// AlsoOnBench is set on a direct candidate when a bench record with the same email was merged into it.
	AlsoOnBench bool
}

// Aggregate fetches every source concurrently and merges the results. Any source
// failure fails the whole call. Records sharing a normalised email collapse into one:
// a direct record wins over bench records, and among bench records the viewer's own
// wins over the first seen. Records without an email are never merged.
func Aggregate(ctx context.Context, viewer common.Viewer, sources ...Source) ([]Hit, error) {
	results := make([][]candidate.Candidate, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			out, err := src.Fetch(gctx, viewer)
			if err != nil {
				return fmt.Errorf("fetch %s candidates: %w", src.Name(), err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var hits []Hit
	byEmail := make(map[string]int)
	for _, batch := range results {
		for _, c := range batch {
			key := common.NormalizeEmail(c.Email)
			if key == "" {
				hits = append(hits, Hit{Candidate: c})
				continue
			}
			idx, seen := byEmail[key]
			if !seen {
				byEmail[key] = len(hits)
				hits = append(hits, Hit{Candidate: c})
				continue
			}
			merged := &hits[idx]
			if c.Source != merged.Candidate.Source {
				merged.AlsoOnBench = true
			}
			if rank(viewer, &c) > rank(viewer, &merged.Candidate) {
				merged.Candidate = c
			}
		}
	}
	return hits, nil
}

func rank(viewer common.Viewer, c *candidate.Candidate) int {
	switch {
	case c.Source == candidate.SourceDirect:
		return 2
	case c.IsOwnedBy(viewer.UserID):
		return 1
	}
	return 0
}
