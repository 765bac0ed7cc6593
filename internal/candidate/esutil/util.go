package esutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CandidateToElasticsearchDoc converts a candidate to its Elasticsearch document.
// Contact fields are never indexed.
func CandidateToElasticsearchDoc(c *candidate.Candidate) ([]byte, error) {
	if c == nil {
		return nil, errors.New("candidate cannot be nil")
	}

	skills := []string(c.Skills)
	if skills == nil {
		skills = []string{}
	}
	doc := map[string]interface{}{
		"name":             c.FullName,
		"title":            c.Title,
		"summary":          c.Summary,
		"skills":           skills,
		"location":         c.Location,
		"experience_years": c.ExperienceYears,
		"availability":     c.Availability,
		"source":           string(c.Source),
		"is_private":       c.IsPrivate,
		"is_active":        c.IsActive,
		"created_at":       c.CreatedAt,
		"updated_at":       c.UpdatedAt,
	}
	if c.OwnerRecruiterID != nil {
		doc["owner_id"] = c.OwnerRecruiterID.String()
	}
	if c.OwnerCompanyID != nil {
		doc["company_id"] = c.OwnerCompanyID.String()
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error marshalling candidate to JSON for ES: %w", err)
	}
	return b, nil
}

// CandidateIndexer adapts the platform indexer to candidate.Indexer.
type CandidateIndexer struct {
	idx *elasticsearch.Indexer
}

// NewCandidateIndexer returns nil when the mirror is disabled so the candidate
// service sees a nil interface rather than a typed nil.
func NewCandidateIndexer(idx *elasticsearch.Indexer) candidate.Indexer {
	if idx == nil {
		return nil
	}
	return &CandidateIndexer{idx: idx}
}

func (ci *CandidateIndexer) IndexCandidate(ctx context.Context, c *candidate.Candidate) error {
	doc, err := CandidateToElasticsearchDoc(c)
	if err != nil {
		return err
	}
	return ci.idx.IndexDocument(ctx, c.ID.String(), doc)
}

func (ci *CandidateIndexer) RemoveCandidate(ctx context.Context, id uuid.UUID) error {
	return ci.idx.DeleteDocument(ctx, id.String())
}

// SyncResult summarises a full re-index run.
type SyncResult struct {
	Scanned int
	Indexed int
	Failed  int
}

// SyncAll pages through every candidate and bulk-indexes each page.
func SyncAll(ctx context.Context, repo candidate.Repository, idx *elasticsearch.Indexer, batchSize int, logger *zap.Logger) (SyncResult, error) {
	var res SyncResult
	if idx == nil {
		return res, errors.New("elasticsearch is not configured")
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		return res, err
	}

	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		batch, err := repo.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return res, fmt.Errorf("load candidates at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		docs := make([]elasticsearch.BulkDocument, 0, len(batch))
		for i := range batch {
			body, err := CandidateToElasticsearchDoc(&batch[i])
			if err != nil {
				res.Failed++
				logger.Warn("Skipping candidate that could not be converted", zap.String("candidateID", batch[i].ID.String()), zap.Error(err))
				continue
			}
			docs = append(docs, elasticsearch.BulkDocument{ID: batch[i].ID.String(), Body: body})
		}
		res.Scanned += len(batch)

		indexed, failed, err := idx.BulkIndex(ctx, docs)
		if err != nil {
			return res, err
		}
		res.Indexed += indexed
		res.Failed += failed
		logger.Info("Indexed candidate batch",
			zap.Int("offset", offset),
			zap.Int("indexed", indexed),
			zap.Int("failed", failed),
		)

		if len(batch) < batchSize {
			break
		}
	}
	return res, nil
}
