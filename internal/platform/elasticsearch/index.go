package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

const CandidatesIndexName = "candidates"

func candidatesMapping() (string, error) {
	keywordSubfield := map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"name":             map[string]interface{}{"type": "text", "fields": keywordSubfield},
				"title":            map[string]interface{}{"type": "text"},
				"summary":          map[string]interface{}{"type": "text"},
				"skills":           map[string]interface{}{"type": "keyword"},
				"location":         map[string]interface{}{"type": "keyword"},
				"experience_years": map[string]interface{}{"type": "integer"},
				"availability":     map[string]interface{}{"type": "keyword"},
				"source":           map[string]interface{}{"type": "keyword"},
				"owner_id":         map[string]interface{}{"type": "keyword"},
				"company_id":       map[string]interface{}{"type": "keyword"},
				"is_private":       map[string]interface{}{"type": "boolean"},
				"created_at":       map[string]interface{}{"type": "date"},
				"updated_at":       map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling candidates mapping to JSON: %w", err)
	}
	return string(b), nil
}

// Indexer writes candidate documents into the mirror index.
type Indexer struct {
	client  *ESClientWrapper
	index   string
	refresh string
	logger  *zap.Logger
}

// NewIndexer returns nil when the client is nil so callers can treat the mirror as disabled.
func NewIndexer(client *ESClientWrapper, logger *zap.Logger) *Indexer {
	if client == nil {
		return nil
	}
	return &Indexer{client: client, index: CandidatesIndexName, refresh: "false", logger: logger.Named("es_indexer")}
}

// SetBulkRefresh sets the refresh policy (true, false, wait_for) used by BulkIndex.
func (i *Indexer) SetBulkRefresh(policy string) {
	if policy != "" {
		i.refresh = policy
	}
}

// EnsureIndex creates the candidates index with its mapping if it does not already exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("error checking if %s index exists: %w", i.index, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		i.logger.Debug("Index already exists", zap.String("index_name", i.index))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking if %s index exists: status %s", i.index, res.Status())
	}

	mapping, err := candidatesMapping()
	if err != nil {
		return err
	}
	createRes, err := esapi.IndicesCreateRequest{Index: i.index, Body: strings.NewReader(mapping)}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("error creating %s index: %w", i.index, err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		i.logger.Error("Failed to create index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", decodeErrorBody(createRes.Body)),
			zap.String("index_name", i.index),
		)
		return fmt.Errorf("failed to create %s index: status %s", i.index, createRes.Status())
	}

	i.logger.Info("Index created", zap.String("index_name", i.index))
	return nil
}

// IndexDocument upserts a single document.
func (i *Indexer) IndexDocument(ctx context.Context, id string, doc []byte) error {
	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: id,
		Body:       bytes.NewReader(doc),
		Refresh:    "false",
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("index document %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index document %s: status %s", id, res.Status())
	}
	return nil
}

// DeleteDocument removes a document. A missing document is not an error.
func (i *Indexer) DeleteDocument(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: i.index, DocumentID: id}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete document %s: status %s", id, res.Status())
	}
	return nil
}

// BulkDocument is one entry of a bulk index run.
type BulkDocument struct {
	ID   string
	Body []byte
}

// BulkIndex streams documents through the esutil bulk indexer and returns
// how many were indexed and how many failed.
func (i *Indexer) BulkIndex(ctx context.Context, docs []BulkDocument) (int, int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:   i.index,
		Client:  i.client.Client,
		Refresh: i.refresh,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create bulk indexer: %w", err)
	}

	for _, d := range docs {
		doc := d
		err := bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(doc.Body),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				fields := []zap.Field{zap.String("document_id", item.DocumentID)}
				if err != nil {
					fields = append(fields, zap.Error(err))
				} else {
					fields = append(fields, zap.String("type", res.Error.Type), zap.String("reason", res.Error.Reason))
				}
				i.logger.Warn("Bulk index item failed", fields...)
			},
		})
		if err != nil {
			return 0, 0, fmt.Errorf("add document %s to bulk indexer: %w", doc.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, 0, fmt.Errorf("close bulk indexer: %w", err)
	}
	stats := bi.Stats()
	return int(stats.NumIndexed), int(stats.NumFailed), nil
}
