package elasticsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mybench_backend/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
}

func newTestIndexer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Indexer, *[]recordedRequest) {
	var (
		mu   sync.Mutex
		seen []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, recordedRequest{Method: r.Method, Path: r.URL.Path})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndexer(&ESClientWrapper{Client: client}, zap.NewNop()), &seen
}

func TestNewClient_DisabledWithoutURL(t *testing.T) {
	client, err := NewClient(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, NewIndexer(client, zap.NewNop()))
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	idx, seen := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, *seen, 2)
	assert.Equal(t, recordedRequest{Method: http.MethodHead, Path: "/candidates"}, (*seen)[0])
	assert.Equal(t, recordedRequest{Method: http.MethodPut, Path: "/candidates"}, (*seen)[1])
}

func TestEnsureIndex_ExistingIndexIsLeftAlone(t *testing.T) {
	idx, seen := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Len(t, *seen, 1)
}

func TestIndexAndDeleteDocument(t *testing.T) {
	idx, seen := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	require.NoError(t, idx.IndexDocument(context.Background(), "abc", []byte(`{"name":"Ada"}`)))
	require.NoError(t, idx.DeleteDocument(context.Background(), "abc"))
	require.Len(t, *seen, 2)
	assert.Equal(t, "/candidates/_doc/abc", (*seen)[0].Path)
	assert.Equal(t, http.MethodDelete, (*seen)[1].Method)
}

func TestIndexDocument_ErrorStatus(t *testing.T) {
	idx, _ := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})

	err := idx.IndexDocument(context.Background(), "abc", []byte(`{}`))
	assert.Error(t, err)
}
