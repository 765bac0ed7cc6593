package elasticsearch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"mybench_backend/internal/config"
)

// ESClientWrapper wraps the elasticsearch.Client so Wire can tell it apart.
type ESClientWrapper struct {
	*elasticsearch.Client
}

var _ elastictransport.Logger = (*ZapLogger)(nil)

// ZapLogger is an adapter from zap.Logger to elastictransport.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// LogRoundTrip prints the request-response metrics.
func (l *ZapLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	var statusCode int
	if res != nil {
		statusCode = res.StatusCode
	}
	l.logger.Debug("Elasticsearch RoundTrip",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", statusCode),
		zap.Time("start", start),
		zap.Duration("duration", dur),
		zap.Error(err),
	)
	return nil
}

// RequestBodyEnabled makes the client pass a copy of request body to the logger.
func (l *ZapLogger) RequestBodyEnabled() bool { return false }

// ResponseBodyEnabled makes the client pass a copy of response body to the logger.
func (l *ZapLogger) ResponseBodyEnabled() bool { return false }

// NewClient creates the Elasticsearch client wrapper. The mirror is optional:
// an empty ELASTICSEARCH_URL yields a nil wrapper and no error.
func NewClient(cfg *config.Config, logger *zap.Logger) (*ESClientWrapper, error) {
	if cfg.ElasticsearchURL == "" {
		logger.Info("ELASTICSEARCH_URL not set, candidate index mirror disabled")
		return nil, nil
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.ElasticsearchURL},
		Logger:        &ZapLogger{logger: logger.Named("elasticsearch_client")},
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
		MaxRetries: 5,
	})
	if err != nil {
		logger.Error("Error creating Elasticsearch client", zap.Error(err))
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}

	res, err := esClient.Info()
	if err != nil {
		logger.Error("Error pinging Elasticsearch", zap.Error(err))
		return nil, fmt.Errorf("esClient.Info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("Elasticsearch client initialization error",
			zap.String("status", res.Status()),
			zap.Any("error_details", decodeErrorBody(res.Body)),
		)
		return nil, fmt.Errorf("elasticsearch client initialization error: %s", res.Status())
	}

	logger.Info("Elasticsearch client initialized",
		zap.String("url", cfg.ElasticsearchURL),
		zap.String("es_version", elasticsearch.Version),
	)
	return &ESClientWrapper{Client: esClient}, nil
}

func decodeErrorBody(body io.Reader) map[string]interface{} {
	var e map[string]interface{}
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return map[string]interface{}{"decode_error": err.Error()}
	}
	return e
}
