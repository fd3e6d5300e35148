// Package indexer implements a QuoteSource over the DEX indexer REST API.
package indexer

import (
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbizirq/arbizirq/internal/httpclient"
	"github.com/arbizirq/arbizirq/internal/logger"
	"github.com/arbizirq/arbizirq/internal/ratelimit"
)

const (
	tracerName = "business/market/infra/indexer"

	quotesEndpoint = "/v1/quotes"

	httpTimeout = 10 * time.Second
)

// Config holds configuration for the indexer client.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       httpTimeout,
		RatePerSecond: 10,
	}
}

// Client is the low-level indexer REST client.
type Client struct {
	client  httpclient.Client
	config  Config
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates an indexer REST client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("indexer: empty base URL")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}

	tracer := otel.Tracer(tracerName)

	headers := map[string]string{
		"Accept": "application/json",
	}
	if cfg.APIKey != "" {
		headers["X-API-Key"] = cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("dex-indexer"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client:  client,
		config:  cfg,
		limiter: ratelimit.NewWithBurst(cfg.RatePerSecond, 5),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// quoteResponse is the wire format of a single indexer quote.
type quoteResponse struct {
	Venue        string `json:"venue"`
	Chain        string `json:"chain"`
	Pair         string `json:"pair"`
	Price        string `json:"price"`
	LiquidityUSD string `json:"liquidityUsd"`
	Timestamp    int64  `json:"timestamp"` // unix milliseconds
}

// quotesResponse is the envelope of the quotes endpoint.
type quotesResponse struct {
	Quotes []quoteResponse `json:"quotes"`
}

// apiError represents an error payload from the indexer.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("indexer API error %s: %s", e.Code, e.Message)
}

// indexerErrorHandler parses indexer error responses.
func indexerErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
