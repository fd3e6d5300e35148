// Package gud implements the RoutingEngine port over the GUD trade API.
package gud

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
	tracerName = "business/execution/infra/gud"

	estimateEndpoint   = "/v1/route/estimate"
	buildEndpoint      = "/v1/route/build"
	submitEndpoint     = "/v1/route/submit"
	settlementEndpoint = "/v1/route/settlement"

	httpTimeout = 15 * time.Second
)

// Config holds configuration for the GUD trade API client.
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
		RatePerSecond: 5,
	}
}

// Client is the low-level GUD trade API client.
type Client struct {
	client  httpclient.Client
	config  Config
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a GUD trade API client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gud: empty base URL")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}

	tracer := otel.Tracer(tracerName)

	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if cfg.APIKey != "" {
		headers["X-API-Key"] = cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("gud-trade"),
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
		limiter: ratelimit.NewWithBurst(cfg.RatePerSecond, 3),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// routeRequestBody is the wire format of a route request.
type routeRequestBody struct {
	Pair        string `json:"pair"`
	SourceChain string `json:"sourceChain"`
	TargetChain string `json:"targetChain"`
	NotionalUSD string `json:"notionalUsd"`
}

// estimateResponse is the wire format of an estimate.
type estimateResponse struct {
	FeeUSD     string `json:"feeUsd"`
	EtaSeconds int    `json:"etaSeconds"`
}

// buildResponse is the wire format of a built route.
type buildResponse struct {
	RouteID  string `json:"routeId"`
	CallData string `json:"callData"`
}

// submitResponse is the wire format of a submission acknowledgement.
type submitResponse struct {
	Ref string `json:"ref"`
}

// settlementResponse is the wire format of a settlement status.
type settlementResponse struct {
	Status string `json:"status"`
}

// apiError represents an error payload from the trade API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gud API error %s: %s", e.Code, e.Message)
}

// gudErrorHandler parses trade API error responses.
func gudErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
