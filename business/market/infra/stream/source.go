// Package stream implements a QuoteSource fed by the DEX indexer
// WebSocket firehose. Quotes are cached as they arrive and served from
// memory, so reads never block on the network.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/market/app"
	"github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/logger"
	"github.com/arbizirq/arbizirq/internal/wsconn"
)

// Ensure Source implements QuoteSource.
var _ app.QuoteSource = (*Source)(nil)

// Config holds stream source configuration.
type Config struct {
	URL          string
	Pairs        []domain.Pair
	StaleTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string, pairs []domain.Pair) Config {
	return Config{
		URL:          url,
		Pairs:        pairs,
		StaleTimeout: 30 * time.Second,
	}
}

// cacheKey identifies one cached quote slot.
type cacheKey struct {
	venue string
	chain domain.Chain
	pair  domain.Pair
}

// Source caches streamed quotes keyed by (venue, chain, pair).
type Source struct {
	config Config
	client *wsconn.Client
	logger logger.LoggerInterface

	mu     sync.RWMutex
	quotes map[cacheKey]domain.Quote

	now func() time.Time
}

// New creates a streaming quote source. Connect must be called before
// the source returns data.
func New(cfg Config, log logger.LoggerInterface) (*Source, error) {
	wsCfg := wsconn.DefaultConfig(cfg.URL, "dex-indexer-stream")

	client, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("creating stream client"))
	}

	s := &Source{
		config: cfg,
		client: client,
		logger: log,
		quotes: make(map[cacheKey]domain.Quote),
		now:    time.Now,
	}

	client.OnMessage(s.onMessage)
	client.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			log.Warn(context.Background(), "stream state change",
				"state", string(state), "error", err)
			return
		}
		log.Info(context.Background(), "stream state change", "state", string(state))
	})

	return s, nil
}

// Connect opens the WebSocket and subscribes to the configured pairs.
func (s *Source) Connect(ctx context.Context) error {
	if err := s.client.Connect(ctx); err != nil {
		return apperror.External(apperror.CodeWebSocketConnectionError,
			"connecting to indexer stream", err)
	}

	pairs := make([]string, 0, len(s.config.Pairs))
	for _, p := range s.config.Pairs {
		pairs = append(pairs, p.String())
	}

	sub := map[string]any{
		"op":    "subscribe",
		"pairs": pairs,
	}
	if err := s.client.SendJSON(ctx, sub); err != nil {
		return apperror.External(apperror.CodeWebSocketSendError,
			"subscribing to quote stream", err)
	}

	return nil
}

// Close shuts down the WebSocket.
func (s *Source) Close() error {
	return s.client.Close()
}

// Name identifies this source.
func (s *Source) Name() string {
	return "dex-indexer-stream"
}

// streamEvent is one message on the firehose.
type streamEvent struct {
	Type  string `json:"type"`
	Quote struct {
		Venue        string `json:"venue"`
		Chain        string `json:"chain"`
		Pair         string `json:"pair"`
		Price        string `json:"price"`
		LiquidityUSD string `json:"liquidityUsd"`
		Timestamp    int64  `json:"timestamp"`
	} `json:"quote"`
}

func (s *Source) onMessage(ctx context.Context, msg []byte) {
	var event streamEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		s.logger.Warn(ctx, "dropping malformed stream message", "error", err)
		return
	}
	if event.Type != "quote" {
		return
	}

	price, err := decimal.NewFromString(event.Quote.Price)
	if err != nil {
		s.logger.Warn(ctx, "dropping stream quote with bad price", "price", event.Quote.Price)
		return
	}
	liquidity, err := decimal.NewFromString(event.Quote.LiquidityUSD)
	if err != nil {
		s.logger.Warn(ctx, "dropping stream quote with bad liquidity", "liquidityUsd", event.Quote.LiquidityUSD)
		return
	}
	chain, err := domain.ParseChain(event.Quote.Chain)
	if err != nil {
		return
	}
	pair, err := domain.ParsePair(event.Quote.Pair)
	if err != nil {
		return
	}

	quote := domain.Quote{
		Venue:        event.Quote.Venue,
		Chain:        chain,
		Pair:         pair,
		Price:        price,
		LiquidityUSD: liquidity,
		ObservedAt:   time.UnixMilli(event.Quote.Timestamp),
	}
	if err := quote.Validate(); err != nil {
		return
	}

	key := cacheKey{venue: quote.Venue, chain: quote.Chain, pair: quote.Pair}
	s.mu.Lock()
	s.quotes[key] = quote
	s.mu.Unlock()
}

// GetQuotes serves the cached quotes for pair on chain, dropping
// entries older than the stale timeout.
func (s *Source) GetQuotes(_ context.Context, pair domain.Pair, chain domain.Chain) ([]domain.Quote, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var quotes []domain.Quote
	for key, q := range s.quotes {
		if key.chain != chain || key.pair != pair {
			continue
		}
		if s.config.StaleTimeout > 0 && !q.IsFresh(now, s.config.StaleTimeout) {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
