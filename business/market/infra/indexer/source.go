package indexer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbizirq/arbizirq/business/market/app"
	"github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/httpclient"
)

// Ensure Source implements QuoteSource.
var _ app.QuoteSource = (*Source)(nil)

// Source adapts the indexer REST client to the QuoteSource port.
type Source struct {
	client *Client
}

// NewSource creates a quote source backed by the indexer.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Name identifies this source.
func (s *Source) Name() string {
	return "dex-indexer"
}

// GetQuotes fetches quotes for pair on chain.
func (s *Source) GetQuotes(ctx context.Context, pair domain.Pair, chain domain.Chain) ([]domain.Quote, error) {
	ctx, span := s.client.tracer.Start(ctx, "indexer.get_quotes",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("chain", chain.String()),
		),
	)
	defer span.End()

	if err := s.client.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext("indexer rate limiter wait"))
	}

	var result quotesResponse
	resp, err := s.client.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "quotes"),
			httpclient.NewLabel("chain", chain.String()),
		),
		httpclient.WithResponseErrorHandler(indexerErrorHandler),
	).
		SetQueryParam("pair", pair.String()).
		SetQueryParam("chain", chain.String()).
		SetResult(&result).
		Get(ctx, quotesEndpoint)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.External(apperror.CodeIndexerUnavailable,
			"failed to fetch quotes from indexer", err)
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeIndexerUnavailable,
			apperror.WithContext(resp.String()),
			apperror.WithStatusCode(resp.StatusCode))
	}

	quotes := make([]domain.Quote, 0, len(result.Quotes))
	for _, raw := range result.Quotes {
		q, err := toDomainQuote(raw)
		if err != nil {
			s.client.logger.Warn(ctx, "dropping malformed indexer quote",
				"venue", raw.Venue, "chain", raw.Chain, "error", err)
			continue
		}
		quotes = append(quotes, q)
	}

	span.SetAttributes(attribute.Int("quotes", len(quotes)))

	s.client.logger.Debug(ctx, "fetched indexer quotes",
		"pair", pair.String(),
		"chain", chain.String(),
		"quotes", len(quotes))

	return quotes, nil
}

// toDomainQuote parses a wire quote into the domain type.
func toDomainQuote(raw quoteResponse) (domain.Quote, error) {
	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return domain.Quote{}, apperror.Validation(apperror.CodeIndexerBadPayload, "price: "+raw.Price)
	}

	liquidity, err := decimal.NewFromString(raw.LiquidityUSD)
	if err != nil {
		return domain.Quote{}, apperror.Validation(apperror.CodeIndexerBadPayload, "liquidityUsd: "+raw.LiquidityUSD)
	}

	chain, err := domain.ParseChain(raw.Chain)
	if err != nil {
		return domain.Quote{}, apperror.Validation(apperror.CodeIndexerBadPayload, "chain: "+raw.Chain)
	}

	pair, err := domain.ParsePair(raw.Pair)
	if err != nil {
		return domain.Quote{}, apperror.Validation(apperror.CodeIndexerBadPayload, "pair: "+raw.Pair)
	}

	q := domain.Quote{
		Venue:        raw.Venue,
		Chain:        chain,
		Pair:         pair,
		Price:        price,
		LiquidityUSD: liquidity,
		ObservedAt:   time.UnixMilli(raw.Timestamp),
	}
	if err := q.Validate(); err != nil {
		return domain.Quote{}, apperror.Validation(apperror.CodeInvalidQuote, err.Error())
	}
	return q, nil
}
