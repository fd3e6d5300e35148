// Package di declares the dependency injection tokens for the market context.
package di

import (
	"github.com/arbizirq/arbizirq/business/market/app"
	"github.com/arbizirq/arbizirq/internal/di"
)

// Public services (exposed to other modules)
var (
	Aggregator = di.NewToken[*app.Aggregator]("market.Aggregator")
	Detector   = di.NewToken[*app.Detector]("market.Detector")
)

// Private dependencies (internal to this module)
var (
	IndexerSource = di.NewToken[app.QuoteSource]("market:indexerSource")
	StreamSource  = di.NewToken[app.QuoteSource]("market:streamSource")
)

// GetAggregator resolves the quote aggregator.
func GetAggregator(c di.ServiceRegistry) *app.Aggregator {
	return di.GetToken(c, Aggregator)
}

// GetDetector resolves the opportunity detector.
func GetDetector(c di.ServiceRegistry) *app.Detector {
	return di.GetToken(c, Detector)
}

// GetIndexerSource resolves the REST quote source.
func GetIndexerSource(c di.ServiceRegistry) app.QuoteSource {
	return di.GetToken(c, IndexerSource)
}

// GetStreamSource resolves the WebSocket quote source.
func GetStreamSource(c di.ServiceRegistry) app.QuoteSource {
	return di.GetToken(c, StreamSource)
}
