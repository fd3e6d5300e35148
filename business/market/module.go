// Package market implements the market bounded context: quote
// aggregation across chains and cross-chain opportunity detection.
package market

import (
	"context"
	"time"

	"github.com/arbizirq/arbizirq/business/market/app"
	marketDI "github.com/arbizirq/arbizirq/business/market/di"
	"github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/business/market/infra/indexer"
	"github.com/arbizirq/arbizirq/business/market/infra/stream"
	"github.com/arbizirq/arbizirq/internal/config"
	"github.com/arbizirq/arbizirq/internal/di"
	"github.com/arbizirq/arbizirq/internal/logger"
	"github.com/arbizirq/arbizirq/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register indexer REST source - private dependency
	di.RegisterToken(c, marketDI.IndexerSource, func(sr di.ServiceRegistry) app.QuoteSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := indexer.Config{
			BaseURL:       cfg.Indexer.BaseURL,
			APIKey:        cfg.Indexer.APIKey,
			Timeout:       cfg.Indexer.Timeout,
			RatePerSecond: cfg.Indexer.RatePerSecond,
		}

		client, err := indexer.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create indexer client: " + err.Error())
		}
		return indexer.NewSource(client)
	})

	// Register indexer stream source - private dependency
	di.RegisterToken(c, marketDI.StreamSource, func(sr di.ServiceRegistry) app.QuoteSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		pairs := make([]domain.Pair, 0, len(cfg.Scanner.Pairs))
		for _, raw := range cfg.Scanner.Pairs {
			pair, err := domain.ParsePair(raw)
			if err != nil {
				panic("invalid scanner pair: " + err.Error())
			}
			pairs = append(pairs, pair)
		}

		streamCfg := stream.DefaultConfig(cfg.Indexer.StreamURL, pairs)
		streamCfg.StaleTimeout = cfg.Guardrails.MaxQuoteAge

		source, err := stream.New(streamCfg, log)
		if err != nil {
			panic("failed to create stream source: " + err.Error())
		}
		return source
	})

	// Register Aggregator (public - exposed to other modules)
	di.RegisterToken(c, marketDI.Aggregator, func(sr di.ServiceRegistry) *app.Aggregator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		sources := []app.QuoteSource{marketDI.GetIndexerSource(sr)}
		if cfg.Indexer.StreamURL != "" {
			sources = append(sources, marketDI.GetStreamSource(sr))
		}

		return app.NewAggregator(sources, app.AggregatorConfig{}, log)
	})

	// Register Detector (public - exposed to other modules)
	di.RegisterToken(c, marketDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		detectorCfg := app.DetectorConfig{
			TradeSizeUSD:    cfg.Scanner.TradeSizeDecimal(),
			MaxTradeSizeUSD: cfg.Guardrails.MaxTradeSizeDecimal(),
		}
		return app.NewDetector(detectorCfg, log)
	})

	return nil
}

// Startup initializes the market module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	// Connect the stream source when configured; the REST source needs
	// no warm-up and the scan degrades gracefully without the stream.
	if cfg.Indexer.StreamURL != "" {
		source := marketDI.GetStreamSource(mono.Services())
		if connector, ok := source.(interface{ Connect(context.Context) error }); ok {
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := connector.Connect(connectCtx); err != nil {
				log.Warn(ctx, "stream connection failed, continuing with REST only", "error", err)
			}
		}
	}

	log.Info(ctx, "market module started")
	return nil
}
