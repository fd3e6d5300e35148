// Package app contains application services for the risk context.
package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/internal/config"
)

// Guardrails is the single set of risk thresholds shared by scan,
// simulate and execute. Keeping one copy avoids the thresholds
// drifting apart between pipeline stages.
type Guardrails struct {
	MinNetPnlUSD    decimal.Decimal
	MaxSlippageBps  decimal.Decimal
	MinLiquidityUSD decimal.Decimal
	MaxQuoteAge     time.Duration
	MaxTradeSizeUSD decimal.Decimal
}

// GuardrailsFromConfig converts the config section into decimals.
func GuardrailsFromConfig(cfg config.GuardrailsConfig) Guardrails {
	return Guardrails{
		MinNetPnlUSD:    cfg.MinNetPnlDecimal(),
		MaxSlippageBps:  cfg.MaxSlippageDecimal(),
		MinLiquidityUSD: cfg.MinLiquidityDecimal(),
		MaxQuoteAge:     cfg.MaxQuoteAge,
		MaxTradeSizeUSD: cfg.MaxTradeSizeDecimal(),
	}
}

// WithMaxSlippageBps returns a copy with the slippage cap overridden.
// Callers can tighten a single request without mutating the shared set.
func (g Guardrails) WithMaxSlippageBps(bps decimal.Decimal) Guardrails {
	if bps.IsPositive() {
		g.MaxSlippageBps = bps
	}
	return g
}
