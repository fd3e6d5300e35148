// Package domain contains the core domain types for the risk context.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
)

var (
	bpsDivisor = decimal.NewFromInt(10000)

	defaultVenueFeeBps      = decimal.NewFromInt(25)
	defaultBridgeBaseFeeUSD = decimal.NewFromInt(5)
	defaultGasMultiplierUSD = decimal.NewFromInt(2)

	// Per-venue swap fees in basis points, charged on each leg.
	venueFeeBps = map[string]decimal.Decimal{
		"uniswap-v3":  decimal.NewFromInt(5),
		"uniswap-v2":  decimal.NewFromInt(30),
		"sushiswap":   decimal.NewFromInt(30),
		"quickswap":   decimal.NewFromInt(25),
		"balancer":    decimal.NewFromInt(10),
		"curve":       decimal.NewFromInt(4),
		"camelot":     decimal.NewFromInt(20),
		"velodrome":   decimal.NewFromInt(5),
		"zircuit-dex": decimal.NewFromInt(25),
	}

	// Flat per-chain bridge base fees in USD.
	bridgeBaseFeeUSD = map[marketDomain.Chain]decimal.Decimal{
		marketDomain.ChainEthereum: decimal.NewFromInt(15),
		marketDomain.ChainPolygon:  decimal.NewFromInt(2),
		marketDomain.ChainZircuit:  decimal.NewFromInt(1),
		marketDomain.ChainArbitrum: decimal.NewFromInt(3),
		marketDomain.ChainOptimism: decimal.NewFromInt(3),
	}

	// bridgeVariableRate is the proportional bridge fee (0.1%).
	bridgeVariableRate = decimal.NewFromFloat(0.001)

	// Per-chain gas cost multipliers in USD per swap unit.
	gasMultiplierUSD = map[marketDomain.Chain]decimal.Decimal{
		marketDomain.ChainEthereum: decimal.NewFromInt(20),
		marketDomain.ChainPolygon:  decimal.NewFromFloat(0.1),
		marketDomain.ChainZircuit:  decimal.NewFromFloat(0.5),
		marketDomain.ChainArbitrum: decimal.NewFromInt(1),
		marketDomain.ChainOptimism: decimal.NewFromInt(1),
	}

	// gasUnitsPerTrade covers approve + swap on each side plus the
	// bridge transaction.
	gasUnitsPerTrade = decimal.NewFromInt(3)

	// routingRate is the routing engine fee (0.2%).
	routingRate = decimal.NewFromFloat(0.002)
)

// VenueFeeBps returns the swap fee for a venue, falling back to the
// default when the venue is unknown.
func VenueFeeBps(venue string) decimal.Decimal {
	if bps, ok := venueFeeBps[venue]; ok {
		return bps
	}
	return defaultVenueFeeBps
}

// BridgeBaseFeeUSD returns the flat bridge fee for a chain, falling
// back to the default when the chain is unknown.
func BridgeBaseFeeUSD(chain marketDomain.Chain) decimal.Decimal {
	if fee, ok := bridgeBaseFeeUSD[chain]; ok {
		return fee
	}
	return defaultBridgeBaseFeeUSD
}

// GasMultiplierUSD returns the per-unit gas cost for a chain, falling
// back to the default when the chain is unknown.
func GasMultiplierUSD(chain marketDomain.Chain) decimal.Decimal {
	if mult, ok := gasMultiplierUSD[chain]; ok {
		return mult
	}
	return defaultGasMultiplierUSD
}

// FeeBreakdown itemizes the cost of one cross-chain trade in USD.
// Total is always the exact sum of the components.
type FeeBreakdown struct {
	SwapUSD    decimal.Decimal
	BridgeUSD  decimal.Decimal
	GasUSD     decimal.Decimal
	RoutingUSD decimal.Decimal
	TotalUSD   decimal.Decimal
}

// NewFeeBreakdown computes the full fee breakdown for an opportunity.
func NewFeeBreakdown(opp *marketDomain.Opportunity) FeeBreakdown {
	notional := opp.NotionalUSD

	swap := notional.Mul(VenueFeeBps(opp.BuyQuote.Venue)).Div(bpsDivisor).
		Add(notional.Mul(VenueFeeBps(opp.SellQuote.Venue)).Div(bpsDivisor))

	bridge := BridgeBaseFeeUSD(opp.SourceChain).
		Add(BridgeBaseFeeUSD(opp.TargetChain)).
		Add(notional.Mul(bridgeVariableRate))

	gas := GasMultiplierUSD(opp.SourceChain).
		Add(GasMultiplierUSD(opp.TargetChain)).
		Mul(gasUnitsPerTrade)

	routing := notional.Mul(routingRate)

	return FeeBreakdown{
		SwapUSD:    swap,
		BridgeUSD:  bridge,
		GasUSD:     gas,
		RoutingUSD: routing,
		TotalUSD:   swap.Add(bridge).Add(gas).Add(routing),
	}
}

// Validate checks that the breakdown is internally consistent.
func (f FeeBreakdown) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"swap":    f.SwapUSD,
		"bridge":  f.BridgeUSD,
		"gas":     f.GasUSD,
		"routing": f.RoutingUSD,
	} {
		if v.IsNegative() {
			return fmt.Errorf("fee breakdown: negative %s component %s", name, v)
		}
	}
	sum := f.SwapUSD.Add(f.BridgeUSD).Add(f.GasUSD).Add(f.RoutingUSD)
	if !sum.Equal(f.TotalUSD) {
		return fmt.Errorf("fee breakdown: total %s != sum %s", f.TotalUSD, sum)
	}
	return nil
}

// ExpectedSlippageBps models price impact as quadratic in trade size
// relative to the thinner leg's liquidity, saturating at 10000 bps.
func ExpectedSlippageBps(notionalUSD, liquidityUSD decimal.Decimal) decimal.Decimal {
	if !liquidityUSD.IsPositive() {
		return bpsDivisor
	}
	ratio := notionalUSD.Div(liquidityUSD)
	slippage := ratio.Mul(ratio).Mul(bpsDivisor)
	if slippage.GreaterThan(bpsDivisor) {
		return bpsDivisor
	}
	return slippage
}
