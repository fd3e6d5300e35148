package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/market/domain"
)

var detectorCfg = DetectorConfig{
	TradeSizeUSD:    decimal.NewFromInt(10000),
	MaxTradeSizeUSD: decimal.NewFromInt(10000),
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func detQuote(venue string, chain domain.Chain, price, liquidity string) domain.Quote {
	return domain.Quote{
		Venue:        venue,
		Chain:        chain,
		Pair:         domain.Pair{Base: "WETH", Quote: "USDC"},
		Price:        decimal.RequireFromString(price),
		LiquidityUSD: decimal.RequireFromString(liquidity),
		ObservedAt:   fixedClock().Add(-5 * time.Second),
	}
}

func TestDetectFindsCrossChainSpread(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "50000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3030", "40000"),
	}

	opps := detector.Detect(context.Background(), quotes)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.SourceChain != domain.ChainEthereum || opp.TargetChain != domain.ChainZircuit {
		t.Errorf("route = %s -> %s, want ethereum -> zircuit", opp.SourceChain, opp.TargetChain)
	}
	if !opp.NotionalUSD.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("NotionalUSD = %s, want 10000", opp.NotionalUSD)
	}
	// 10000/3000 units * $30 spread = $100
	if !opp.GrossPnlUSD.Equal(decimal.NewFromInt(100)) {
		t.Errorf("GrossPnlUSD = %s, want 100", opp.GrossPnlUSD)
	}
}

func TestDetectNoSpreadNoOpportunity(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "50000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3000", "40000"),
	}

	if opps := detector.Detect(context.Background(), quotes); len(opps) != 0 {
		t.Fatalf("got %d opportunities for a flat market, want 0", len(opps))
	}
}

func TestDetectSingleChainIsIgnored(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "50000"),
		detQuote("sushiswap", domain.ChainEthereum, "3050", "40000"),
	}

	if opps := detector.Detect(context.Background(), quotes); len(opps) != 0 {
		t.Fatalf("got %d opportunities within one chain, want 0", len(opps))
	}
}

func TestDetectPicksBestLegs(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "50000"),
		detQuote("sushiswap", domain.ChainEthereum, "3010", "60000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3040", "40000"),
		detQuote("velodrome", domain.ChainZircuit, "3020", "70000"),
	}

	opps := detector.Detect(context.Background(), quotes)
	if len(opps) == 0 {
		t.Fatal("expected at least one opportunity")
	}

	best := opps[0]
	if best.BuyQuote.Venue != "uniswap-v3" {
		t.Errorf("buy venue = %s, want the cheapest (uniswap-v3)", best.BuyQuote.Venue)
	}
	if best.SellQuote.Venue != "zircuit-dex" {
		t.Errorf("sell venue = %s, want the richest (zircuit-dex)", best.SellQuote.Venue)
	}
}

func TestDetectNotionalBoundedByLiquidity(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "4000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3030", "40000"),
	}

	opps := detector.Detect(context.Background(), quotes)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if !opps[0].NotionalUSD.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("NotionalUSD = %s, want shallow-leg liquidity 4000", opps[0].NotionalUSD)
	}
}

func TestDetectNotionalCapped(t *testing.T) {
	cfg := DetectorConfig{
		TradeSizeUSD:    decimal.NewFromInt(50000),
		MaxTradeSizeUSD: decimal.NewFromInt(10000),
	}
	detector := NewDetector(cfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "80000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3030", "80000"),
	}

	opps := detector.Detect(context.Background(), quotes)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if !opps[0].NotionalUSD.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("NotionalUSD = %s, want the $10000 cap", opps[0].NotionalUSD)
	}
}

func TestDetectSortsByGrossPnl(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "50000"),
		detQuote("quickswap", domain.ChainPolygon, "3015", "50000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3060", "50000"),
	}

	opps := detector.Detect(context.Background(), quotes)
	if len(opps) < 2 {
		t.Fatalf("got %d opportunities, want at least 2", len(opps))
	}
	for i := 1; i < len(opps); i++ {
		if opps[i].GrossPnlUSD.GreaterThan(opps[i-1].GrossPnlUSD) {
			t.Errorf("opportunities not sorted: %s before %s",
				opps[i-1].GrossPnlUSD, opps[i].GrossPnlUSD)
		}
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	detector := NewDetector(detectorCfg, testLogger()).WithClock(fixedClock)

	quotes := []domain.Quote{
		detQuote("uniswap-v3", domain.ChainEthereum, "3000", "50000"),
		detQuote("quickswap", domain.ChainPolygon, "3015", "50000"),
		detQuote("zircuit-dex", domain.ChainZircuit, "3060", "50000"),
	}

	first := detector.Detect(context.Background(), quotes)
	second := detector.Detect(context.Background(), quotes)

	if len(first) != len(second) {
		t.Fatalf("detection not idempotent: %d vs %d results", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("result %d: ID %s vs %s", i, first[i].ID, second[i].ID)
		}
		if !first[i].GrossPnlUSD.Equal(second[i].GrossPnlUSD) {
			t.Errorf("result %d: gross %s vs %s", i, first[i].GrossPnlUSD, second[i].GrossPnlUSD)
		}
	}
}
