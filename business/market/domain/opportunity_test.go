package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testQuote(venue string, chain Chain, price string, at time.Time) Quote {
	return Quote{
		Venue:        venue,
		Chain:        chain,
		Pair:         Pair{Base: "WETH", Quote: "USDC"},
		Price:        decimal.RequireFromString(price),
		LiquidityUSD: decimal.RequireFromString("50000"),
		ObservedAt:   at,
	}
}

func TestNewOpportunity(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	sell := testQuote("zircuit-dex", ChainZircuit, "3030", at)

	opp, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		at)
	if err != nil {
		t.Fatalf("NewOpportunity() error = %v", err)
	}

	if opp.SourceChain != ChainEthereum {
		t.Errorf("SourceChain = %s, want ethereum", opp.SourceChain)
	}
	if opp.TargetChain != ChainZircuit {
		t.Errorf("TargetChain = %s, want zircuit", opp.TargetChain)
	}
	if opp.Status != StatusNew {
		t.Errorf("Status = %s, want new", opp.Status)
	}

	wantID := "WETH-USDC_ethereum-zircuit_" + "1748779200000"
	if opp.ID != wantID {
		t.Errorf("ID = %s, want %s", opp.ID, wantID)
	}
}

func TestNewOpportunityRejectsSameChain(t *testing.T) {
	at := time.Now()
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	sell := testQuote("sushiswap", ChainEthereum, "3030", at)

	_, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		at)
	if err == nil {
		t.Fatal("expected error for same source and target chain")
	}
}

func TestNewOpportunityRejectsNonPositivePnl(t *testing.T) {
	at := time.Now()
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	sell := testQuote("zircuit-dex", ChainZircuit, "2990", at)

	for _, gross := range []string{"0", "-10"} {
		_, err := NewOpportunity(buy, sell,
			decimal.RequireFromString("10000"),
			decimal.RequireFromString(gross),
			at)
		if err == nil {
			t.Errorf("gross %s: expected error", gross)
		}
	}
}

func TestNewOpportunityRejectsMismatchedPairs(t *testing.T) {
	at := time.Now()
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	sell := testQuote("zircuit-dex", ChainZircuit, "3030", at)
	sell.Pair = Pair{Base: "WBTC", Quote: "USDC"}

	_, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		at)
	if err == nil {
		t.Fatal("expected error for mismatched pairs")
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"new to simulated", StatusNew, StatusSimulated, true},
		{"simulated to executing", StatusSimulated, StatusExecuting, true},
		{"executing to executed", StatusExecuting, StatusExecuted, true},
		{"executing to failed", StatusExecuting, StatusFailed, true},
		{"new to executing skips simulation", StatusNew, StatusExecuting, false},
		{"simulated back to new", StatusSimulated, StatusNew, false},
		{"executed is terminal", StatusExecuted, StatusExecuting, false},
		{"failed is terminal", StatusFailed, StatusExecuting, false},
		{"executed to failed", StatusExecuted, StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.ok {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
			}
		})
	}
}

func TestTransitionToRejectsIllegalMove(t *testing.T) {
	at := time.Now()
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	sell := testQuote("zircuit-dex", ChainZircuit, "3030", at)

	opp, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		at)
	if err != nil {
		t.Fatalf("NewOpportunity() error = %v", err)
	}

	if err := opp.TransitionTo(StatusExecuting); err == nil {
		t.Fatal("expected error skipping simulated status")
	}
	if opp.Status != StatusNew {
		t.Errorf("failed transition mutated status to %s", opp.Status)
	}

	if err := opp.TransitionTo(StatusSimulated); err != nil {
		t.Fatalf("TransitionTo(simulated) error = %v", err)
	}
	if err := opp.TransitionTo(StatusExecuting); err != nil {
		t.Fatalf("TransitionTo(executing) error = %v", err)
	}
	if err := opp.TransitionTo(StatusExecuted); err != nil {
		t.Fatalf("TransitionTo(executed) error = %v", err)
	}
	if !opp.Status.IsTerminal() {
		t.Error("executed status should be terminal")
	}
}

func TestSpreadBps(t *testing.T) {
	at := time.Now()
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	sell := testQuote("zircuit-dex", ChainZircuit, "3030", at)

	opp, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		at)
	if err != nil {
		t.Fatalf("NewOpportunity() error = %v", err)
	}

	// (3030-3000)/3000 * 10000 = 100 bps
	if got := opp.SpreadBps(); !got.Equal(decimal.RequireFromString("100")) {
		t.Errorf("SpreadBps() = %s, want 100", got)
	}
}

func TestQuoteAgeUsesOlderQuote(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", now.Add(-10*time.Second))
	sell := testQuote("zircuit-dex", ChainZircuit, "3030", now.Add(-25*time.Second))

	opp, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		now)
	if err != nil {
		t.Fatalf("NewOpportunity() error = %v", err)
	}

	if got := opp.QuoteAge(now); got != 25*time.Second {
		t.Errorf("QuoteAge() = %s, want 25s", got)
	}
}

func TestMinLiquidityUSD(t *testing.T) {
	at := time.Now()
	buy := testQuote("uniswap-v3", ChainEthereum, "3000", at)
	buy.LiquidityUSD = decimal.RequireFromString("80000")
	sell := testQuote("zircuit-dex", ChainZircuit, "3030", at)
	sell.LiquidityUSD = decimal.RequireFromString("20000")

	opp, err := NewOpportunity(buy, sell,
		decimal.RequireFromString("10000"),
		decimal.RequireFromString("100"),
		at)
	if err != nil {
		t.Fatalf("NewOpportunity() error = %v", err)
	}

	if got := opp.MinLiquidityUSD(); !got.Equal(decimal.RequireFromString("20000")) {
		t.Errorf("MinLiquidityUSD() = %s, want 20000", got)
	}
}
