package app

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	executionApp "github.com/arbizirq/arbizirq/business/execution/app"
	executionDomain "github.com/arbizirq/arbizirq/business/execution/domain"
	marketApp "github.com/arbizirq/arbizirq/business/market/app"
	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	riskApp "github.com/arbizirq/arbizirq/business/risk/app"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func pipelineClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// fakeQuoteSource serves a fixed quote set per chain, filtered by the
// requested pair.
type fakeQuoteSource struct {
	quotes map[marketDomain.Chain][]marketDomain.Quote
}

func (f *fakeQuoteSource) Name() string { return "fake" }

func (f *fakeQuoteSource) GetQuotes(ctx context.Context, pair marketDomain.Pair, chain marketDomain.Chain) ([]marketDomain.Quote, error) {
	var matched []marketDomain.Quote
	for _, q := range f.quotes[chain] {
		if q.Pair == pair {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

// fakeRoutingEngine settles every submitted route immediately.
type fakeRoutingEngine struct{}

func (f *fakeRoutingEngine) Estimate(ctx context.Context, req executionApp.RouteRequest) (executionApp.RouteEstimate, error) {
	return executionApp.RouteEstimate{FeeUSD: decimal.NewFromInt(20), EtaSeconds: 30}, nil
}

func (f *fakeRoutingEngine) Build(ctx context.Context, req executionApp.RouteRequest) (executionApp.RoutePlan, error) {
	return executionApp.RoutePlan{ID: "route-1", CallData: "0x00"}, nil
}

func (f *fakeRoutingEngine) Submit(ctx context.Context, plan executionApp.RoutePlan) (string, error) {
	return "ref-1", nil
}

func (f *fakeRoutingEngine) Settlement(ctx context.Context, ref string) (executionApp.SettlementState, error) {
	return executionApp.SettlementSettled, nil
}

// marketQuote builds a fresh WETH-USDC quote relative to the pipeline
// clock.
func marketQuote(venue string, chain marketDomain.Chain, price, liquidity string) marketDomain.Quote {
	return pairQuote(venue, chain, "WETH", price, liquidity)
}

func pairQuote(venue string, chain marketDomain.Chain, base, price, liquidity string) marketDomain.Quote {
	return marketDomain.Quote{
		Venue:        venue,
		Chain:        chain,
		Pair:         marketDomain.Pair{Base: base, Quote: "USDC"},
		Price:        decimal.RequireFromString(price),
		LiquidityUSD: decimal.RequireFromString(liquidity),
		ObservedAt:   pipelineClock().Add(-5 * time.Second),
	}
}

func pipelineGuardrails() riskApp.Guardrails {
	return riskApp.Guardrails{
		MinNetPnlUSD:    decimal.NewFromInt(1),
		MaxSlippageBps:  decimal.NewFromInt(50),
		MinLiquidityUSD: decimal.NewFromInt(10000),
		MaxQuoteAge:     30 * time.Second,
		MaxTradeSizeUSD: decimal.NewFromInt(10000),
	}
}

// newTestService assembles the full pipeline over fake edges.
func newTestService(source marketApp.QuoteSource) *Service {
	log := testLogger()
	guardrails := pipelineGuardrails()

	aggregator := marketApp.NewAggregator([]marketApp.QuoteSource{source},
		marketApp.AggregatorConfig{}, log).WithClock(pipelineClock)
	detector := marketApp.NewDetector(marketApp.DetectorConfig{
		TradeSizeUSD:    decimal.NewFromInt(10000),
		MaxTradeSizeUSD: decimal.NewFromInt(10000),
	}, log).WithClock(pipelineClock)
	simulator := riskApp.NewSimulator(guardrails, log).WithClock(pipelineClock)
	validator := riskApp.NewValidator(guardrails).WithClock(pipelineClock)
	orchestrator := executionApp.NewOrchestrator(nil, &fakeRoutingEngine{},
		executionApp.OrchestratorConfig{}, log).WithClock(pipelineClock)

	return NewService(aggregator, detector, simulator, validator, orchestrator, log)
}

func profitableSource() *fakeQuoteSource {
	return &fakeQuoteSource{
		quotes: map[marketDomain.Chain][]marketDomain.Quote{
			marketDomain.ChainPolygon: {marketQuote("quickswap", marketDomain.ChainPolygon, "3000", "200000")},
			marketDomain.ChainZircuit: {marketQuote("zircuit-dex", marketDomain.ChainZircuit, "3030", "200000")},
		},
	}
}

var scanChains = []marketDomain.Chain{marketDomain.ChainPolygon, marketDomain.ChainZircuit}
var scanPairs = []marketDomain.Pair{{Base: "WETH", Quote: "USDC"}}

func TestScanFindsProfitableRoute(t *testing.T) {
	service := newTestService(profitableSource())

	findings, err := service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(1), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}

	f := findings[0]
	if f.Opportunity.SourceChain != marketDomain.ChainPolygon {
		t.Errorf("SourceChain = %s, want polygon", f.Opportunity.SourceChain)
	}
	if f.Opportunity.Status != marketDomain.StatusSimulated {
		t.Errorf("Status = %s, want simulated", f.Opportunity.Status)
	}
	if !f.Simulation.OK {
		t.Errorf("Simulation.OK = false, notes: %v", f.Simulation.Notes)
	}
	if !f.Validation.IsValid {
		t.Errorf("Validation.IsValid = false, errors: %v", f.Validation.Errors)
	}
	// Gross $100 minus $84.8 of fees on the polygon -> zircuit route.
	want := decimal.RequireFromString("15.2")
	if f.Simulation.NetPnlUSD.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.000001")) {
		t.Errorf("NetPnlUSD = %s, want %s", f.Simulation.NetPnlUSD, want)
	}
}

func TestScanFiltersByGrossProfitFloor(t *testing.T) {
	service := newTestService(profitableSource())

	// The route grosses $100; a $200 floor must reject it.
	findings, err := service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(200), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("got %d findings above a $200 floor, want 0", len(findings))
	}

	// The floor is measured against gross PnL, inclusively: $100 gross
	// clears a $100 floor even though the net is only ~$15.
	findings, err = service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(100), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings at a $100 floor, want 1", len(findings))
	}
}

// Scan orders findings by gross PnL, not by what is left after fees.
func TestScanSortsByGrossPnl(t *testing.T) {
	source := profitableSource()
	// A second pair routed over ethereum: wider spread ($150 gross) but
	// ethereum gas costs leave a smaller net than the polygon route.
	source.quotes[marketDomain.ChainEthereum] = []marketDomain.Quote{
		pairQuote("uniswap-v3", marketDomain.ChainEthereum, "WBTC", "3000", "200000"),
	}
	source.quotes[marketDomain.ChainPolygon] = append(source.quotes[marketDomain.ChainPolygon],
		pairQuote("quickswap", marketDomain.ChainPolygon, "WBTC", "3045", "200000"))

	service := newTestService(source)
	pairs := []marketDomain.Pair{
		{Base: "WETH", Quote: "USDC"},
		{Base: "WBTC", Quote: "USDC"},
	}
	chains := []marketDomain.Chain{
		marketDomain.ChainEthereum, marketDomain.ChainPolygon, marketDomain.ChainZircuit,
	}

	findings, err := service.Scan(context.Background(), pairs, chains,
		decimal.NewFromInt(1), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}

	first, second := findings[0], findings[1]
	if !first.Opportunity.GrossPnlUSD.GreaterThan(second.Opportunity.GrossPnlUSD) {
		t.Errorf("findings not sorted by gross PnL: %s then %s",
			first.Opportunity.GrossPnlUSD, second.Opportunity.GrossPnlUSD)
	}
	if first.Opportunity.Pair.Base != "WBTC" {
		t.Errorf("first finding pair = %s, want the $150 gross WBTC route", first.Opportunity.Pair.Base)
	}
	// The winner by gross is the loser by net: ordering must not follow
	// net PnL.
	if first.Simulation.NetPnlUSD.GreaterThan(second.Simulation.NetPnlUSD) {
		t.Errorf("expected the top gross finding to net less: %s vs %s",
			first.Simulation.NetPnlUSD, second.Simulation.NetPnlUSD)
	}
}

func TestScanRejectsStaleQuotes(t *testing.T) {
	source := profitableSource()
	for chain, quotes := range source.quotes {
		for i := range quotes {
			quotes[i].ObservedAt = pipelineClock().Add(-2 * time.Minute)
		}
		source.quotes[chain] = quotes
	}

	service := newTestService(source)
	findings, err := service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(1), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("got %d findings from stale quotes, want 0", len(findings))
	}
}

func TestScanRequiresInput(t *testing.T) {
	service := newTestService(profitableSource())

	if _, err := service.Scan(context.Background(), nil, scanChains,
		decimal.NewFromInt(1), decimal.NewFromInt(50)); err == nil {
		t.Error("expected error for empty pairs")
	}
	if _, err := service.Scan(context.Background(), scanPairs, nil,
		decimal.NewFromInt(1), decimal.NewFromInt(50)); err == nil {
		t.Error("expected error for empty chains")
	}
}

func TestExecuteDryRun(t *testing.T) {
	service := newTestService(profitableSource())

	findings, err := service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(1), decimal.NewFromInt(50))
	if err != nil || len(findings) != 1 {
		t.Fatalf("Scan() = %d findings, err %v", len(findings), err)
	}

	opp := findings[0].Opportunity
	result, err := service.Execute(context.Background(), opp, decimal.NewFromInt(50), true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Tier != executionDomain.TierSimulated {
		t.Errorf("Tier = %s, want simulated for a dry run", result.Tier)
	}
	if !result.IsPaper() {
		t.Error("IsPaper() = false for a dry run")
	}
	if opp.Status != marketDomain.StatusExecuted {
		t.Errorf("Status = %s, want executed", opp.Status)
	}
}

func TestExecuteLiveUsesRoutingTier(t *testing.T) {
	service := newTestService(profitableSource())

	findings, err := service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(1), decimal.NewFromInt(50))
	if err != nil || len(findings) != 1 {
		t.Fatalf("Scan() = %d findings, err %v", len(findings), err)
	}

	result, err := service.Execute(context.Background(), findings[0].Opportunity,
		decimal.NewFromInt(50), false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// No ledger configured: the routing engine is the first live tier.
	if result.Tier != executionDomain.TierRouted {
		t.Errorf("Tier = %s, want routed", result.Tier)
	}
	if result.UsedFallback {
		t.Error("UsedFallback = true with no ledger configured")
	}
}

func TestExecuteGuardrailViolation(t *testing.T) {
	service := newTestService(profitableSource())

	findings, err := service.Scan(context.Background(), scanPairs, scanChains,
		decimal.NewFromInt(1), decimal.NewFromInt(50))
	if err != nil || len(findings) != 1 {
		t.Fatalf("Scan() = %d findings, err %v", len(findings), err)
	}

	// Tightening the slippage cap below the modeled 25 bps must abort
	// before any tier runs.
	opp := findings[0].Opportunity
	_, err = service.Execute(context.Background(), opp, decimal.NewFromInt(10), false)
	if err == nil {
		t.Fatal("expected guardrail violation")
	}
	if code := apperror.GetCode(err); code != apperror.CodeGuardrailViolation {
		t.Errorf("code = %s, want %s", code, apperror.CodeGuardrailViolation)
	}
	if opp.Status != marketDomain.StatusSimulated {
		t.Errorf("Status = %s, rejected execution must not advance it", opp.Status)
	}
}

func TestExecuteNilOpportunity(t *testing.T) {
	service := newTestService(profitableSource())

	if _, err := service.Execute(context.Background(), nil, decimal.NewFromInt(50), true); err == nil {
		t.Fatal("expected error for nil opportunity")
	}
}

// captureReporter records everything the scanner forwards.
type captureReporter struct {
	mu         sync.Mutex
	findings   []Finding
	executions []*executionDomain.ExecutionResult
	started    bool
	stopped    bool
}

func (r *captureReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	return nil
}

func (r *captureReporter) ReportFinding(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, f)
}

func (r *captureReporter) ReportExecution(result *executionDomain.ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions = append(r.executions, result)
}

func (r *captureReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	return nil
}

func (r *captureReporter) snapshot() (int, int, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.findings), len(r.executions), r.started, r.stopped
}

func TestScannerRunsPassAndExecutes(t *testing.T) {
	service := newTestService(profitableSource())
	reporter := &captureReporter{}

	scanner := NewScanner(service, reporter, ScannerConfig{
		Pairs:          scanPairs,
		Chains:         scanChains,
		Interval:       time.Hour, // only the immediate first pass
		MinProfitUSD:   decimal.NewFromInt(1),
		MaxSlippageBps: decimal.NewFromInt(50),
		AutoExecute:    true,
		DryRun:         true,
	}, testLogger())

	if err := scanner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		findings, executions, _, _ := reporter.snapshot()
		if findings > 0 && executions > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pass did not complete: %d findings, %d executions", findings, executions)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := scanner.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	findings, executions, started, stopped := reporter.snapshot()
	if !started || !stopped {
		t.Errorf("reporter lifecycle: started=%v stopped=%v", started, stopped)
	}
	if findings != 1 {
		t.Errorf("findings = %d, want 1", findings)
	}
	if executions != 1 {
		t.Errorf("executions = %d, want 1", executions)
	}
	if _, execs, _, _ := reporter.snapshot(); execs == 1 {
		r := reporter.executions[0]
		if r.Tier != executionDomain.TierSimulated {
			t.Errorf("Tier = %s, want simulated for dry-run auto-execute", r.Tier)
		}
	}
}

func TestScannerStopIsIdempotent(t *testing.T) {
	service := newTestService(profitableSource())
	reporter := &captureReporter{}

	scanner := NewScanner(service, reporter, ScannerConfig{
		Pairs:          scanPairs,
		Chains:         scanChains,
		Interval:       time.Hour,
		MinProfitUSD:   decimal.NewFromInt(1),
		MaxSlippageBps: decimal.NewFromInt(50),
	}, testLogger())

	if err := scanner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := scanner.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := scanner.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}
