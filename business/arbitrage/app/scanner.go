package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/logger"
)

const defaultScanInterval = 10 * time.Second

// ScannerConfig configures the periodic scan loop.
type ScannerConfig struct {
	Pairs          []marketDomain.Pair
	Chains         []marketDomain.Chain
	Interval       time.Duration
	MaxResults     int
	MinProfitUSD   decimal.Decimal
	MaxSlippageBps decimal.Decimal
	// AutoExecute drives the best finding of each pass through the
	// execution tiers. DryRun is forwarded to the orchestrator.
	AutoExecute bool
	DryRun      bool
}

// Scanner runs the pipeline on a fixed interval and forwards results
// to the reporter. One pass runs at a time; a slow pass delays the
// next tick instead of overlapping it.
type Scanner struct {
	service  *Service
	reporter Reporter
	config   ScannerConfig
	logger   logger.LoggerInterface

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewScanner creates a Scanner; Start launches the loop.
func NewScanner(service *Service, reporter Reporter, cfg ScannerConfig, log logger.LoggerInterface) *Scanner {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultScanInterval
	}
	return &Scanner{
		service:  service,
		reporter: reporter,
		config:   cfg,
		logger:   log,
	}
}

// Start begins periodic scanning. The first pass runs immediately.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	if err := s.reporter.Start(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.run(runCtx)

	s.logger.Info(ctx, "scanner started",
		"pairs", len(s.config.Pairs),
		"chains", len(s.config.Chains),
		"interval", s.config.Interval.String(),
		"auto_execute", s.config.AutoExecute)
	return nil
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.cancel()
	<-s.done
	s.started = false
	return s.reporter.Stop()
}

func (s *Scanner) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

// pass runs one scan and, when configured, executes the best finding.
func (s *Scanner) pass(ctx context.Context) {
	findings, err := s.service.Scan(ctx, s.config.Pairs, s.config.Chains, s.config.MinProfitUSD, s.config.MaxSlippageBps)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(ctx, "scan pass failed", "error", err)
		}
		return
	}

	if s.config.MaxResults > 0 && len(findings) > s.config.MaxResults {
		findings = findings[:s.config.MaxResults]
	}
	for _, f := range findings {
		s.reporter.ReportFinding(f)
	}

	if !s.config.AutoExecute || len(findings) == 0 {
		return
	}

	best := findings[0]
	result, err := s.service.Execute(ctx, best.Opportunity, s.config.MaxSlippageBps, s.config.DryRun)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(ctx, "execution failed",
				"id", best.Opportunity.ID, "error", err)
		}
		return
	}
	s.reporter.ReportExecution(result)
}
