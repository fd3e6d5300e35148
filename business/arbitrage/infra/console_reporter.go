// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arbizirq/arbizirq/business/arbitrage/app"
	executionDomain "github.com/arbizirq/arbizirq/business/execution/domain"
)

const rule = "================================================================================"
const thinRule = "--------------------------------------------------------------------------------"

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "ArbiZirQ Scanner Started")
	fmt.Fprintln(r.out, "========================")
	return nil
}

// ReportFinding outputs an opportunity that cleared the guardrails.
func (r *ConsoleReporter) ReportFinding(f app.Finding) {
	opp := f.Opportunity

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "ID:             %s\n", opp.ID)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s\n", opp.Pair.String())
	fmt.Fprintf(r.out, "Route:          %s -> %s\n", opp.SourceChain, opp.TargetChain)
	fmt.Fprintln(r.out, thinRule)
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  Buy  (%s on %s):  $%s\n", opp.BuyQuote.Venue, opp.SourceChain, opp.BuyQuote.Price.StringFixed(2))
	fmt.Fprintf(r.out, "  Sell (%s on %s):  $%s\n", opp.SellQuote.Venue, opp.TargetChain, opp.SellQuote.Price.StringFixed(2))
	fmt.Fprintf(r.out, "  Spread:         %s bps\n", opp.SpreadBps().StringFixed(2))
	fmt.Fprintln(r.out, thinRule)
	fmt.Fprintln(r.out, "TRADE DETAILS")
	fmt.Fprintf(r.out, "  Notional:       $%s\n", opp.NotionalUSD.StringFixed(2))
	fmt.Fprintf(r.out, "  Fees:           $%s\n", f.Simulation.Breakdown.TotalUSD.StringFixed(2))
	fmt.Fprintf(r.out, "  Slippage:       %s bps\n", f.Simulation.SlippageBps.StringFixed(2))
	fmt.Fprintf(r.out, "  Health Score:   %d/100\n", f.Validation.Score)
	for _, w := range f.Validation.Warnings {
		fmt.Fprintf(r.out, "  Warning:        %s\n", w)
	}
	fmt.Fprintln(r.out, thinRule)
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Gross:          $%s\n", opp.GrossPnlUSD.StringFixed(2))
	fmt.Fprintf(r.out, "  Net:            $%s\n", f.Simulation.NetPnlUSD.StringFixed(2))
	fmt.Fprintln(r.out, rule)
}

// ReportExecution outputs a resolved execution attempt.
func (r *ConsoleReporter) ReportExecution(result *executionDomain.ExecutionResult) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "EXECUTION RESOLVED")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Opportunity:    %s\n", result.OpportunityID)
	fmt.Fprintf(r.out, "Tier:           %s\n", result.Tier)
	if result.UsedFallback {
		fmt.Fprintln(r.out, "Fallback:       yes")
	}
	if result.IsPaper() {
		fmt.Fprintln(r.out, "Fill:           paper")
	}
	fmt.Fprintf(r.out, "Tx Ref:         %s\n", result.TransactionRef)
	for _, receipt := range result.Receipts {
		fmt.Fprintf(r.out, "  Receipt:      [%s] %s (%s)\n", receipt.Chain, receipt.TxHash, receipt.Status)
	}
	fmt.Fprintf(r.out, "Realized PnL:   $%s\n", result.RealizedPnlUSD.StringFixed(2))
	fmt.Fprintf(r.out, "Elapsed:        %dms\n", result.ElapsedMs)
	fmt.Fprintln(r.out, rule)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "ArbiZirQ Scanner Stopped")
	return nil
}
