package app

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/business/risk/domain"
)

var (
	// Liquidity level below which the health score starts degrading.
	scoreLiquidityFloorUSD = decimal.NewFromInt(10000)

	// Profit ratio above which the score earns a bonus (1%).
	scoreBonusRatio = decimal.NewFromFloat(0.01)

	maxAgePenalty   = decimal.NewFromInt(30)
	maxScoreBonus   = decimal.NewFromInt(20)
	liquidityDampen = decimal.NewFromInt(200)
	slippageDampen  = decimal.NewFromInt(10)
)

// Validator applies structural and policy guardrails to opportunities.
// It is pure: time is injected, no I/O happens here.
type Validator struct {
	guardrails Guardrails
	now        func() time.Time
}

// NewValidator creates a Validator with the given thresholds.
func NewValidator(guardrails Guardrails) *Validator {
	return &Validator{
		guardrails: guardrails,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// WithMaxSlippageBps derives a validator with a tightened slippage cap.
// The receiver is not modified.
func (v *Validator) WithMaxSlippageBps(bps decimal.Decimal) *Validator {
	return &Validator{
		guardrails: v.guardrails.WithMaxSlippageBps(bps),
		now:        v.now,
	}
}

// Validate runs every structural and policy check against opp. sim may
// be nil when no simulation ran yet; score components that need it are
// skipped in that case.
func (v *Validator) Validate(opp *marketDomain.Opportunity, sim *domain.SimulationResult) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}

	if opp == nil {
		result.AddError("opportunity is nil")
		return result
	}

	if opp.SourceChain == opp.TargetChain {
		result.AddError(fmt.Sprintf("source and target chain are both %s", opp.SourceChain))
	}
	if !opp.SourceChain.IsSupported() {
		result.AddError(fmt.Sprintf("unsupported source chain %s", opp.SourceChain))
	}
	if !opp.TargetChain.IsSupported() {
		result.AddError(fmt.Sprintf("unsupported target chain %s", opp.TargetChain))
	}
	if !opp.GrossPnlUSD.IsPositive() {
		result.AddError(fmt.Sprintf("gross PnL %s is not positive", opp.GrossPnlUSD))
	}
	if !opp.NotionalUSD.IsPositive() {
		result.AddError(fmt.Sprintf("notional %s is not positive", opp.NotionalUSD))
	}
	if opp.NotionalUSD.GreaterThan(v.guardrails.MaxTradeSizeUSD) {
		result.AddError(fmt.Sprintf("notional %s exceeds per-trade cap %s",
			opp.NotionalUSD, v.guardrails.MaxTradeSizeUSD))
	}
	if err := opp.BuyQuote.Validate(); err != nil {
		result.AddError("buy quote: " + err.Error())
	}
	if err := opp.SellQuote.Validate(); err != nil {
		result.AddError("sell quote: " + err.Error())
	}

	now := v.now()
	if age := opp.QuoteAge(now); age > v.guardrails.MaxQuoteAge {
		result.AddWarning(fmt.Sprintf("quotes are %.0fs old (max %s)",
			age.Seconds(), v.guardrails.MaxQuoteAge))
	}
	if liq := opp.MinLiquidityUSD(); liq.LessThan(v.guardrails.MinLiquidityUSD) {
		result.AddWarning(fmt.Sprintf("liquidity %s below floor %s",
			liq, v.guardrails.MinLiquidityUSD))
	}
	if sim != nil && sim.SlippageBps.GreaterThan(v.guardrails.MaxSlippageBps) {
		result.AddWarning(fmt.Sprintf("expected slippage %sbps exceeds cap %sbps",
			sim.SlippageBps.Round(2), v.guardrails.MaxSlippageBps))
	}

	result.Score = v.score(opp, sim, now)
	return result
}

// score computes the 0-100 health score: penalties for stale quotes,
// thin liquidity and high slippage, a capped bonus for rich margins.
func (v *Validator) score(opp *marketDomain.Opportunity, sim *domain.SimulationResult, now time.Time) int {
	score := decimal.NewFromInt(100)

	// -1 per second of quote age beyond the freshness window, capped at -30.
	ageOverrun := opp.QuoteAge(now) - v.guardrails.MaxQuoteAge
	if ageOverrun > 0 {
		penalty := decimal.NewFromFloat(ageOverrun.Seconds())
		if penalty.GreaterThan(maxAgePenalty) {
			penalty = maxAgePenalty
		}
		score = score.Sub(penalty)
	}

	// Thin liquidity: -(floor - liquidity)/200 below the $10k floor.
	if liq := opp.MinLiquidityUSD(); liq.LessThan(scoreLiquidityFloorUSD) {
		score = score.Sub(scoreLiquidityFloorUSD.Sub(liq).Div(liquidityDampen))
	}

	// High slippage: -(slippage - cap)/10 above the cap.
	if sim != nil && sim.SlippageBps.GreaterThan(v.guardrails.MaxSlippageBps) {
		score = score.Sub(sim.SlippageBps.Sub(v.guardrails.MaxSlippageBps).Div(slippageDampen))
	}

	// Rich margin: +min(20, ratio*1000) above a 1% gross profit ratio.
	if opp.NotionalUSD.IsPositive() {
		ratio := opp.GrossPnlUSD.Div(opp.NotionalUSD)
		if ratio.GreaterThan(scoreBonusRatio) {
			bonus := ratio.Mul(decimal.NewFromInt(1000))
			if bonus.GreaterThan(maxScoreBonus) {
				bonus = maxScoreBonus
			}
			score = score.Add(bonus)
		}
	}

	switch {
	case score.IsNegative():
		return 0
	case score.GreaterThan(decimal.NewFromInt(100)):
		return 100
	default:
		return int(score.IntPart())
	}
}
