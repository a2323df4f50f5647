package proration

import (
	"time"

	"github.com/shopspring/decimal"
)

// billingDaysPerPeriod is the fixed divisor for the daily rate. Using a
// flat 30 keeps credits stable regardless of calendar month length.
const billingDaysPerPeriod = 30

// Calculate prorates a plan change at Input.Now. The unused remainder of
// the current plan is credited against the new plan's full price:
//
//	daysRemaining = max(0, ceil(periodEnd - now))
//	credit        = floor(currentAmount/30 * daysRemaining)
//	chargeNow     = max(0, newAmount - credit)
//
// Calculate is pure; callers decide whether chargeNow is collected
// immediately (upgrades) or the credit is banked (downgrades).
func Calculate(in Input) Result {
	daysRemaining := int64(0)
	if remaining := in.PeriodEnd.Sub(in.Now); remaining > 0 {
		daysRemaining = int64(remaining / (24 * time.Hour))
		if remaining%(24*time.Hour) != 0 {
			daysRemaining++
		}
	}

	daily := decimal.NewFromInt(in.CurrentAmountInCents).
		Div(decimal.NewFromInt(billingDaysPerPeriod))
	credit := daily.Mul(decimal.NewFromInt(daysRemaining)).Floor().IntPart()

	chargeNow := in.NewAmountInCents - credit
	if chargeNow < 0 {
		chargeNow = 0
	}

	return Result{
		DaysRemaining:    daysRemaining,
		CreditInCents:    credit,
		ChargeNowInCents: chargeNow,
		IsUpgrade:        in.NewAmountInCents > in.CurrentAmountInCents,
		IsDowngrade:      in.NewAmountInCents < in.CurrentAmountInCents,
	}
}
