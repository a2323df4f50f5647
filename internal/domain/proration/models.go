package proration

import "time"

// Input describes a mid-cycle plan change to be prorated.
type Input struct {
	CurrentAmountInCents int64
	NewAmountInCents     int64
	PeriodEnd            time.Time
	Now                  time.Time
}

// Result is the outcome of a proration calculation. All amounts are in
// the smallest currency unit.
type Result struct {
	DaysRemaining    int64 `json:"days_remaining"`
	CreditInCents    int64 `json:"credit_cents"`
	ChargeNowInCents int64 `json:"charge_now_cents"`
	IsUpgrade        bool  `json:"is_upgrade"`
	IsDowngrade      bool  `json:"is_downgrade"`
}
