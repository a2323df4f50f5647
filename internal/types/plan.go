package types

// BillingPeriod is the recurrence of a plan.
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

func (p BillingPeriod) Validate() bool {
	return p == BillingPeriodMonthly || p == BillingPeriodYearly
}
