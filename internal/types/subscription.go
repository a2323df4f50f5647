package types

// SubscriptionStatus is the lifecycle status of a subscription.
type SubscriptionStatus string

const (
	// SubscriptionStatusIncomplete is set at checkout, before the first
	// payment is confirmed.
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	// SubscriptionStatusPastDue is reached only through dunning
	// exhaustion, never directly from a single failed payment.
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Validate() bool {
	switch s {
	case SubscriptionStatusIncomplete,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusCanceled:
		return true
	}
	return false
}
