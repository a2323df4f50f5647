package subscription

import (
	"time"

	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// Subscription represents a workspace's recurring plan membership
type Subscription struct {
	ID                 string                   `db:"id" json:"id"`
	WorkspaceID        string                   `db:"workspace_id" json:"workspace_id"`
	UserID             string                   `db:"user_id" json:"user_id"`
	PlanID             string                   `db:"plan_id" json:"plan_id"`
	PaymentSourceID    *string                  `db:"payment_source_id" json:"payment_source_id,omitempty"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	CurrentPeriodStart time.Time                `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time                `db:"current_period_end" json:"current_period_end"`
	CancelAtPeriodEnd  bool                     `db:"cancel_at_period_end" json:"cancel_at_period_end"`
	CanceledAt         *time.Time               `db:"canceled_at" json:"canceled_at,omitempty"`
	Metadata           types.Metadata           `db:"metadata" json:"metadata,omitempty"`
	types.BaseModel
}

func (s *Subscription) Validate() error {
	if !s.SubscriptionStatus.Validate() {
		return ierr.NewError("invalid subscription status").
			WithHintf("unknown subscription status %q", s.SubscriptionStatus).
			Mark(ierr.ErrValidation)
	}

	if !s.CurrentPeriodEnd.After(s.CurrentPeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHint("current_period_end must be after current_period_start").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsActive reports whether the subscription grants entitlements right now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive &&
		now.Before(s.CurrentPeriodEnd)
}
