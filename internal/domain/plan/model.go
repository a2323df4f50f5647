package plan

import (
	"time"

	"github.com/recibohq/recibo/internal/types"
)

// Plan represents a purchasable subscription plan
type Plan struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description"`
	AmountInCents int64               `db:"amount_in_cents" json:"amount_in_cents"`
	Currency      string              `db:"currency" json:"currency"`
	BillingPeriod types.BillingPeriod `db:"billing_period" json:"billing_period"`
	SortOrder     int                 `db:"sort_order" json:"sort_order"`
	IsActive      bool                `db:"is_active" json:"is_active"`
	types.BaseModel
}

// PeriodEnd returns the end of a billing period starting at start.
// Calendar-accurate: a month from Jan 31 normalizes per time.AddDate.
func (p *Plan) PeriodEnd(start time.Time) time.Time {
	if p.BillingPeriod == types.BillingPeriodYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
