package invoice

import (
	"time"

	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// Invoice represents a billable unit for one subscription period or one
// ad-hoc proration charge.
type Invoice struct {
	ID             string              `db:"id" json:"id"`
	SubscriptionID string              `db:"subscription_id" json:"subscription_id"`
	WorkspaceID    string              `db:"workspace_id" json:"workspace_id"`
	AmountInCents  int64               `db:"amount_in_cents" json:"amount_in_cents"`
	InvoiceStatus  types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	// Reference is the gateway-facing reference carried on every charge
	// attempt for this invoice; webhook callbacks resolve invoices by it.
	Reference             string     `db:"reference" json:"reference"`
	PeriodStart           time.Time  `db:"period_start" json:"period_start"`
	PeriodEnd             time.Time  `db:"period_end" json:"period_end"`
	AttemptCount          int        `db:"attempt_count" json:"attempt_count"`
	NextRetryAt           *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`
	PaidAt                *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	ExternalTransactionID *string    `db:"external_transaction_id" json:"external_transaction_id,omitempty"`
	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.AmountInCents < 0 {
		return ierr.NewError("invalid invoice amount").
			WithHint("amount_in_cents must be non negative").
			Mark(ierr.ErrValidation)
	}

	if i.AttemptCount < 0 || i.AttemptCount > types.MaxInvoiceAttempts {
		return ierr.NewError("invalid attempt count").
			WithHintf("attempt_count must be between 0 and %d", types.MaxInvoiceAttempts).
			Mark(ierr.ErrValidation)
	}

	// paid_at is set iff the invoice is paid
	if (i.PaidAt != nil) != (i.InvoiceStatus == types.InvoiceStatusPaid) {
		return ierr.NewError("inconsistent paid state").
			WithHint("paid_at must be set exactly when the invoice is paid").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsExhausted reports whether dunning has used up all retries.
func (i *Invoice) IsExhausted() bool {
	return i.InvoiceStatus == types.InvoiceStatusFailed &&
		i.AttemptCount >= types.MaxInvoiceAttempts
}
