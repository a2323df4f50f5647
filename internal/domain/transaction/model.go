package transaction

import (
	"encoding/json"

	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// Transaction records one gateway charge attempt. Rows are created once
// per attempt, updated in place on later callbacks and never deleted;
// ExternalID is the idempotency key under at-least-once webhook delivery.
type Transaction struct {
	ID                string              `db:"id" json:"id"`
	InvoiceID         string              `db:"invoice_id" json:"invoice_id"`
	WorkspaceID       string              `db:"workspace_id" json:"workspace_id"`
	ExternalID        string              `db:"external_id" json:"external_id"`
	AmountInCents     int64               `db:"amount_in_cents" json:"amount_in_cents"`
	GatewayStatus     types.GatewayStatus `db:"gateway_status" json:"gateway_status"`
	PaymentMethodType string              `db:"payment_method_type" json:"payment_method_type"`
	Reference         string              `db:"reference" json:"reference"`
	StatusMessage     string              `db:"status_message" json:"status_message"`
	RawPayload        json.RawMessage     `db:"raw_payload" json:"raw_payload,omitempty"`
	types.BaseModel
}

func (t *Transaction) Validate() error {
	if t.ExternalID == "" {
		return ierr.NewError("missing external id").
			WithHint("gateway transaction id is required").
			Mark(ierr.ErrValidation)
	}

	if t.AmountInCents < 0 {
		return ierr.NewError("invalid transaction amount").
			WithHint("amount_in_cents must be non negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}
