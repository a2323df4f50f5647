package paymentsource

import (
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// PaymentSource is a tokenized payment instrument registered at the
// gateway and reused for recurring charges. Only AVAILABLE sources are
// eligible for automatic collection.
type PaymentSource struct {
	ID            string                    `db:"id" json:"id"`
	WorkspaceID   string                    `db:"workspace_id" json:"workspace_id"`
	UserID        string                    `db:"user_id" json:"user_id"`
	ExternalID    string                    `db:"external_id" json:"external_id"`
	Type          types.PaymentSourceType   `db:"type" json:"type"`
	SourceStatus  types.PaymentSourceStatus `db:"source_status" json:"status"`
	Brand         string                    `db:"brand" json:"brand,omitempty"`
	LastFour      string                    `db:"last_four" json:"last_four,omitempty"`
	ExpiresAt     string                    `db:"expires_at" json:"expires_at,omitempty"`
	CustomerEmail string                    `db:"customer_email" json:"customer_email"`
	IsDefault     bool                      `db:"is_default" json:"is_default"`
	types.BaseModel
}

func (ps *PaymentSource) Validate() error {
	if ps.ExternalID == "" {
		return ierr.NewError("missing external id").
			WithHint("gateway payment source id is required").
			Mark(ierr.ErrValidation)
	}

	if !ps.Type.Validate() {
		return ierr.NewError("invalid payment source type").
			WithHintf("unknown payment source type %s", ps.Type).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Usable reports whether the source can be charged.
func (ps *PaymentSource) Usable() bool {
	return ps.SourceStatus.IsAvailable() && ps.Status == types.StatusActive
}
