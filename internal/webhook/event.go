package webhook

import "encoding/json"

// Event types delivered by the gateway.
const (
	EventTransactionUpdated   = "transaction.updated"
	EventPaymentSourceUpdated = "payment_source.updated"
)

// Event is the envelope of a gateway webhook delivery.
type Event struct {
	Event     string    `json:"event"`
	Data      EventData `json:"data"`
	SentAt    string    `json:"sent_at,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

type EventData struct {
	Transaction   *TransactionPayload   `json:"transaction,omitempty"`
	PaymentSource *PaymentSourcePayload `json:"payment_source,omitempty"`
}

// TransactionPayload is the transaction snapshot inside a
// transaction.updated event.
type TransactionPayload struct {
	ID                string `json:"id"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	StatusMessage     string `json:"status_message"`
	PaymentMethodType string `json:"payment_method_type"`
	PaymentSourceID   string `json:"payment_source_id,omitempty"`
	CustomerEmail     string `json:"customer_email,omitempty"`
	FinalizedAt       string `json:"finalized_at,omitempty"`
}

// PaymentSourcePayload is the source snapshot inside a
// payment_source.updated event.
type PaymentSourcePayload struct {
	ID            json.Number `json:"id"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	LastFour      string      `json:"last_four,omitempty"`
	ExpiresAt     string      `json:"expires_at,omitempty"`
}

// Raw re-encodes the transaction payload for audit storage.
func (p *TransactionPayload) Raw() json.RawMessage {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	return raw
}
