package gateway

import "encoding/json"

// Transaction is the gateway's view of a charge.
type Transaction struct {
	ID                string `json:"id"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Currency          string `json:"currency"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	StatusMessage     string `json:"status_message"`
	PaymentMethodType string `json:"payment_method_type"`
	PaymentSourceID   string `json:"payment_source_id,omitempty"`
	CustomerEmail     string `json:"customer_email"`
	CreatedAt         string `json:"created_at"`
	FinalizedAt       string `json:"finalized_at,omitempty"`
}

// PaymentSource is a tokenized instrument registered at the gateway.
type PaymentSource struct {
	ID            json.Number `json:"id"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	CustomerEmail string      `json:"customer_email"`
	Brand         string      `json:"brand,omitempty"`
	LastFour      string      `json:"last_four,omitempty"`
	ExpiresAt     string      `json:"expires_at,omitempty"`
	CreatedAt     string      `json:"created_at"`
}

// AcceptanceToken is the merchant's presigned terms-of-service token,
// required when registering a payment source.
type AcceptanceToken struct {
	Token     string `json:"acceptance_token"`
	Permalink string `json:"permalink"`
	Type      string `json:"type"`
}

// CreateTransactionRequest starts a charge against a stored source.
type CreateTransactionRequest struct {
	AmountInCents   int64         `json:"amount_in_cents"`
	Currency        string        `json:"currency"`
	CustomerEmail   string        `json:"customer_email"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentSourceID string        `json:"payment_source_id,omitempty"`
	Reference       string        `json:"reference"`
	RedirectURL     string        `json:"redirect_url,omitempty"`
	Recurrent       bool          `json:"recurrent,omitempty"`
}

type PaymentMethod struct {
	Type         string `json:"type"`
	Installments int    `json:"installments,omitempty"`
}

// CreatePaymentSourceRequest tokenizes a payment instrument.
type CreatePaymentSourceRequest struct {
	Type            string `json:"type"`
	Token           string `json:"token"`
	CustomerEmail   string `json:"customer_email"`
	AcceptanceToken string `json:"acceptance_token"`
}

type transactionEnvelope struct {
	Data Transaction `json:"data"`
}

type transactionListEnvelope struct {
	Data []Transaction `json:"data"`
}

type paymentSourceEnvelope struct {
	Data PaymentSource `json:"data"`
}

type merchantEnvelope struct {
	Data struct {
		PresignedAcceptance AcceptanceToken `json:"presigned_acceptance"`
	} `json:"data"`
}
