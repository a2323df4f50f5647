package gateway

import (
	"strconv"
	"time"

	"github.com/recibohq/recibo/internal/config"
)

// CheckoutParams describes a hosted web checkout session for a plan
// purchase.
type CheckoutParams struct {
	AmountInCents  int64
	CustomerEmail  string
	CustomerName   string
	RedirectURL    string
	ExpirationTime string
}

// DefaultCheckoutExpiration is how long a hosted checkout stays payable.
const DefaultCheckoutExpiration = 15 * time.Minute

// BuildCheckoutData returns the form fields for the gateway's hosted web
// checkout, signed with the integrity secret. The reference is generated
// here and must be persisted on the pending invoice so the webhook can
// resolve it later.
func BuildCheckoutData(cfg *config.Configuration, params CheckoutParams) (reference string, data map[string]string) {
	reference = NewSubscriptionReference()

	signature := IntegritySignature(
		reference,
		params.AmountInCents,
		cfg.Gateway.Currency,
		params.ExpirationTime,
		cfg.Gateway.IntegritySecret,
	)

	redirectURL := params.RedirectURL
	if redirectURL == "" {
		redirectURL = cfg.Gateway.RedirectURL
	}

	data = map[string]string{
		"public-key":          cfg.Gateway.PublicKey,
		"currency":            cfg.Gateway.Currency,
		"amount-in-cents":     strconv.FormatInt(params.AmountInCents, 10),
		"reference":           reference,
		"signature:integrity": signature,
		"redirect-url":        redirectURL,
		"customer-data:email": params.CustomerEmail,
	}
	if params.CustomerName != "" {
		data["customer-data:full-name"] = params.CustomerName
	}
	if params.ExpirationTime != "" {
		data["expiration-time"] = params.ExpirationTime
	}

	return reference, data
}
