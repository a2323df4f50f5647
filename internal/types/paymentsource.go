package types

// PaymentSourceType is the kind of tokenized payment instrument.
type PaymentSourceType string

const (
	PaymentSourceTypeCard         PaymentSourceType = "CARD"
	PaymentSourceTypeNequi        PaymentSourceType = "NEQUI"
	PaymentSourceTypeBankTransfer PaymentSourceType = "BANK_TRANSFER"
)

func (t PaymentSourceType) Validate() bool {
	switch t {
	case PaymentSourceTypeCard, PaymentSourceTypeNequi, PaymentSourceTypeBankTransfer:
		return true
	}
	return false
}

// PaymentSourceStatus mirrors the gateway-side status of the token.
type PaymentSourceStatus string

const (
	PaymentSourceStatusAvailable PaymentSourceStatus = "AVAILABLE"
	PaymentSourceStatusPending   PaymentSourceStatus = "PENDING"
	PaymentSourceStatusVoided    PaymentSourceStatus = "VOIDED"
)

// IsAvailable reports whether the source can be charged.
func (s PaymentSourceStatus) IsAvailable() bool {
	return s == PaymentSourceStatusAvailable
}
