package types

// GatewayStatus is the status reported by the payment gateway for a
// single charge attempt.
type GatewayStatus string

const (
	GatewayStatusPending  GatewayStatus = "PENDING"
	GatewayStatusApproved GatewayStatus = "APPROVED"
	GatewayStatusDeclined GatewayStatus = "DECLINED"
	GatewayStatusError    GatewayStatus = "ERROR"
	GatewayStatusVoided   GatewayStatus = "VOIDED"
)

// IsTerminal reports whether the gateway will send no further updates
// for this transaction id.
func (s GatewayStatus) IsTerminal() bool {
	switch s {
	case GatewayStatusApproved, GatewayStatusDeclined, GatewayStatusError, GatewayStatusVoided:
		return true
	}
	return false
}

func (s GatewayStatus) IsSuccessful() bool {
	return s == GatewayStatusApproved
}
