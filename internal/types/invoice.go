package types

// InvoiceStatus is the billing status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusFailed   InvoiceStatus = "failed"
	InvoiceStatusCanceled InvoiceStatus = "canceled"
	InvoiceStatusRefunded InvoiceStatus = "refunded"
)

// MaxInvoiceAttempts bounds dunning retries. An invoice at this count is
// exhausted; the owning subscription gets suspended instead of another
// retry.
const MaxInvoiceAttempts = 3

// IsTerminal reports whether no further billing transitions are allowed.
// A failed invoice is not terminal while retries remain.
func (s InvoiceStatus) IsTerminal() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusCanceled, InvoiceStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo enforces the invoice state machine:
// pending -> {paid, failed, canceled, refunded}; failed -> {paid,
// failed, refunded}; terminal states accept nothing.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case InvoiceStatusPending:
		return target == InvoiceStatusPaid ||
			target == InvoiceStatusFailed ||
			target == InvoiceStatusCanceled ||
			target == InvoiceStatusRefunded
	case InvoiceStatusFailed:
		return target == InvoiceStatusPaid ||
			target == InvoiceStatusFailed ||
			target == InvoiceStatusRefunded
	}
	return false
}
