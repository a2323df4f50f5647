package gateway

import (
	"fmt"
	"strings"

	"github.com/recibohq/recibo/internal/types"
)

// NewSubscriptionReference returns a fresh reference for a first charge,
// e.g. SUB-XY12A8Q.
func NewSubscriptionReference() string {
	return types.GenerateShortIDWithPrefix(types.REFERENCE_PREFIX_SUBSCRIPTION)
}

// NewInvoiceReference returns a fresh reference for a renewal or
// proration invoice.
func NewInvoiceReference() string {
	return types.GenerateShortIDWithPrefix(types.REFERENCE_PREFIX_INVOICE)
}

// RetryReference derives the reference for a dunning retry. It is
// deterministic in (invoice, attempt) so a crashed run that is replayed
// reuses the same reference instead of double charging.
func RetryReference(invoiceID string, attempt int) string {
	short := invoiceID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s%s-%d", types.REFERENCE_PREFIX_RETRY, short, attempt)
}

// IsRetryReference reports whether a reference was minted for a dunning
// retry charge.
func IsRetryReference(reference string) bool {
	return strings.HasPrefix(reference, types.REFERENCE_PREFIX_RETRY)
}
