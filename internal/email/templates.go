package email

import "fmt"

// Template is a rendered email ready to send.
type Template struct {
	Subject string
	HTML    string
}

// PaymentSucceededTemplate confirms a successful charge.
func PaymentSucceededTemplate(invoiceID string, amountInCents int64, periodEnd string) Template {
	return Template{
		Subject: fmt.Sprintf("Payment received - Invoice %s", invoiceID),
		HTML: fmt.Sprintf(`<h2>Payment received</h2>
<p>Your payment of %s was processed successfully.</p>
<p>Your subscription is active until <strong>%s</strong>.</p>
<p>Invoice: %s</p>`, formatCents(amountInCents), periodEnd, invoiceID),
	}
}

// PaymentFailedTemplate warns about a declined charge and the retry
// schedule position.
func PaymentFailedTemplate(invoiceID string, attempt, maxAttempts int, nextRetryAt string) Template {
	return Template{
		Subject: fmt.Sprintf("Payment failed - Attempt %d of %d", attempt, maxAttempts),
		HTML: fmt.Sprintf(`<h2>We could not process your payment</h2>
<p>Attempt %d of %d for invoice %s was declined.</p>
<p>We will retry automatically on <strong>%s</strong>. Please make sure your payment method has sufficient funds.</p>`,
			attempt, maxAttempts, invoiceID, nextRetryAt),
	}
}

// SubscriptionSuspendedTemplate announces suspension after exhausted
// retries.
func SubscriptionSuspendedTemplate(invoiceID string) Template {
	return Template{
		Subject: "Subscription suspended - Action required",
		HTML: fmt.Sprintf(`<h2>Your subscription has been suspended</h2>
<p>All payment attempts for invoice %s failed. Your subscription is now past due.</p>
<p>Update your payment method to restore access.</p>`, invoiceID),
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
