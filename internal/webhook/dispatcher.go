package webhook

import (
	"context"

	"github.com/recibohq/recibo/internal/logger"
)

// TransactionProcessor applies a transaction.updated event to stored
// billing state.
type TransactionProcessor interface {
	ProcessTransactionEvent(ctx context.Context, payload *TransactionPayload) error
}

// PaymentSourceProcessor applies a payment_source.updated event.
type PaymentSourceProcessor interface {
	ProcessPaymentSourceEvent(ctx context.Context, payload *PaymentSourcePayload) error
}

// Dispatcher routes a signature-verified event to exactly one handler.
// Once an event is authenticated the sender always gets an ack: handler
// errors are logged and swallowed here so that sender-side redelivery
// does not amplify side effects that idempotent state already absorbed.
type Dispatcher struct {
	transactions   TransactionProcessor
	paymentSources PaymentSourceProcessor
	logger         *logger.Logger
}

func NewDispatcher(
	transactions TransactionProcessor,
	paymentSources PaymentSourceProcessor,
	logger *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		transactions:   transactions,
		paymentSources: paymentSources,
		logger:         logger,
	}
}

// Dispatch processes one event. Unknown event types are logged and
// acknowledged, never errored.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) {
	switch event.Event {
	case EventTransactionUpdated:
		if event.Data.Transaction == nil {
			d.logger.Warnw("transaction.updated event without transaction payload")
			return
		}
		if err := d.transactions.ProcessTransactionEvent(ctx, event.Data.Transaction); err != nil {
			d.logger.Errorw("failed to process transaction event",
				"error", err,
				"external_transaction_id", event.Data.Transaction.ID,
				"reference", event.Data.Transaction.Reference,
			)
		}
	case EventPaymentSourceUpdated:
		if event.Data.PaymentSource == nil {
			d.logger.Warnw("payment_source.updated event without payment source payload")
			return
		}
		if err := d.paymentSources.ProcessPaymentSourceEvent(ctx, event.Data.PaymentSource); err != nil {
			d.logger.Errorw("failed to process payment source event",
				"error", err,
				"external_payment_source_id", event.Data.PaymentSource.ID,
			)
		}
	default:
		d.logger.Infow("ignoring unhandled webhook event type", "event", event.Event)
	}
}
