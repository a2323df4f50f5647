package email

import (
	"context"

	"github.com/recibohq/recibo/internal/logger"
)

// Notifier sends billing notifications best effort. Failures are logged
// and never returned; a down email provider must not affect payment
// processing.
type Notifier struct {
	client *Client
	logger *logger.Logger
}

func NewNotifier(client *Client, logger *logger.Logger) *Notifier {
	return &Notifier{
		client: client,
		logger: logger,
	}
}

// Notify renders nothing itself; it sends an already-rendered template.
func (n *Notifier) Notify(ctx context.Context, to string, tpl Template) {
	if to == "" {
		return
	}

	if !n.client.IsEnabled() {
		n.logger.Debugw("email client is disabled, skipping notification",
			"to", to,
			"subject", tpl.Subject,
		)
		return
	}

	messageID, err := n.client.Send(ctx, to, tpl.Subject, tpl.HTML)
	if err != nil {
		n.logger.Errorw("failed to send notification email",
			"error", err,
			"to", to,
			"subject", tpl.Subject,
		)
		return
	}

	n.logger.Infow("notification email sent",
		"message_id", messageID,
		"to", to,
		"subject", tpl.Subject,
	)
}
