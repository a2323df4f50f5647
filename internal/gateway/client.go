package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/recibohq/recibo/internal/config"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/httpclient"
	"github.com/recibohq/recibo/internal/logger"
)

// Client talks to the payment gateway's REST API.
type Client interface {
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*Transaction, error)
	CreatePaymentSource(ctx context.Context, req *CreatePaymentSourceRequest) (*PaymentSource, error)
	GetPaymentSource(ctx context.Context, paymentSourceID string) (*PaymentSource, error)
	GetAcceptanceToken(ctx context.Context) (*AcceptanceToken, error)
}

type client struct {
	http       httpclient.Client
	baseURL    string
	privateKey string
	publicKey  string
	logger     *logger.Logger
}

func NewClient(cfg *config.Configuration, http httpclient.Client, logger *logger.Logger) Client {
	return &client{
		http:       http,
		baseURL:    cfg.Gateway.BaseURL,
		privateKey: cfg.Gateway.PrivateKey,
		publicKey:  cfg.Gateway.PublicKey,
		logger:     logger,
	}
}

func (c *client) send(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("failed to encode gateway request").
				Mark(ierr.ErrSystem)
		}
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method: method,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.privateKey,
		},
		Body: payload,
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			c.logger.Errorw("gateway request failed",
				"method", method,
				"path", path,
				"status_code", httpErr.StatusCode,
			)
		}
		return err
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return ierr.WithError(err).
				WithHint("unexpected gateway response payload").
				Mark(ierr.ErrHTTPClient)
		}
	}

	return nil
}

func (c *client) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	var env transactionEnvelope
	if err := c.send(ctx, http.MethodPost, "/transactions", req, &env); err != nil {
		return nil, err
	}

	c.logger.Infow("created gateway transaction",
		"transaction_id", env.Data.ID,
		"reference", req.Reference,
		"amount_in_cents", req.AmountInCents,
	)
	return &env.Data, nil
}

func (c *client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	var env transactionEnvelope
	path := fmt.Sprintf("/transactions/%s", url.PathEscape(transactionID))
	if err := c.send(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// GetTransactionByReference returns the most recent transaction created
// under reference, or a not found error when none exists.
func (c *client) GetTransactionByReference(ctx context.Context, reference string) (*Transaction, error) {
	var env transactionListEnvelope
	path := "/transactions?reference=" + url.QueryEscape(reference)
	if err := c.send(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}

	if len(env.Data) == 0 {
		return nil, ierr.NewError("transaction not found").
			WithHintf("no gateway transaction with reference %s", reference).
			Mark(ierr.ErrNotFound)
	}
	return &env.Data[0], nil
}

func (c *client) CreatePaymentSource(ctx context.Context, req *CreatePaymentSourceRequest) (*PaymentSource, error) {
	var env paymentSourceEnvelope
	if err := c.send(ctx, http.MethodPost, "/payment_sources", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *client) GetPaymentSource(ctx context.Context, paymentSourceID string) (*PaymentSource, error) {
	var env paymentSourceEnvelope
	path := fmt.Sprintf("/payment_sources/%s", url.PathEscape(paymentSourceID))
	if err := c.send(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *client) GetAcceptanceToken(ctx context.Context) (*AcceptanceToken, error) {
	var env merchantEnvelope
	path := fmt.Sprintf("/merchants/%s", url.PathEscape(c.publicKey))
	if err := c.send(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data.PresignedAcceptance, nil
}
