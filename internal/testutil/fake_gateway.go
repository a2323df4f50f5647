package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/gateway"
)

// FakeGateway implements gateway.Client for tests. The next transaction
// status is scripted per test; created transactions and requests are
// recorded for assertions.
type FakeGateway struct {
	mu sync.Mutex

	// NextTransactionStatus is returned on the next CreateTransaction.
	NextTransactionStatus string
	// FailNextCreate makes the next CreateTransaction return an error.
	FailNextCreate bool

	PaymentSources map[string]*gateway.PaymentSource

	CreatedTransactions []*gateway.CreateTransactionRequest
	seq                 int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		NextTransactionStatus: "PENDING",
		PaymentSources:        make(map[string]*gateway.PaymentSource),
	}
}

func (g *FakeGateway) CreateTransaction(ctx context.Context, req *gateway.CreateTransactionRequest) (*gateway.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailNextCreate {
		g.FailNextCreate = false
		return nil, ierr.NewError("gateway unavailable").
			WithHint("simulated gateway outage").
			Mark(ierr.ErrHTTPClient)
	}

	g.seq++
	txn := &gateway.Transaction{
		ID:              fmt.Sprintf("txn_ext_%d", g.seq),
		AmountInCents:   req.AmountInCents,
		Currency:        req.Currency,
		Reference:       req.Reference,
		Status:          g.NextTransactionStatus,
		PaymentSourceID: req.PaymentSourceID,
		CustomerEmail:   req.CustomerEmail,
	}
	g.CreatedTransactions = append(g.CreatedTransactions, req)
	return txn, nil
}

func (g *FakeGateway) GetTransaction(ctx context.Context, transactionID string) (*gateway.Transaction, error) {
	return nil, ierr.NewError("transaction not found").
		WithHintf("no gateway transaction %s", transactionID).
		Mark(ierr.ErrNotFound)
}

func (g *FakeGateway) GetTransactionByReference(ctx context.Context, reference string) (*gateway.Transaction, error) {
	return nil, ierr.NewError("transaction not found").
		WithHintf("no gateway transaction with reference %s", reference).
		Mark(ierr.ErrNotFound)
}

func (g *FakeGateway) CreatePaymentSource(ctx context.Context, req *gateway.CreatePaymentSourceRequest) (*gateway.PaymentSource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	ps := &gateway.PaymentSource{
		ID:            jsonNumber(g.seq),
		Type:          req.Type,
		Status:        "AVAILABLE",
		CustomerEmail: req.CustomerEmail,
		LastFour:      "4242",
	}
	g.PaymentSources[ps.ID.String()] = ps
	return ps, nil
}

func (g *FakeGateway) GetPaymentSource(ctx context.Context, paymentSourceID string) (*gateway.PaymentSource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ps, ok := g.PaymentSources[paymentSourceID]; ok {
		return ps, nil
	}
	return nil, ierr.NewError("payment source not found").
		WithHintf("no gateway payment source %s", paymentSourceID).
		Mark(ierr.ErrNotFound)
}

func (g *FakeGateway) GetAcceptanceToken(ctx context.Context) (*gateway.AcceptanceToken, error) {
	return &gateway.AcceptanceToken{
		Token:     "acceptance_test_token",
		Permalink: "https://example.com/terms",
		Type:      "END_USER_POLICY",
	}, nil
}
