package service

import (
	"context"
	"time"

	"github.com/recibohq/recibo/internal/domain/paymentsource"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/types"
	"github.com/recibohq/recibo/internal/validator"
)

// PaymentSourceService registers and manages tokenized payment
// instruments for a workspace.
type PaymentSourceService interface {
	Register(ctx context.Context, req *RegisterPaymentSourceRequest) (*paymentsource.PaymentSource, error)
	Get(ctx context.Context, id string) (*paymentsource.PaymentSource, error)
	List(ctx context.Context, workspaceID string) ([]*paymentsource.PaymentSource, error)
	SetDefault(ctx context.Context, id string) (*paymentsource.PaymentSource, error)
}

// RegisterPaymentSourceRequest tokenizes an instrument at the gateway
// and stores the resulting source.
type RegisterPaymentSourceRequest struct {
	Type          string `json:"type" validate:"required"`
	Token         string `json:"token" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
}

type paymentSourceService struct {
	ServiceParams
}

func NewPaymentSourceService(params ServiceParams) PaymentSourceService {
	return &paymentSourceService{ServiceParams: params}
}

// Register exchanges a one-time card token for a reusable gateway
// source. The merchant acceptance token is fetched fresh per
// registration, as the gateway requires.
func (s *paymentSourceService) Register(ctx context.Context, req *RegisterPaymentSourceRequest) (*paymentsource.PaymentSource, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	if !types.PaymentSourceType(req.Type).Validate() {
		return nil, ierr.NewError("invalid payment source type").
			WithHintf("unknown payment source type %s", req.Type).
			Mark(ierr.ErrValidation)
	}

	acceptance, err := s.Gateway.GetAcceptanceToken(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := s.Gateway.CreatePaymentSource(ctx, &gateway.CreatePaymentSourceRequest{
		Type:            req.Type,
		Token:           req.Token,
		CustomerEmail:   req.CustomerEmail,
		AcceptanceToken: acceptance.Token,
	})
	if err != nil {
		return nil, err
	}

	workspaceID := types.GetWorkspaceID(ctx)

	ps := &paymentsource.PaymentSource{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_SOURCE),
		WorkspaceID:   workspaceID,
		UserID:        types.GetUserID(ctx),
		ExternalID:    remote.ID.String(),
		Type:          types.PaymentSourceType(remote.Type),
		SourceStatus:  types.PaymentSourceStatus(remote.Status),
		Brand:         remote.Brand,
		LastFour:      remote.LastFour,
		ExpiresAt:     remote.ExpiresAt,
		CustomerEmail: remote.CustomerEmail,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}

	// First source for the workspace becomes the default.
	if _, err := s.PaymentSourceRepo.GetDefaultByWorkspace(ctx, workspaceID); ierr.IsNotFound(err) {
		ps.IsDefault = true
	}

	if err := s.PaymentSourceRepo.Create(ctx, ps); err != nil {
		return nil, err
	}

	s.Logger.Infow("registered payment source",
		"payment_source_id", ps.ID,
		"external_payment_source_id", ps.ExternalID,
		"type", ps.Type,
		"is_default", ps.IsDefault,
	)
	return ps, nil
}

func (s *paymentSourceService) Get(ctx context.Context, id string) (*paymentsource.PaymentSource, error) {
	return s.PaymentSourceRepo.Get(ctx, id)
}

func (s *paymentSourceService) List(ctx context.Context, workspaceID string) ([]*paymentsource.PaymentSource, error) {
	return s.PaymentSourceRepo.ListByWorkspace(ctx, workspaceID)
}

// SetDefault makes one source the workspace default; at most one source
// per workspace holds the flag.
func (s *paymentSourceService) SetDefault(ctx context.Context, id string) (*paymentsource.PaymentSource, error) {
	ps, err := s.PaymentSourceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ps.Usable() {
		return nil, ierr.NewError("payment source not available").
			WithHintf("payment source %s is %s", ps.ID, ps.SourceStatus).
			Mark(ierr.ErrValidation)
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentSourceRepo.ClearDefaultByWorkspace(ctx, ps.WorkspaceID); err != nil {
			return err
		}
		ps.IsDefault = true
		ps.UpdatedAt = time.Now().UTC()
		return s.PaymentSourceRepo.Update(ctx, ps)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("default payment source changed",
		"payment_source_id", ps.ID,
		"workspace_id", ps.WorkspaceID,
	)
	return ps, nil
}
