package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/internal/orders"
	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/logger"
)

// Service coordinates payment collection for orders. It only moves the
// order's payment_status; driver earnings flow through the completion
// settlement, never through here.
type Service struct {
	repo      RepositoryInterface
	orders    OrderReader
	card      *CardProvider
	redirect  *RedirectProvider
	providers map[Method]Provider
}

// NewService creates a new payment service
func NewService(repo RepositoryInterface, orderReader OrderReader, card *CardProvider, redirect *RedirectProvider) *Service {
	// A nil provider must not land in the map as a typed nil; its method
	// reads as unsupported instead.
	providers := make(map[Method]Provider)
	if card != nil {
		providers[MethodCard] = card
	}
	if redirect != nil {
		providers[MethodRedirect] = redirect
	}
	return &Service{
		repo:      repo,
		orders:    orderReader,
		card:      card,
		redirect:  redirect,
		providers: providers,
	}
}

// Initialize starts payment collection for an unpaid order owned by the
// caller
func (s *Service) Initialize(ctx context.Context, customerID uuid.UUID, req *InitializeRequest) (*Intent, error) {
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to get order")
	}
	if order == nil || order.CustomerID != customerID {
		return nil, common.NewNotFoundError("order not found", nil)
	}
	if order.PaymentStatus == orders.PaymentStatusPaid {
		return nil, common.NewInvalidStateError("order is already paid")
	}

	provider, ok := s.providers[req.Method]
	if !ok {
		return nil, common.NewBadRequestError("unsupported payment method", nil)
	}

	amount := order.Amount + order.TipAmount
	intentID := uuid.New()
	metadata := map[string]string{
		"order_id":   order.ID.String(),
		"order_code": order.Code,
	}

	result, err := provider.Initialize(ctx, intentID.String(), amount, order.Currency, metadata)
	if err != nil {
		return nil, common.NewServiceUnavailableError("payment gateway unavailable", err)
	}

	now := time.Now()
	intent := &Intent{
		ID:           intentID,
		OrderID:      order.ID,
		Provider:     provider.Name(),
		Reference:    result.Reference,
		Amount:       amount,
		Currency:     order.Currency,
		Status:       IntentPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		ClientSecret: result.ClientSecret,
		RedirectURL:  result.RedirectURL,
	}
	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		return nil, common.NewInternalServerError("failed to record payment intent")
	}
	if err := s.repo.MarkOrderPaymentPending(ctx, order.ID); err != nil {
		return nil, common.NewInternalServerError("failed to update order payment status")
	}

	logger.WithContext(ctx).Info("Payment initialized",
		zap.String("order_id", order.ID.String()),
		zap.String("provider", provider.Name()),
		zap.String("reference", result.Reference),
	)
	return intent, nil
}

// Verify re-checks a charge with its gateway and settles the outcome
func (s *Service) Verify(ctx context.Context, reference string) (*Intent, error) {
	intent, err := s.repo.GetIntentByReference(ctx, reference)
	if err != nil {
		return nil, common.NewInternalServerError("failed to get payment intent")
	}
	if intent == nil {
		return nil, common.NewNotFoundError("payment intent not found", nil)
	}

	provider, ok := s.providers[Method(intent.Provider)]
	if !ok {
		return nil, common.NewInternalServerError(
			fmt.Sprintf("no provider registered for %s", intent.Provider))
	}

	result, err := provider.Verify(ctx, reference)
	if err != nil {
		return nil, common.NewServiceUnavailableError("payment gateway unavailable", err)
	}

	return s.settle(ctx, intent, result.Status)
}

// HandleCardWebhook settles an intent from a signed Stripe event
func (s *Service) HandleCardWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if s.card == nil {
		return common.NewBadRequestError("card payments are not configured", nil)
	}
	result, err := s.card.ParseWebhook(payload, signatureHeader)
	if err != nil {
		return common.NewUnauthorizedError("invalid webhook signature")
	}
	if result == nil {
		return nil
	}

	intent, err := s.repo.GetIntentByReference(ctx, result.Reference)
	if err != nil {
		return common.NewInternalServerError("failed to get payment intent")
	}
	if intent == nil {
		logger.WithContext(ctx).Warn("Webhook for unknown payment reference",
			zap.String("reference", result.Reference))
		return nil
	}

	_, err = s.settle(ctx, intent, result.Status)
	return err
}

func (s *Service) settle(ctx context.Context, intent *Intent, status IntentStatus) (*Intent, error) {
	orderStatus := string(orders.PaymentStatusPending)
	switch status {
	case IntentSucceeded:
		orderStatus = string(orders.PaymentStatusPaid)
	case IntentFailed:
		orderStatus = string(orders.PaymentStatusFailed)
	}

	if err := s.repo.SettleIntent(ctx, intent.ID, intent.OrderID, status, orderStatus); err != nil {
		return nil, common.NewInternalServerError("failed to settle payment intent")
	}

	if status != intent.Status {
		logger.WithContext(ctx).Info("Payment settled",
			zap.String("order_id", intent.OrderID.String()),
			zap.String("reference", intent.Reference),
			zap.String("status", string(status)),
		)
	}

	intent.Status = status
	intent.UpdatedAt = time.Now()
	return intent, nil
}
