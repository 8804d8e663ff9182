package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/internal/drivers"
	"github.com/haulport/logistics-backend/internal/events"
	"github.com/haulport/logistics-backend/internal/settlement"
	"github.com/haulport/logistics-backend/internal/wallet"
	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/config"
	"github.com/haulport/logistics-backend/pkg/logger"
)

// Service implements the order lifecycle state machine
type Service struct {
	repo      RepositoryInterface
	counter   ActiveCounter
	driverSvc DriverService
	publisher events.Publisher
	business  config.BusinessConfig
}

// NewService creates a new order service
func NewService(repo RepositoryInterface, counter ActiveCounter, driverSvc DriverService, publisher events.Publisher, business config.BusinessConfig) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		repo:      repo,
		counter:   counter,
		driverSvc: driverSvc,
		publisher: publisher,
		business:  business,
	}
}

// Create creates a pending order for a customer
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *CreateOrderRequest) (*Order, error) {
	now := time.Now()
	order := &Order{
		ID:            uuid.New(),
		Code:          generateCode(req.Category, now),
		Category:      req.Category,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		CustomerID:    customerID,
		Amount:        settlement.Round2(req.Amount),
		TipAmount:     settlement.Round2(req.TipAmount),
		Currency:      s.business.Currency,
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		DropoffLat:    req.DropoffLat,
		DropoffLng:    req.DropoffLng,
		Metadata:      req.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, ErrCodeExhausted) {
			return nil, common.NewInternalServerError("could not allocate order code")
		}
		return nil, common.NewInternalServerError("failed to create order")
	}

	logger.WithContext(ctx).Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("code", order.Code),
		zap.String("category", string(order.Category)),
		zap.Float64("amount", order.Amount),
	)

	return order, nil
}

// Claim assigns a pending order to the calling driver. Preconditions: active
// driver profile, online, KYC approved, under the concurrent order limit.
// The assignment itself is a single conditional update; losing that race is
// a normal outcome surfaced as a conflict, not a retryable failure.
func (s *Service) Claim(ctx context.Context, orderID, driverID uuid.UUID) (*Order, error) {
	driver, err := s.driverSvc.GetProfile(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if !driver.AccountActive {
		return nil, common.NewForbiddenError("driver account is deactivated")
	}
	if !s.driverSvc.EffectiveOnline(ctx, driver) {
		return nil, common.NewInvalidStateError("driver must be online to claim orders")
	}
	if driver.KYCStatus != drivers.KYCStatusApproved {
		return nil, common.NewForbiddenError("driver identity verification is not approved")
	}

	activeCount, err := s.counter.CountActiveOrders(ctx, driverID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check driver capacity")
	}
	if activeCount >= s.driverSvc.MaxActiveOrders(driver) {
		return nil, common.NewCapacityExceededError("driver already at max concurrent orders")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load order")
	}
	if order == nil {
		return nil, common.NewNotFoundError("order not found", nil)
	}

	claimed, err := s.repo.Claim(ctx, orderID, driverID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to claim order")
	}
	if !claimed {
		claimConflictsTotal.WithLabelValues(string(order.Category)).Inc()
		return nil, common.NewConflictError("order is no longer available")
	}

	ordersClaimedTotal.WithLabelValues(string(order.Category)).Inc()

	if err := s.driverSvc.RecomputeAvailabilityByUserID(ctx, driverID); err != nil {
		logger.WithContext(ctx).Warn("availability recompute failed after claim",
			zap.String("driver_id", driverID.String()), zap.Error(err))
	}

	order, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.SubjectOrderClaimed, order)

	logger.WithContext(ctx).Info("Order claimed",
		zap.String("order_id", orderID.String()),
		zap.String("driver_id", driverID.String()),
	)

	return order, nil
}

// Start transitions the caller's assigned order to in_progress. Calling it
// on an order already in progress is idempotent and succeeds without
// mutation.
func (s *Service) Start(ctx context.Context, orderID, driverID uuid.UUID) (*Order, error) {
	order, err := s.getOwnedByDriver(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}

	if order.Status == StatusInProgress {
		return order, nil
	}

	started, err := s.repo.Start(ctx, orderID, driverID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to start order")
	}
	if !started {
		// Lost a race or illegal state; re-read to tell which.
		order, err = s.reload(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status == StatusInProgress {
			return order, nil
		}
		return nil, common.NewInvalidStateError(fmt.Sprintf("cannot start order in status %s", order.Status))
	}

	order, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.SubjectOrderStarted, order)
	return order, nil
}

// Complete finishes the caller's order: settles the amount, credits the
// driver's wallet, and flips the status, all atomically. A replayed request
// after a prior success returns the completed order without re-crediting.
func (s *Service) Complete(ctx context.Context, orderID, driverID uuid.UUID) (*Order, error) {
	order, err := s.getOwnedByDriver(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}

	// Replay guard: a prior completion already credited. The unique
	// constraint on the ledger's order reference is the real guarantee;
	// this check just avoids a doomed write.
	credited, err := s.repo.HasCreditForOrder(ctx, orderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check ledger")
	}
	if credited {
		return order, nil
	}

	if !order.Status.Active() {
		return nil, common.NewInvalidStateError(fmt.Sprintf("cannot complete order in status %s", order.Status))
	}

	breakdown := settlement.Calculate(order.Amount, order.TipAmount, s.business.PlatformFeePercent)
	note := fmt.Sprintf("Earnings for order %s", order.Code)

	txn, err := s.repo.CompleteAndCredit(ctx, orderID, driverID,
		breakdown.PlatformFee, breakdown.DriverEarning, breakdown.CreditAmount, note)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrDuplicateReference):
			// A concurrent completion won between our check and the write.
			return s.reload(ctx, orderID)
		case errors.Is(err, pgx.ErrNoRows):
			order, rerr := s.reload(ctx, orderID)
			if rerr == nil && order.Status == StatusCompleted {
				return order, nil
			}
			return nil, common.NewInvalidStateError("order is not in a completable state")
		default:
			return nil, common.NewInternalServerError("failed to complete order")
		}
	}

	ordersCompletedTotal.WithLabelValues(string(order.Category)).Inc()

	if err := s.driverSvc.RecomputeAvailabilityByUserID(ctx, driverID); err != nil {
		logger.WithContext(ctx).Warn("availability recompute failed after completion",
			zap.String("driver_id", driverID.String()), zap.Error(err))
	}

	order, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.SubjectOrderCompleted, order)

	logger.WithContext(ctx).Info("Order completed",
		zap.String("order_id", orderID.String()),
		zap.String("driver_id", driverID.String()),
		zap.Float64("platform_fee", breakdown.PlatformFee),
		zap.Float64("driver_earning", breakdown.DriverEarning),
		zap.Float64("credited", txn.Amount),
	)

	return order, nil
}

// Cancel cancels the customer's own order; legal only while pending
func (s *Service) Cancel(ctx context.Context, orderID, customerID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load order")
	}
	// Ownership mismatch is indistinguishable from absence to the caller.
	if order == nil || order.CustomerID != customerID {
		return nil, common.NewNotFoundError("order not found", nil)
	}

	cancelled, err := s.repo.Cancel(ctx, orderID, customerID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to cancel order")
	}
	if !cancelled {
		return nil, common.NewInvalidStateError(fmt.Sprintf("cannot cancel order in status %s", order.Status))
	}

	order, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.SubjectOrderCancelled, order)
	return order, nil
}

// Get returns an order visible to the caller (owner, assignee, or admin)
func (s *Service) Get(ctx context.Context, orderID, callerID uuid.UUID, isAdmin bool) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load order")
	}
	if order == nil {
		return nil, common.NewNotFoundError("order not found", nil)
	}

	if !isAdmin && order.CustomerID != callerID &&
		(order.DriverID == nil || *order.DriverID != callerID) {
		return nil, common.NewNotFoundError("order not found", nil)
	}

	return order, nil
}

// ListOpen lists claimable orders for drivers
func (s *Service) ListOpen(ctx context.Context, filters *ListFilters, limit, offset int) ([]*Order, int64, error) {
	orders, total, err := s.repo.ListOpen(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list open orders")
	}
	return orders, total, nil
}

// ListByCustomer lists a customer's order history
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	orders, total, err := s.repo.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list orders")
	}
	return orders, total, nil
}

// ListByDriver lists a driver's order history
func (s *Service) ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	orders, total, err := s.repo.ListByDriver(ctx, driverID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list orders")
	}
	return orders, total, nil
}

func (s *Service) getOwnedByDriver(ctx context.Context, orderID, driverID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load order")
	}
	if order == nil {
		return nil, common.NewNotFoundError("order not found", nil)
	}
	if order.DriverID == nil || *order.DriverID != driverID {
		return nil, common.NewForbiddenError("order is not assigned to you")
	}
	return order, nil
}

func (s *Service) reload(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, common.NewInternalServerError("failed to reload order")
	}
	return order, nil
}
