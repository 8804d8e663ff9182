package drivers

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/internal/kyc"
	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/config"
	"github.com/haulport/logistics-backend/pkg/logger"
)

// Service handles driver state: online presence, KYC, and the capacity
// tracker that derives availability from active order count.
type Service struct {
	repo     RepositoryInterface
	presence PresenceStore
	verifier kyc.Verifier
	business config.BusinessConfig
}

// NewService creates a new driver service
func NewService(repo RepositoryInterface, presence PresenceStore, verifier kyc.Verifier, business config.BusinessConfig) *Service {
	return &Service{repo: repo, presence: presence, verifier: verifier, business: business}
}

// ComputeAvailability derives the availability classification. Pure; the
// decision table is the single place claim gating and recomputes agree on.
func ComputeAvailability(isOnline bool, activeCount, maxActiveOrders int) Availability {
	if !isOnline {
		return AvailabilityOffline
	}
	if activeCount >= maxActiveOrders {
		return AvailabilityBusy
	}
	return AvailabilityAvailable
}

// MaxActiveOrders resolves the driver's concurrent order limit, falling back
// to the platform default for drivers without an explicit override.
func (s *Service) MaxActiveOrders(d *Driver) int {
	if d != nil && d.MaxActiveOrders > 0 {
		return d.MaxActiveOrders
	}
	if s.business.MaxActiveOrders > 0 {
		return s.business.MaxActiveOrders
	}
	return 1
}

// GetProfile returns the driver profile for a user account
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Driver, error) {
	driver, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to load driver")
	}
	if driver == nil {
		return nil, common.NewNotFoundError("driver not found", nil)
	}
	return driver, nil
}

// SetOnline toggles the driver's online flag and presence heartbeat, then
// recomputes availability.
func (s *Service) SetOnline(ctx context.Context, userID uuid.UUID, online bool) (*Driver, error) {
	driver, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetOnline(ctx, userID, online); err != nil {
		return nil, common.NewInternalServerError("failed to update online status")
	}

	if s.presence != nil {
		if online {
			_ = s.presence.Heartbeat(ctx, userID)
		} else {
			_ = s.presence.SetOffline(ctx, userID)
		}
	}

	driver.IsOnline = online
	availability, err := s.RecomputeAvailability(ctx, driver)
	if err != nil {
		return nil, err
	}
	driver.Availability = availability

	logger.WithContext(ctx).Info("Driver online status changed",
		zap.String("driver_id", userID.String()),
		zap.Bool("online", online),
		zap.String("availability", string(availability)),
	)

	return driver, nil
}

// Heartbeat refreshes the driver's presence TTL
func (s *Service) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if s.presence == nil {
		return nil
	}
	return s.presence.Heartbeat(ctx, userID)
}

// EffectiveOnline reports whether the driver is online for gating purposes:
// the persisted flag must be set and, when a presence store is configured,
// the heartbeat must still be alive. A driver whose app died keeps is_online
// until the TTL expires this check. Presence errors fall back to the
// persisted flag.
func (s *Service) EffectiveOnline(ctx context.Context, driver *Driver) bool {
	if driver == nil || !driver.IsOnline {
		return false
	}
	if s.presence == nil {
		return true
	}
	alive, err := s.presence.IsOnline(ctx, driver.UserID)
	if err != nil {
		logger.WithContext(ctx).Warn("presence lookup failed",
			zap.String("driver_id", driver.UserID.String()), zap.Error(err))
		return true
	}
	return alive
}

// RecomputeAvailability re-derives and persists the driver's availability
// from the current active order count. Called after every claim and every
// completion; between those points readers may observe a stale value.
func (s *Service) RecomputeAvailability(ctx context.Context, driver *Driver) (Availability, error) {
	activeCount, err := s.repo.CountActiveOrders(ctx, driver.UserID)
	if err != nil {
		return "", common.NewInternalServerError("failed to count active orders")
	}

	availability := ComputeAvailability(s.EffectiveOnline(ctx, driver), activeCount, s.MaxActiveOrders(driver))
	if err := s.repo.UpdateAvailability(ctx, driver.UserID, availability); err != nil {
		return "", common.NewInternalServerError("failed to update availability")
	}
	return availability, nil
}

// RecomputeAvailabilityByUserID loads the driver and recomputes availability.
// Convenience for callers that only hold the user id.
func (s *Service) RecomputeAvailabilityByUserID(ctx context.Context, userID uuid.UUID) error {
	driver, err := s.repo.GetByUserID(ctx, userID)
	if err != nil || driver == nil {
		return common.NewNotFoundError("driver not found", err)
	}
	_, err = s.RecomputeAvailability(ctx, driver)
	return err
}

// SubmitKYC forwards identity inputs to the verification provider and stores
// the outcome on the driver row.
func (s *Service) SubmitKYC(ctx context.Context, userID uuid.UUID, req *SubmitKYCRequest) (*Driver, error) {
	driver, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if driver.KYCStatus == KYCStatusApproved {
		return driver, nil
	}

	inputs := map[string]string{
		"id_number": req.IDNumber,
		"id_type":   req.IDType,
	}
	if req.LicenseNumber != "" {
		inputs["license_number"] = req.LicenseNumber
	}

	result, err := s.verifier.Verify(ctx, inputs)
	if err != nil {
		return nil, common.NewServiceUnavailableError("verification provider unavailable", err)
	}

	status := KYCStatusRejected
	if result.Status == kyc.StatusVerified {
		status = KYCStatusApproved
	}

	if err := s.repo.UpdateKYC(ctx, userID, status, result.Reference); err != nil {
		return nil, common.NewInternalServerError("failed to store verification result")
	}

	driver.KYCStatus = status
	driver.KYCReference = &result.Reference

	logger.WithContext(ctx).Info("Driver KYC processed",
		zap.String("driver_id", userID.String()),
		zap.String("status", string(status)),
		zap.String("reference", result.Reference),
	)

	return driver, nil
}
