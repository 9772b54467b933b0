package dispensa

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promoworks/dispensa/internal/config"
	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/countdown"
	"github.com/promoworks/dispensa/pkg/couponcode"
	"github.com/promoworks/dispensa/pkg/logger"
)

// Dispensa is the main struct for the coupon distribution service.
// It arbitrates claims, evaluates cooldowns and keeps the pool stocked.
type Dispensa struct {
	logger *logger.Logger
	config *config.Config

	repo    models.Repository
	alerter models.AlertService
}

// NewDispensa creates a new Dispensa instance
func NewDispensa(
	repo models.Repository,
	alerter models.AlertService,
	logger *logger.Logger,
	config *config.Config,
) models.DispensaI {
	return &Dispensa{
		repo:    repo,
		alerter: alerter,
		logger:  logger,
		config:  config,
	}
}

// Bootstrap seeds an empty store with the configured initial batch and then
// enforces the stock floor once. It runs before the API starts serving.
func (d *Dispensa) Bootstrap() error {
	total, err := d.repo.CountAllCoupons()
	if err != nil {
		d.logger.Error("Failed to count coupons during bootstrap", "error", err)
		return err
	}

	now := time.Now()
	if total == 0 && d.config.InitialSeedCount > 0 {
		d.logger.Info("Empty store detected, seeding initial coupons", "count", d.config.InitialSeedCount)
		batch, err := d.generateCoupons(0, d.config.InitialSeedCount, now.UnixMilli())
		if err != nil {
			d.logger.Error("Failed to generate seed batch", "error", err)
			return err
		}
		if err := d.repo.InsertCoupons(batch); err != nil {
			d.logger.Error("Failed to seed initial coupons", "error", err)
			return err
		}
	}

	if _, err := d.EnsureStock(now); err != nil {
		return err
	}

	return nil
}

// Evaluate applies the cooldown rule for the identity pair without writing
// anything. The stricter of the two gates wins: whichever tracker leaves the
// larger positive remaining time controls the outcome.
func (d *Dispensa) Evaluate(address, sessionToken string, now time.Time) (*models.EligibilityResult, error) {
	nowMs := now.UnixMilli()

	addressTracker, err := d.repo.GetClaimTracker(address, models.KindAddress)
	if err != nil {
		d.logger.Error("Failed to get address tracker", "error", err)
		return nil, err
	}

	var sessionTracker *models.ClaimTracker
	if sessionToken != "" {
		sessionTracker, err = d.repo.GetClaimTracker(sessionToken, models.KindSession)
		if err != nil {
			d.logger.Error("Failed to get session tracker", "error", err)
			return nil, err
		}
	}

	result := &models.EligibilityResult{CanClaim: true}

	addressRemaining := trackerRemaining(addressTracker, nowMs)
	sessionRemaining := trackerRemaining(sessionTracker, nowMs)

	gating := addressTracker
	gatingKind := models.KindAddress
	remaining := addressRemaining
	if sessionRemaining > addressRemaining {
		gating = sessionTracker
		gatingKind = models.KindSession
		remaining = sessionRemaining
	}

	if remaining > 0 {
		result.CanClaim = false
		result.Remaining = remaining
		result.GatedBy = gatingKind
		result.LastClaimAt = gating.LastClaimAt
		result.NextClaimTime = gating.NextClaimTime
		result.ClaimCount = gating.ClaimCount
	} else {
		switch {
		case addressTracker != nil:
			result.ClaimCount = addressTracker.ClaimCount
		case sessionTracker != nil:
			result.ClaimCount = sessionTracker.ClaimCount
		}
	}

	available, err := d.repo.CountUnclaimedCoupons()
	if err != nil {
		d.logger.Error("Failed to count unclaimed coupons", "error", err)
		return nil, err
	}
	nextSeq, err := d.repo.NextUnclaimedSequence()
	if err != nil {
		d.logger.Error("Failed to get next unclaimed sequence", "error", err)
		return nil, err
	}
	result.AvailableCoupons = available
	result.NextSequenceNumber = nextSeq

	return result, nil
}

// trackerRemaining returns the milliseconds left on a tracker's cooldown,
// zero for a missing or expired tracker.
func trackerRemaining(tracker *models.ClaimTracker, nowMs int64) int64 {
	if tracker == nil {
		return 0
	}
	return countdown.Remaining(tracker.NextClaimTime, nowMs)
}

// Claim arbitrates one claim attempt. The eligibility rule is re-applied, a
// session token is minted for first-time callers, and on success the
// lowest-sequence coupon is reserved and both cooldown tracks recorded.
func (d *Dispensa) Claim(address, sessionToken string, now time.Time) (*models.ClaimResult, error) {
	if address == "" {
		return nil, models.ErrMissingIdentifier
	}

	issuedToken := ""
	if sessionToken == "" {
		issuedToken = uuid.NewString()
		sessionToken = issuedToken
	}

	eligibility, err := d.Evaluate(address, sessionToken, now)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanClaim {
		return nil, &models.CooldownError{
			Kind:               eligibility.GatedBy,
			NextClaimTime:      eligibility.NextClaimTime,
			Remaining:          eligibility.Remaining,
			IssuedSessionToken: issuedToken,
		}
	}

	nowMs := now.UnixMilli()
	coupon, err := d.repo.ReserveNextCoupon(address, sessionToken, nowMs)
	if err != nil {
		d.logger.Error("Failed to reserve coupon", "error", err)
		return nil, err
	}
	if coupon == nil {
		// Empty draw: replenish synchronously and retry exactly once.
		if _, err := d.EnsureStock(now); err != nil {
			d.logger.Error("Replenishment during claim failed", "error", err)
		}
		coupon, err = d.repo.ReserveNextCoupon(address, sessionToken, nowMs)
		if err != nil {
			d.logger.Error("Failed to reserve coupon after replenishment", "error", err)
			return nil, err
		}
		if coupon == nil {
			d.logger.Warn("Coupon pool exhausted", "address", address)
			d.alert(models.AlertCritical, "Coupon pool exhausted",
				"A claim found no coupons even after a replenishment attempt.")
			return nil, models.ErrExhausted
		}
	}

	nextClaimTime := nowMs + d.config.CooldownDurationMs
	// The coupon is already reserved; a failed tracker write must not fail
	// the claim.
	if err := d.repo.UpsertClaimTracker(address, models.KindAddress, nowMs, nextClaimTime); err != nil {
		d.logger.Error("Failed to upsert address tracker after claim", "error", err, "address", address)
	}
	if err := d.repo.UpsertClaimTracker(sessionToken, models.KindSession, nowMs, nextClaimTime); err != nil {
		d.logger.Error("Failed to upsert session tracker after claim", "error", err)
	}

	d.logger.Info("Coupon claimed", "sequence", coupon.SequenceNumber, "address", address)
	return &models.ClaimResult{
		Code:               coupon.Code,
		SequenceNumber:     coupon.SequenceNumber,
		ClaimedAt:          nowMs,
		NextClaimTime:      nextClaimTime,
		Cooldown:           d.config.CooldownDurationMs,
		IssuedSessionToken: issuedToken,
	}, nil
}

// EnsureStock generates a fresh batch when the unclaimed count has fallen
// below the floor. Safe to run concurrently with claims: sequence numbers
// continue from the maximum across all coupons, and claim uniqueness never
// depends on them.
func (d *Dispensa) EnsureStock(now time.Time) (bool, error) {
	unclaimed, err := d.repo.CountUnclaimedCoupons()
	if err != nil {
		d.logger.Error("Failed to count unclaimed coupons", "error", err)
		return false, err
	}
	if unclaimed >= int64(d.config.MinimumCoupons) {
		return false, nil
	}

	maxSeq, err := d.repo.MaxSequenceNumber()
	if err != nil {
		d.logger.Error("Failed to get max sequence number", "error", err)
		return false, err
	}

	batch, err := d.generateCoupons(maxSeq, d.config.ReplenishCount, now.UnixMilli())
	if err != nil {
		d.logger.Error("Failed to generate replenishment batch", "error", err)
		return false, err
	}

	if err := d.repo.InsertCoupons(batch); err != nil {
		d.logger.Error("Failed to insert replenishment batch", "error", err, "count", len(batch))
		d.alert(models.AlertWarning, "Replenishment failed",
			fmt.Sprintf("Inserting a batch of %d coupons failed: %s", len(batch), err))
		return false, err
	}

	d.logger.Info("Coupon pool replenished", "count", len(batch), "fromSequence", maxSeq+1)
	return true, nil
}

// Inventory reports the pool state after enforcing the stock floor. This is
// the one read-facing path allowed to top the pool up.
func (d *Dispensa) Inventory(now time.Time) (*models.InventoryStatus, error) {
	replenished, err := d.EnsureStock(now)
	if err != nil {
		return nil, err
	}

	available, err := d.repo.CountUnclaimedCoupons()
	if err != nil {
		d.logger.Error("Failed to count unclaimed coupons", "error", err)
		return nil, err
	}
	nextSeq, err := d.repo.NextUnclaimedSequence()
	if err != nil {
		d.logger.Error("Failed to get next unclaimed sequence", "error", err)
		return nil, err
	}

	return &models.InventoryStatus{
		AvailableCoupons:   available,
		NextSequenceNumber: nextSeq,
		Replenished:        replenished,
	}, nil
}

// StorageConnected reports whether the backing store answers a ping.
func (d *Dispensa) StorageConnected() bool {
	if err := d.repo.Ping(); err != nil {
		d.logger.Warn("Storage ping failed", "error", err)
		return false
	}
	return true
}

// generateCoupons builds count new coupons with sequence numbers continuing
// after fromSeq.
func (d *Dispensa) generateCoupons(fromSeq int64, count int, createdAt int64) ([]*models.Coupon, error) {
	coupons := make([]*models.Coupon, 0, count)
	for i := 1; i <= count; i++ {
		code, err := couponcode.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate coupon batch: %s", err)
		}
		coupons = append(coupons, &models.Coupon{
			Code:           code,
			SequenceNumber: fromSeq + int64(i),
			Active:         true,
			CreatedAt:      createdAt,
		})
	}

	return coupons, nil
}

func (d *Dispensa) alert(level models.AlertLevel, title, message string) {
	if d.alerter == nil {
		return
	}
	go d.alerter.SendAlert(&models.Alert{Level: level, Title: title, Message: message})
}
