package models

import (
	"errors"
	"fmt"
	"time"
)

type DispensaI interface {
	// Bootstrap seeds an empty store with the configured initial batch and
	// enforces the stock floor once. Called before the API starts serving.
	Bootstrap() error

	// Evaluate reports whether the identity pair may claim right now.
	// It never writes and is safe to call on every poll.
	Evaluate(address, sessionToken string, now time.Time) (*EligibilityResult, error)

	// Claim reserves the next coupon in sequence for the identity pair.
	// Rejections are returned as *CooldownError, an empty pool as ErrExhausted.
	Claim(address, sessionToken string, now time.Time) (*ClaimResult, error)

	// EnsureStock tops up the pool when the unclaimed count is below the
	// configured floor. Returns true when a batch was generated.
	EnsureStock(now time.Time) (bool, error)

	// Inventory reports pool state after enforcing the stock floor.
	Inventory(now time.Time) (*InventoryStatus, error)

	// StorageConnected reports whether the backing store answers a ping.
	StorageConnected() bool
}

// EligibilityResult is the outcome of one cooldown evaluation.
type EligibilityResult struct {
	CanClaim bool
	// Remaining is the number of milliseconds until the gating cooldown
	// expires. Zero when eligible.
	Remaining int64
	// GatedBy names the tracker kind enforcing the wait. Empty when eligible.
	GatedBy TrackerKind
	// LastClaimAt and NextClaimTime describe the gating tracker. Zero when eligible.
	LastClaimAt   int64
	NextClaimTime int64
	// ClaimCount is the total successful claims recorded for the caller,
	// taken from the gating tracker, or from the address tracker when eligible.
	ClaimCount int64
	// AvailableCoupons and NextSequenceNumber describe the pool for UI display.
	AvailableCoupons   int64
	NextSequenceNumber int64
}

// ClaimResult is the outcome of a successful claim.
type ClaimResult struct {
	Code           string
	SequenceNumber int64
	// ClaimedAt and NextClaimTime are Unix millisecond timestamps.
	ClaimedAt     int64
	NextClaimTime int64
	// Cooldown is the configured cooldown duration in milliseconds.
	Cooldown int64
	// IssuedSessionToken is set when the caller presented no session token
	// and one was minted during this claim.
	IssuedSessionToken string
}

// InventoryStatus describes the pool after an inventory query.
type InventoryStatus struct {
	AvailableCoupons   int64
	NextSequenceNumber int64
	Replenished        bool
}

// ErrExhausted is returned when no coupon could be reserved even after a
// replenishment attempt. Terminal for the request.
var ErrExhausted = errors.New("no coupons available")

// ErrMissingIdentifier rejects tracker writes that carry no identity value.
var ErrMissingIdentifier = errors.New("tracker identifier is required")

// CooldownError reports a claim rejected because an identity is still inside
// its cooldown window. An expected outcome, not a server fault.
type CooldownError struct {
	Kind          TrackerKind
	NextClaimTime int64
	Remaining     int64
	// IssuedSessionToken is carried so the transport layer can still hand a
	// fresh session token to a rejected first-time caller.
	IssuedSessionToken string
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("claim rejected: %s cooldown active for another %dms", e.Kind, e.Remaining)
}
