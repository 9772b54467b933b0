package models

type Repository interface {
	// ReserveNextCoupon atomically claims the unclaimed coupon with the
	// lowest sequence number for the given identity pair. It returns
	// (nil, nil) when nothing could be reserved, either because the pool is
	// empty or because a concurrent claim won the race for the last coupon.
	ReserveNextCoupon(address, sessionToken string, now int64) (*Coupon, error)

	CountUnclaimedCoupons() (int64, error)
	CountAllCoupons() (int64, error)
	// NextUnclaimedSequence returns the sequence number the next claim would
	// receive, or 0 when the pool is empty.
	NextUnclaimedSequence() (int64, error)
	// MaxSequenceNumber returns the highest sequence number ever assigned,
	// across claimed and unclaimed coupons alike.
	MaxSequenceNumber() (int64, error)
	InsertCoupons(coupons []*Coupon) error

	// GetClaimTracker returns (nil, nil) when no tracker exists for the pair.
	GetClaimTracker(identifier string, kind TrackerKind) (*ClaimTracker, error)
	UpsertClaimTracker(identifier string, kind TrackerKind, now, nextClaimTime int64) error

	Ping() error
	Close() error
}
