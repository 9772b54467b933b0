package models

// Coupon represents a single claimable code in the pool.
type Coupon struct {
	// ID is the unique identifier for the coupon.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Code is the opaque token handed to the claimant.
	// Format: fixed-length uppercase alphanumeric string.
	Code string `json:"code" gorm:"column:code;uniqueIndex;not null"`
	// SequenceNumber defines the order coupons are handed out in.
	// Assigned at creation time, strictly increasing, never reused.
	SequenceNumber int64 `json:"sequence_number" gorm:"column:sequence_number;uniqueIndex;not null"`
	// Active indicates the coupon is still unclaimed. Flipped to false exactly once, at claim time.
	Active bool `json:"active" gorm:"column:active;index;default:true"`
	// ClaimedByAddress is the network address the coupon was claimed from. Empty until claimed.
	ClaimedByAddress string `json:"claimed_by_address" gorm:"column:claimed_by_address"`
	// ClaimedBySession is the session token the coupon was claimed under. Empty until claimed.
	ClaimedBySession string `json:"claimed_by_session" gorm:"column:claimed_by_session"`
	// ClaimedAt is the Unix millisecond timestamp of the claim. Zero until claimed.
	ClaimedAt int64 `json:"claimed_at" gorm:"column:claimed_at"`
	// CreatedAt is the Unix millisecond timestamp when the coupon was generated.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at"`
}
