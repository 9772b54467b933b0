package models

// TrackerKind discriminates the two independent cooldown tracks.
type TrackerKind string

const (
	// KindAddress tracks claims by network address.
	KindAddress TrackerKind = "address"
	// KindSession tracks claims by browser session token.
	KindSession TrackerKind = "session"
)

// ClaimTracker records the cooldown state of one identity.
// At most one tracker exists per (kind, identifier) pair; it is created on
// the identity's first successful claim and updated in place afterwards.
type ClaimTracker struct {
	// ID is the unique identifier for the tracker.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Identifier is the address or session-token value being tracked.
	Identifier string `json:"identifier" gorm:"column:identifier;uniqueIndex:idx_tracker_identity;not null"`
	// Kind tells whether Identifier is a network address or a session token.
	Kind TrackerKind `json:"kind" gorm:"column:kind;uniqueIndex:idx_tracker_identity;not null"`
	// LastClaimAt is the Unix millisecond timestamp of the most recent successful claim.
	LastClaimAt int64 `json:"last_claim_at" gorm:"column:last_claim_at"`
	// NextClaimTime is LastClaimAt plus the cooldown duration, precomputed at claim time.
	NextClaimTime int64 `json:"next_claim_time" gorm:"column:next_claim_time;index"`
	// ClaimCount is the number of successful claims made by this identity.
	ClaimCount int64 `json:"claim_count" gorm:"column:claim_count;default:0"`
}

// TableName specifies the table name for GORM
func (ClaimTracker) TableName() string {
	return "claim_trackers"
}
