package countdown

import (
	"fmt"
	"strings"
)

// ClaimNowSentinel replaces the countdown for any non-positive remaining
// time. The client renders the identical string when its local timer expires,
// so the two sides stay in agreement at the boundary.
const ClaimNowSentinel = "You can claim now!"

// Format renders a remaining duration in milliseconds as "{h}h {m}m {s}s",
// omitting zero components. Non-positive input yields ClaimNowSentinel.
func Format(ms int64) string {
	if ms <= 0 {
		return ClaimNowSentinel
	}

	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	seconds := (ms % 60000) / 1000

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}

// Remaining returns the milliseconds left until nextClaimTime, clamped at
// zero once the boundary has passed.
func Remaining(nextClaimTime, now int64) int64 {
	remaining := nextClaimTime - now
	if remaining < 0 {
		return 0
	}
	return remaining
}
