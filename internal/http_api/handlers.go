package http_api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/countdown"
)

// TimeWindow is a duration presented both raw (milliseconds) and formatted.
type TimeWindow struct {
	Total     int64  `json:"total"`
	Formatted string `json:"formatted"`
}

// EligibilityResponse is the payload for the eligibility poll.
type EligibilityResponse struct {
	CanClaim           bool       `json:"canClaim"`
	RemainingTime      TimeWindow `json:"remainingTime"`
	LastClaimAt        *time.Time `json:"lastClaimAt,omitempty"`   // Only present while a cooldown gates the caller
	NextClaimTime      *time.Time `json:"nextClaimTime,omitempty"` // Only present while a cooldown gates the caller
	TotalClaims        int64      `json:"totalClaims"`
	TrackerType        string     `json:"trackerType,omitempty"` // Which identity kind gates the caller
	AvailableCoupons   int64      `json:"availableCoupons"`
	NextSequenceNumber int64      `json:"nextSequenceNumber"`
	Timestamp          time.Time  `json:"timestamp"`
}

// ClaimResponse is the payload for a successful claim.
type ClaimResponse struct {
	Coupon         string     `json:"coupon"`
	SequenceNumber int64      `json:"sequenceNumber"`
	ClaimTime      time.Time  `json:"claimTime"`
	NextClaimTime  time.Time  `json:"nextClaimTime"`
	CooldownPeriod TimeWindow `json:"cooldownPeriod"`
}

// sessionToken extracts the browser-session identity, empty when absent.
func sessionToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

// setSessionCookie persists a freshly minted session token on the response.
// Lifetime equals the cooldown duration; HTTP-only always, secure outside
// development.
func (s *HTTPServer) setSessionCookie(c *gin.Context, token string) {
	if token == "" {
		return
	}
	maxAge := int(s.config.CooldownDuration() / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", !s.config.Development, true)
}

// eligibility is a handler for the eligibility polling endpoint.
// It never mutates state, so clients may call it as often as they like.
func (s *HTTPServer) eligibility(c *gin.Context) {
	now := time.Now()
	result, err := s.dispensa.Evaluate(c.ClientIP(), sessionToken(c), now)
	if err != nil {
		s.logger.Error("Failed to evaluate eligibility", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again."})
		return
	}

	response := EligibilityResponse{
		CanClaim: result.CanClaim,
		RemainingTime: TimeWindow{
			Total:     result.Remaining,
			Formatted: countdown.Format(result.Remaining),
		},
		TotalClaims:        result.ClaimCount,
		AvailableCoupons:   result.AvailableCoupons,
		NextSequenceNumber: result.NextSequenceNumber,
		Timestamp:          now,
	}
	if !result.CanClaim {
		lastClaim := time.UnixMilli(result.LastClaimAt)
		nextClaim := time.UnixMilli(result.NextClaimTime)
		response.LastClaimAt = &lastClaim
		response.NextClaimTime = &nextClaim
		response.TrackerType = string(result.GatedBy)
	}

	c.JSON(http.StatusOK, response)
}

// claim is a handler for the claim endpoint. Identity is taken from the
// connection address and the session cookie, never from the request body.
func (s *HTTPServer) claim(c *gin.Context) {
	now := time.Now()
	result, err := s.dispensa.Claim(c.ClientIP(), sessionToken(c), now)
	if err != nil {
		var cooldownErr *models.CooldownError
		switch {
		case errors.As(err, &cooldownErr):
			s.setSessionCookie(c, cooldownErr.IssuedSessionToken)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message":       "You have already claimed a coupon. Please wait for the cooldown to finish.",
				"nextClaimTime": time.UnixMilli(cooldownErr.NextClaimTime),
				"remainingTime": TimeWindow{
					Total:     cooldownErr.Remaining,
					Formatted: countdown.Format(cooldownErr.Remaining),
				},
				"trackerType": string(cooldownErr.Kind),
			})
		case errors.Is(err, models.ErrExhausted):
			c.JSON(http.StatusNotFound, gin.H{
				"message":     "No coupons available right now, please try again later.",
				"shouldRetry": false,
			})
		default:
			s.logger.Error("Failed to process claim", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again."})
		}
		return
	}

	s.setSessionCookie(c, result.IssuedSessionToken)
	c.JSON(http.StatusOK, ClaimResponse{
		Coupon:         result.Code,
		SequenceNumber: result.SequenceNumber,
		ClaimTime:      time.UnixMilli(result.ClaimedAt),
		NextClaimTime:  time.UnixMilli(result.NextClaimTime),
		CooldownPeriod: TimeWindow{
			Total:     result.Cooldown,
			Formatted: countdown.Format(result.Cooldown),
		},
	})
}

// inventory reports the pool state, topping it up when it is below the floor.
func (s *HTTPServer) inventory(c *gin.Context) {
	now := time.Now()
	status, err := s.dispensa.Inventory(now)
	if err != nil {
		s.logger.Error("Failed to query inventory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"availableCoupons":   status.AvailableCoupons,
		"nextSequenceNumber": status.NextSequenceNumber,
		"replenished":        status.Replenished,
		"timestamp":          now,
	})
}

// health reports liveness and whether the backing store answers.
func (s *HTTPServer) health(c *gin.Context) {
	connected := s.dispensa.StorageConnected()
	status := "ok"
	code := http.StatusOK
	if !connected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":           status,
		"storageConnected": connected,
		"timestamp":        time.Now(),
	})
}
