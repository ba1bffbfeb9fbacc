package usage

import "fmt"

// Denial reasons, in check priority order.
const (
	DenialPerRequest    = "per_request_limit"
	DenialDailyRequests = "daily_request_limit"
	DenialDailyVolume   = "daily_volume_limit"
)

// Policy holds the admission ceilings for one usage domain. It is built
// once at startup from configuration and passed to the limiter by
// reference; nothing mutates it afterwards.
type Policy struct {
	// MaxLamportsPerRequest caps a single request's volume. Must be
	// positive for volume-bearing domains.
	MaxLamportsPerRequest int64
	// DailyLamportsLimit caps the summed volume per identity per UTC day.
	DailyLamportsLimit int64
	// DailyRequestLimit caps the request count per identity per UTC day.
	DailyRequestLimit int64
}

func (p Policy) Validate() error {
	if p.MaxLamportsPerRequest <= 0 {
		return fmt.Errorf("max lamports per request must be positive, got %d", p.MaxLamportsPerRequest)
	}
	if p.DailyLamportsLimit < 0 {
		return fmt.Errorf("daily lamports limit must be non-negative, got %d", p.DailyLamportsLimit)
	}
	if p.DailyRequestLimit < 0 {
		return fmt.Errorf("daily request limit must be non-negative, got %d", p.DailyRequestLimit)
	}
	return nil
}

// Decision is the outcome of an admission check. It never mutates counter
// state; denials carry every ceiling so callers can render a precise
// remaining-quota message.
type Decision struct {
	Allowed               bool   `json:"allowed"`
	Reason                string `json:"reason,omitempty"`
	RequestedLamports     int64  `json:"requested_lamports"`
	MaxLamportsPerRequest int64  `json:"max_lamports_per_request"`
	DailyRequestsUsed     int64  `json:"daily_requests_used"`
	DailyRequestLimit     int64  `json:"daily_request_limit"`
	DailyLamportsUsed     int64  `json:"daily_lamports_used"`
	DailyLamportsLimit    int64  `json:"daily_lamports_limit"`
}
