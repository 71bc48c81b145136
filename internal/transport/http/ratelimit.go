package http

import (
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter caps inbound events per connection. The budget refills
// evenly over a minute and allows a burst of the whole budget.
type rateLimiter struct {
	limiter *rate.Limiter
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return &rateLimiter{}
	}
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (r *rateLimiter) allow(now time.Time) bool {
	if r == nil || r.limiter == nil {
		return true
	}
	return r.limiter.AllowN(now, 1)
}
