package middleware

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// PasswordLimiter bounds admin password attempts per client address. The same
// limiter guards the login endpoint and the legacy password body field.
type PasswordLimiter struct {
	rate     rate.Limit
	burst    int
	limiters *cache.Cache
}

func NewPasswordLimiter(perSecond float64, burst int) *PasswordLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &PasswordLimiter{
		rate:     rate.Limit(perSecond),
		burst:    burst,
		limiters: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Allow reports whether ip may attempt another password check. A nil limiter allows
// everything.
func (l *PasswordLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}
	if v, ok := l.limiters.Get(ip); ok {
		l.limiters.SetDefault(ip, v)
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(l.rate, l.burst)
	// a concurrent first request for ip may have stored its own limiter
	if err := l.limiters.Add(ip, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.limiters.Get(ip); ok {
			return v.(*rate.Limiter).Allow()
		}
	}
	return lim.Allow()
}
