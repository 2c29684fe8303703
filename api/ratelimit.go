package api

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	errRateLimit  = "rate limit exceeded"
	headerRetryAt = "Retry-After"

	limiterIdle = 10 * time.Minute
)

type limiterState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles write endpoints per authenticated user, falling back
// to the client address for anonymous requests.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterState
	rps      rate.Limit
	burst    int
	sweptAt  time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterState),
		rps:      rate.Limit(rps),
		burst:    burst,
		sweptAt:  time.Now(),
	}
}

func clientKey(r *http.Request) string {
	if id, ok := UserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", id)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// getLimiter returns the limiter for key, dropping limiters idle for longer
// than limiterIdle at most once per idle period.
func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.sweptAt) > limiterIdle {
		for k, st := range l.limiters {
			if now.Sub(st.lastSeen) > limiterIdle {
				delete(l.limiters, k)
			}
		}
		l.sweptAt = now
	}

	st, ok := l.limiters[key]
	if !ok {
		st = &limiterState{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = st
	}
	st.lastSeen = now
	return st.limiter
}

// Middleware wraps next with the limiter. Rejected requests get 429 and a
// Retry-After hint.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		lim := l.getLimiter(key)

		res := lim.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set(headerRetryAt, fmt.Sprintf("%.0f", delay.Seconds()+0.5))
			logger.Debug("rate limited", "client", key)
			http.Error(w, errRateLimit, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
