package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// sweepInterval is how often idle buckets are dropped.
const sweepInterval = time.Minute

// UserRateLimiter keeps one token bucket per user. Buckets that have refilled
// completely are dropped on the next sweep, since a full bucket behaves exactly
// like a new one.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

// NewUserRateLimiter allows perMinute events per user, refilled evenly,
// with up to burst events at once. perMinute <= 0 disables limiting.
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *UserRateLimiter) limiter(userID string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	return lim
}

// sweep drops full buckets. Callers hold l.mu.
func (l *UserRateLimiter) sweep(now time.Time) {
	for userID, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, userID)
		}
	}
	l.lastSweep = now
}

func (l *UserRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Reserve takes a token for userID and reports how long the caller should
// wait before retrying when none was available.
func (l *UserRateLimiter) Reserve(userID string, now time.Time) (bool, time.Duration) {
	if l.limit == rate.Inf {
		return true, 0
	}
	if l.limiter(userID, now).AllowN(now, 1) {
		return true, 0
	}
	wait := time.Duration(float64(time.Second) / float64(l.limit))
	return false, wait
}

// RateLimitPerUser throttles authenticated callers. It must run after AuthMiddleware.
func RateLimitPerUser(l *UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if ok, wait := l.Reserve(claims.UserID, time.Now()); !ok {
				logrus.WithFields(logrus.Fields{
					"userID": claims.UserID,
					"path":   r.URL.Path,
				}).Warn("Request throttled")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
