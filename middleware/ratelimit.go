package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	utils "github.com/phillip/event-booking-go/utils"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute int
	lastSweep time.Time
}

func (s *limiterStore) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for k, entry := range s.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		every := time.Minute / time.Duration(s.perMinute)
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(every), s.perMinute)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimit allows perMinute requests per client IP, refilled evenly. A
// non-positive perMinute disables limiting.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	store := &limiterStore{limiters: map[string]*limiterEntry{}, perMinute: perMinute, lastSweep: time.Now()}
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(perMinute)).Seconds()) + 1)

	return func(c *gin.Context) {
		if !store.limiter(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", retryAfter)
			utils.RespondError(c, utils.NewApiError(http.StatusTooManyRequests, "Too many requests"))
			return
		}
		c.Next()
	}
}
