package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ghaggin/coachportal/internal/config"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	msgRateLimited = "Rate limit exceeded. Try again later."
	limiterIdle    = 10 * time.Minute
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// ipLimiter holds one token bucket per client address.
type ipLimiter struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	every    rate.Limit
	burst    int
	visitors map[string]*visitor
	pruned   time.Time
}

func newIPLimiter(c config.RateLimit, clock clockwork.Clock) *ipLimiter {
	every := rate.Inf
	if c.PerMinute > 0 {
		every = rate.Every(time.Minute / time.Duration(c.PerMinute))
	}
	return &ipLimiter{
		clock:    clock,
		every:    every,
		burst:    c.Burst,
		visitors: map[string]*visitor{},
		pruned:   clock.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.pruned) > limiterIdle {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > limiterIdle {
				delete(l.visitors, k)
			}
		}
		l.pruned = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.limiter.AllowN(now, 1)
}

// throttle limits form posts per client address.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.allow(ip) {
			s.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			http.Error(w, msgRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
