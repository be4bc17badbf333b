package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/hlog"
)

const (
	loginLimitMessage = "요청이 너무 많아. 잠시 후 다시 시도해줘."
	chatLimitMessage  = "메시지를 너무 빨리 보내고 있어. 1분쯤 쉬었다가 다시 말 걸어줘."

	staleSweepInterval = 5 * time.Minute
)

// RateLimiter counts requests per client in fixed windows and rejects the
// ones over the limit with 429. Counters live in memory and are swept
// periodically.
type RateLimiter struct {
	rate    int
	window  time.Duration
	message string
	// keyOf names the client a request is counted against. The returned
	// scope ("ip" or "user") is only used for logging.
	keyOf func(*http.Request) (key, scope string)

	trustedNets []*net.IPNet

	mu      sync.Mutex
	clients map[string]*counter

	stop     chan struct{}
	stopOnce sync.Once
}

type counter struct {
	start time.Time
	count int
}

// NewRateLimiter limits each client IP to rate requests per window. It
// guards POST /login.
//
// trustedProxies lists CIDRs (or bare IPs) of reverse proxies whose
// X-Forwarded-For and X-Real-IP headers are honoured. With none, only
// RemoteAddr is used.
func NewRateLimiter(rate int, window time.Duration, trustedProxies ...string) *RateLimiter {
	rl := newRateLimiter(rate, window, loginLimitMessage)
	rl.trustedNets = parseTrustedNets(trustedProxies)
	rl.keyOf = func(r *http.Request) (string, string) { return rl.extractIP(r), "ip" }
	return rl
}

// NewUserRateLimiter limits each signed-in user to rate requests per window,
// so one account cannot burn through the generation provider's quota. It
// must run after RequireAuth; requests without a user are counted by IP.
func NewUserRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(rate, window, chatLimitMessage)
	rl.keyOf = func(r *http.Request) (string, string) {
		if u := UserFromContext(r.Context()); u != nil {
			return "user:" + strconv.FormatInt(u.ID, 10), "user"
		}
		return rl.extractIP(r), "ip"
	}
	return rl
}

func newRateLimiter(rate int, window time.Duration, message string) *RateLimiter {
	rl := &RateLimiter{
		rate:    rate,
		window:  window,
		message: message,
		clients: make(map[string]*counter),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func parseTrustedNets(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		if !strings.Contains(cidr, "/") {
			if strings.Contains(cidr, ":") {
				cidr += "/128"
			} else {
				cidr += "/32"
			}
		}
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit wraps next and answers 429 with Retry-After once a client is over
// the limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, scope := rl.keyOf(r)
		if !rl.allow(key) {
			hlog.FromRequest(r).Warn().Str("client", key).Str("scope", scope).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			http.Error(w, rl.message, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records one request for key and reports whether it is within the
// limit.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[key]
	if !ok || now.Sub(c.start) > rl.window {
		rl.clients[key] = &counter{start: now, count: 1}
		return true
	}
	c.count++
	return c.count <= rl.rate
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, c := range rl.clients {
				if now.Sub(c.start) > 2*rl.window {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) trusted(ipStr string) bool {
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return false
	}
	for _, n := range rl.trustedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// extractIP returns the client address. Forwarding headers are read only
// when RemoteAddr is a trusted proxy, and then the rightmost untrusted
// X-Forwarded-For hop wins.
func (rl *RateLimiter) extractIP(r *http.Request) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}
	if len(rl.trustedNets) == 0 || !rl.trusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			if hop := strings.TrimSpace(hops[i]); hop != "" && !rl.trusted(hop) {
				return hop
			}
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return remote
}
