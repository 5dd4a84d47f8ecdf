package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/microlesson-api/internal/api/shared"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/phrazzld/microlesson-api/internal/platform/ratelimit"
)

// MsgThrottled is the body message of a 429 response.
const MsgThrottled = "Throttle limit reached. Try again later."

// Limiter decides whether a client key may make another request.
// *ratelimit.Limiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Result, error)
	Period() time.Duration
}

// RateLimit throttles requests per client IP. Safelisted IPs bypass the
// limiter and onReject, when set, is called for every throttled request.
func RateLimit(limiter Limiter, safelist []string, onReject func()) func(http.Handler) http.Handler {
	safe := make(map[string]struct{}, len(safelist))
	for _, ip := range safelist {
		if parsed := net.ParseIP(ip); parsed != nil {
			safe[parsed.String()] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if _, ok := safe[ip]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// Allow reports errors alongside a permissive result.
			res, _ := limiter.Allow(r.Context(), ip)
			if res.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if onReject != nil {
				onReject()
			}
			logger.FromContextOrDefault(r.Context(), slog.Default()).Warn("request throttled",
				slog.String("client_ip", ip),
				slog.String("path", r.URL.Path))

			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(res.RetryAfter, limiter.Period())))
			shared.RespondWithJSON(w, r, http.StatusTooManyRequests, map[string]string{"error": MsgThrottled})
		})
	}
}

// ClientIP returns the canonical IP of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}

func retryAfterSeconds(retryAfter, period time.Duration) int {
	if retryAfter <= 0 {
		retryAfter = period
	}
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
