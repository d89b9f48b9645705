// internal/ratelimit/middleware.go
package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// KeyFunc derives the rate-limit key from a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by client network identity. When trustXFF is set the
// first entry of X-Forwarded-For wins, otherwise the RemoteAddr host is used.
func ClientIP(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Middleware rejects requests whose key has exhausted its bucket with a 429
// and a Retry-After hint derived from the bucket refill delay.
func Middleware(store *Store, keyFn KeyFunc) func(next http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientIP(false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := store.Get(keyFn(r))

			res := lim.Reserve()
			if !res.OK() || res.Delay() > 0 {
				res.Cancel()

				retryAfter := 1
				if res.OK() {
					if d := res.Delay(); d > 0 {
						retryAfter = int(math.Ceil(d.Seconds()))
					}
				}

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"message": "too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
