package middleware

import (
	"net"
	"net/http"

	"github.com/svelazco/storeflow-backend/api/responses"
	"github.com/svelazco/storeflow-backend/pkg/config"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/redis"
)

// LoginRateLimit applies a per-IP fixed window on the login endpoint. When
// no redis client was configured the limiter is a no-op; a redis outage also
// lets the request through rather than locking operators out.
func LoginRateLimit(client *redis.Client, cfg config.AuthRateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := "login:ip:" + clientIP(r)
			allowed, _, err := client.FixedWindowAllow(r.Context(), scope, cfg.LoginIPLimit, cfg.LoginWindow)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "rate limiter unavailable, allowing request")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
