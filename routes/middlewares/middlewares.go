package middlewares

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/teamsurvey/httpx"
	"github.com/mbolis/teamsurvey/log"
	"github.com/mbolis/teamsurvey/ratelimit"
)

// Admin checks for a valid bearer token carrying the 'admin' role.
func Admin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		isAdmin := false
		for _, role := range strings.Split(claims["roles"], ",") {
			if strings.TrimSpace(role) == "admin" {
				isAdmin = true
				break
			}
		}

		if !isAdmin {
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "auth.admin_role")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects clients that exceed the limiter's budget. Clients are
// told apart by ClientIP. A failing limiter lets the request through.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), ClientIP(r))
			if err != nil {
				log.Warnf("ratelimit.allow: %s", err)
				ok = true
			}
			if !ok {
				httpx.LogStatusMsg(w, r, http.StatusTooManyRequests, log.DebugLevel, "ratelimit.exceeded", "too many requests, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP strips the port from the request's remote address. That is the
// socket peer unless middleware.RealIP ran first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
