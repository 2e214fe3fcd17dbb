package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/api/problem"
	"github.com/go-chi/httprate"
)

// PublicRateLimiter limits balance reads per client IP. rps <= 0 disables it.
func PublicRateLimiter(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return passthrough
	}
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitExceeded(fmt.Sprintf("Rate limit of %d req/s exceeded for this IP", rps))),
	)
}

// OperatorRateLimiter limits authenticated back-office reads per user id.
func OperatorRateLimiter(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return passthrough
	}
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if userID := UserIDFromContext(r.Context()); userID != "" {
				return "user:" + userID, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(limitExceeded(fmt.Sprintf("Rate limit of %d req/s exceeded for this user", rps))),
	)
}

func limitExceeded(detail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusTooManyRequests, problem.Type("rate-limit-exceeded"),
			http.StatusText(http.StatusTooManyRequests), detail)
	}
}

func passthrough(next http.Handler) http.Handler { return next }
