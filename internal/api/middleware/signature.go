package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/ayo6706/org-balance-ledger/internal/api/problem"
	"go.uber.org/zap"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	signaturePrefix = "sha256="
	maxWebhookBody  = 64 << 10
)

// WebhookSignature verifies "sha256=<hex HMAC-SHA256 of body>" in
// X-Webhook-Signature. With an empty key the check is disabled and requests
// pass through unchanged.
func WebhookSignature(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	secret := []byte(key)
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
			if err != nil || len(body) > maxWebhookBody {
				problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-body"), http.StatusText(http.StatusBadRequest), "Failed to read request body")
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !ValidSignature(secret, body, r.Header.Get(SignatureHeader)) {
				logger.Warn("webhook signature rejected",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("trace_id", TraceIDFromContext(r.Context())),
				)
				problem.Write(w, r, http.StatusUnauthorized, problem.Type("webhook/invalid-signature"), http.StatusText(http.StatusUnauthorized), "Invalid signature")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// ValidSignature compares in constant time.
func ValidSignature(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(secret, body)))
}
