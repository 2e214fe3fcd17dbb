// Package spec serves the embedded OpenAPI document for the ledger API.
package spec

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openapiDocument []byte

// OpenAPIHandler serves the embedded OpenAPI document. The swagger UI at
// /swagger/ points at it.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openapiDocument)
	}
}
