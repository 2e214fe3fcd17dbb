package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ayo6706/org-balance-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BalanceReader answers organization balance queries.
type BalanceReader interface {
	GetBalance(ctx context.Context, inn string) (*service.OrganizationBalance, error)
	GetStatement(ctx context.Context, inn string, page, pageSize int) (*service.Statement, error)
}

type OrganizationHandler struct {
	balances BalanceReader
}

func NewOrganizationHandler(balances BalanceReader) *OrganizationHandler {
	return &OrganizationHandler{balances: balances}
}

// GetBalance handles GET /api/organizations/{inn}/balance.
func (h *OrganizationHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	inn := chi.URLParam(r, "inn")
	balance, err := h.balances.GetBalance(r.Context(), inn)
	if err != nil {
		h.respondReadError(w, r, inn, err)
		return
	}
	RespondJSON(w, http.StatusOK, balance)
}

// GetStatement handles GET /api/organizations/{inn}/balance-logs.
func (h *OrganizationHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	inn := chi.URLParam(r, "inn")

	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-query", "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(r, "page_size", 0)
	if err != nil || pageSize < 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-query", "page_size must be a positive integer")
		return
	}

	statement, err := h.balances.GetStatement(r.Context(), inn, page, pageSize)
	if err != nil {
		h.respondReadError(w, r, inn, err)
		return
	}
	RespondJSON(w, http.StatusOK, statement)
}

func (h *OrganizationHandler) respondReadError(w http.ResponseWriter, r *http.Request, inn string, err error) {
	if errors.Is(err, service.ErrOrganizationNotFound) {
		RespondError(w, r, http.StatusNotFound, "organization/not-found", "organization not found")
		return
	}
	zap.L().Error("balance read failed", zap.String("inn", inn), zap.Error(err))
	RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "balance is temporarily unavailable")
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
