package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/domain"
	"github.com/ayo6706/org-balance-ledger/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdempotentReplayHeader is set on responses to repeated deliveries.
const IdempotentReplayHeader = "X-Idempotent-Replay"

const maxWebhookBody = 64 << 10

// PaymentIngester posts validated notifications to the ledger.
type PaymentIngester interface {
	Ingest(ctx context.Context, n service.Notification) (*service.IngestResult, error)
}

// WebhookHandler receives bank payment notifications.
type WebhookHandler struct {
	payments PaymentIngester
}

func NewWebhookHandler(payments PaymentIngester) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

type bankNotificationRequest struct {
	OperationID    string `json:"operation_id"`
	Amount         int64  `json:"amount"`
	PayerINN       string `json:"payer_inn"`
	DocumentNumber string `json:"document_number"`
	DocumentDate   string `json:"document_date"`
}

type webhookResponse struct {
	Detail string `json:"detail"`
}

// HandleBankWebhook handles POST /api/webhook/bank.
//
// The bank retries until it sees a 2xx, so a repeated delivery gets the same
// 200 body as the first one.
func (h *WebhookHandler) HandleBankWebhook(w http.ResponseWriter, r *http.Request) {
	var req bankNotificationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "webhook/invalid-body", "Invalid request body")
		return
	}

	n, err := req.toNotification()
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "webhook/validation-failed", err.Error())
		return
	}

	res, err := h.payments.Ingest(r.Context(), n)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			RespondError(w, r, http.StatusBadRequest, "webhook/validation-failed", "amount: must be a positive integer")
			return
		}
		zap.L().Error("bank webhook failed",
			zap.String("operation_id", n.OperationID.String()),
			zap.Error(err),
		)
		RespondError(w, r, http.StatusInternalServerError, "webhook/processing-failed", "payment could not be recorded, retry later")
		return
	}

	if res.Outcome == service.OutcomeAlreadyProcessed {
		w.Header().Set(IdempotentReplayHeader, "true")
	}
	RespondJSON(w, http.StatusOK, webhookResponse{Detail: "Payment processed"})
}

func (req bankNotificationRequest) toNotification() (service.Notification, error) {
	operationID, err := uuid.Parse(req.OperationID)
	if err != nil {
		return service.Notification{}, &domain.ValidationError{Field: "operation_id", Reason: "must be a UUID"}
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return service.Notification{}, err
	}
	if err := domain.ValidateINN(req.PayerINN); err != nil {
		return service.Notification{}, err
	}
	documentNumber := strings.TrimSpace(req.DocumentNumber)
	if err := domain.ValidateDocumentNumber(documentNumber); err != nil {
		return service.Notification{}, err
	}
	documentDate, err := parseDocumentDate(req.DocumentDate)
	if err != nil {
		return service.Notification{}, err
	}

	return service.Notification{
		OperationID:    operationID,
		Amount:         req.Amount,
		PayerINN:       req.PayerINN,
		DocumentNumber: documentNumber,
		DocumentDate:   documentDate,
	}, nil
}

// parseDocumentDate accepts RFC 3339 timestamps. Timestamps without an offset
// are taken as UTC.
func parseDocumentDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, &domain.ValidationError{Field: "document_date", Reason: "must be an RFC 3339 timestamp"}
}
