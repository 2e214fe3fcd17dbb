package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        int64     `json:"id"`
	INN       string    `json:"inn"`
	Balance   int64     `json:"balance"` // kopecks
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID             int64     `json:"id"`
	OperationID    uuid.UUID `json:"operation_id"`
	Amount         int64     `json:"amount"`
	PayerINN       string    `json:"payer_inn"`
	DocumentNumber string    `json:"document_number"`
	DocumentDate   time.Time `json:"document_date"`
	CreatedAt      time.Time `json:"created_at"`
}

type BalanceLog struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	PaymentID      *int64    `json:"payment_id,omitempty"` // nil for manual adjustments
	Amount         int64     `json:"amount"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}
