package models

import (
	"time"
)

const (
	MethodBankTransfer = "BANK_TRANSFER"
	MethodTaxPayment   = "TAX_PAYMENT"
)

const (
	WithdrawalPending   = "PENDING"
	WithdrawalCompleted = "COMPLETED"
	WithdrawalCancelled = "CANCELLED"
)

// PayoutDetails carries the destination bank account for BANK_TRANSFER
// withdrawals. TAX_PAYMENT withdrawals are applied against the user's tax
// bill and need no destination.
type PayoutDetails struct {
	BankCode      string `json:"bankCode"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// WithdrawalRequest is the only path by which a savings balance decreases.
// Lifecycle: PENDING -> COMPLETED (admin approve, debits the account) or
// PENDING -> CANCELLED (user cancel or admin reject). Terminal states are
// never left.
type WithdrawalRequest struct {
	ID          int            `json:"id" db:"id"`
	UserID      int            `json:"user_id" db:"user_id"`
	Amount      int64          `json:"amount" db:"amount"` // in kobo
	Method      string         `json:"method" db:"method"`
	Payout      *PayoutDetails `json:"payout,omitempty"`
	Status      string         `json:"status" db:"status"`
	Notes       string         `json:"notes,omitempty" db:"notes"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty" db:"processed_at"`
	ProcessedBy *int           `json:"processed_by,omitempty" db:"processed_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}
