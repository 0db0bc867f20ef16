package models

import (
	"time"
)

// Journal entry types. Every balance-affecting event appends an entry with
// the post-event balance so history can be rebuilt without trusting the
// account row.
const (
	EntryDeposit           = "DEPOSIT"
	EntryWithdrawal        = "WITHDRAWAL"
	EntryInterest          = "INTEREST"
	EntryWithdrawalRequest = "WITHDRAWAL_REQUEST" // informational, no balance change
)

// SavingsAccount is the per-user tax savings ledger row. Invariant:
// balance == total_deposits + total_interest - total_withdrawals.
type SavingsAccount struct {
	UserID                   int        `json:"user_id" db:"user_id"`
	Balance                  int64      `json:"balance" db:"balance"` // in kobo
	TotalDeposits            int64      `json:"total_deposits" db:"total_deposits"`
	TotalWithdrawals         int64      `json:"total_withdrawals" db:"total_withdrawals"`
	TotalInterest            int64      `json:"total_interest" db:"total_interest"`
	HasWithdrawalThisQuarter bool       `json:"has_withdrawal_this_quarter" db:"has_withdrawal_this_quarter"`
	LastInterestDate         *time.Time `json:"last_interest_date,omitempty" db:"last_interest_date"`
	Version                  int        `json:"version" db:"version"` // for optimistic locking
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// JournalEntry is append-only and never updated or deleted.
type JournalEntry struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	EntryType    string    `json:"entry_type" db:"entry_type"`
	Amount       int64     `json:"amount" db:"amount"` // in kobo, always > 0
	BalanceAfter int64     `json:"balance_after" db:"balance_after"`
	Reference    *string   `json:"reference,omitempty" db:"reference"` // external payment reference, unique when set
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// InterestRun records one execution of the quarterly interest batch or of
// the quarter-flag reset, keyed by quarter label so a quarter cannot be
// processed twice by accident.
type InterestRun struct {
	ID               int       `json:"id" db:"id"`
	Quarter          string    `json:"quarter" db:"quarter"` // e.g. "2026-Q3"
	RunType          string    `json:"run_type" db:"run_type"`
	TotalInterest    int64     `json:"total_interest" db:"total_interest"`
	AccountsAffected int       `json:"accounts_affected" db:"accounts_affected"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

const (
	RunAccrual = "ACCRUAL"
	RunReset   = "RESET"
)
