package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taxmint/backend/internal/audit"
	"github.com/taxmint/backend/internal/models"
)

var (
	// ErrAccountNotFound means no savings account row exists yet for the
	// user. Accounts are only created by a first deposit.
	ErrAccountNotFound = errors.New("savings account not found")

	// ErrInsufficientBalance is the internal debit guard against the raw
	// account balance. The user-facing request guard is
	// ErrInsufficientAvailableBalance in the withdrawal service.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// SavingsLedgerService owns every mutation of savings_accounts. Credit and
// debit each run as a single transaction that locks the account row, so two
// concurrent debits can never both pass a stale balance check.
type SavingsLedgerService struct {
	db    *sql.DB
	audit *audit.Logger
}

func NewSavingsLedgerService(db *sql.DB) *SavingsLedgerService {
	return &SavingsLedgerService{
		db:    db,
		audit: audit.NewLogger(),
	}
}

// Credit atomically increases the balance and the matching cumulative
// counter, and appends a journal entry carrying the post-credit balance.
// A DEPOSIT credit creates the account row if this is the user's first
// deposit; an INTEREST credit requires an existing account.
func (s *SavingsLedgerService) Credit(ctx context.Context, userID int, amount int64, entryType string, reference *string) (*models.JournalEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entry, err := s.CreditTx(tx, userID, amount, entryType, reference)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	ref := ""
	if reference != nil {
		ref = *reference
	}
	s.audit.LogLedgerEntry(userID, entryType, amount, entry.BalanceAfter, ref)
	return entry, nil
}

// Debit atomically checks balance >= amount, decreases the balance, bumps
// total_withdrawals and flags the account as having withdrawn this quarter.
func (s *SavingsLedgerService) Debit(ctx context.Context, userID int, amount int64, entryType string) (*models.JournalEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entry, err := s.DebitTx(tx, userID, amount, entryType)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.LogLedgerEntry(userID, entryType, amount, entry.BalanceAfter, "")
	return entry, nil
}

// CreditTx is Credit composed into a caller-owned transaction.
func (s *SavingsLedgerService) CreditTx(tx *sql.Tx, userID int, amount int64, entryType string, reference *string) (*models.JournalEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	if entryType == models.EntryDeposit {
		// First deposit creates the account row.
		if _, err := tx.Exec(`
			INSERT INTO savings_accounts (user_id, balance, total_deposits, total_withdrawals, total_interest, has_withdrawal_this_quarter, version, updated_at)
			VALUES ($1, 0, 0, 0, 0, FALSE, 1, NOW())
			ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return nil, err
		}
	}

	account, err := s.lockAccount(tx, userID)
	if err != nil {
		return nil, err
	}

	account.Balance += amount
	switch entryType {
	case models.EntryDeposit:
		account.TotalDeposits += amount
	case models.EntryInterest:
		account.TotalInterest += amount
		now := time.Now()
		account.LastInterestDate = &now
	default:
		return nil, fmt.Errorf("unsupported credit entry type %q", entryType)
	}

	entry, err := s.appendJournalEntry(tx, userID, entryType, amount, account.Balance, reference)
	if err != nil {
		return nil, err
	}

	if err := s.updateAccount(tx, account); err != nil {
		return nil, err
	}

	return entry, nil
}

// DebitTx is Debit composed into a caller-owned transaction. The balance
// check and the write happen under the same row lock, which is what makes
// concurrent withdrawal approvals safe.
func (s *SavingsLedgerService) DebitTx(tx *sql.Tx, userID int, amount int64, entryType string) (*models.JournalEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	account, err := s.lockAccount(tx, userID)
	if err != nil {
		return nil, err
	}

	if account.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	account.Balance -= amount
	account.TotalWithdrawals += amount
	account.HasWithdrawalThisQuarter = true

	entry, err := s.appendJournalEntry(tx, userID, entryType, amount, account.Balance, nil)
	if err != nil {
		return nil, err
	}

	if err := s.updateAccount(tx, account); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetAccount returns the account row without locking it.
func (s *SavingsLedgerService) GetAccount(userID int) (*models.SavingsAccount, error) {
	var a models.SavingsAccount
	err := s.db.QueryRow(`
		SELECT user_id, balance, total_deposits, total_withdrawals, total_interest,
		       has_withdrawal_this_quarter, last_interest_date, version, updated_at
		FROM savings_accounts
		WHERE user_id = $1`, userID).
		Scan(&a.UserID, &a.Balance, &a.TotalDeposits, &a.TotalWithdrawals,
			&a.TotalInterest, &a.HasWithdrawalThisQuarter, &a.LastInterestDate, &a.Version, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AvailableBalance is balance minus the sum of the user's pending
// withdrawal requests. It is derived on every read and never stored.
func (s *SavingsLedgerService) AvailableBalance(userID int) (int64, error) {
	var available int64
	err := s.db.QueryRow(`
		SELECT a.balance - COALESCE(
			(SELECT SUM(w.amount) FROM withdrawal_requests w
			 WHERE w.user_id = a.user_id AND w.status = 'PENDING'), 0)
		FROM savings_accounts a
		WHERE a.user_id = $1`, userID).Scan(&available)
	if err == sql.ErrNoRows {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	return available, nil
}

// ListJournal returns the newest journal entries for a user.
func (s *SavingsLedgerService) ListJournal(userID, limit int) ([]models.JournalEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, entry_type, amount, balance_after, reference, created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.Reference, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SavingsLedgerService) lockAccount(tx *sql.Tx, userID int) (*models.SavingsAccount, error) {
	var a models.SavingsAccount
	err := tx.QueryRow(`
		SELECT user_id, balance, total_deposits, total_withdrawals, total_interest,
		       has_withdrawal_this_quarter, last_interest_date, version, updated_at
		FROM savings_accounts
		WHERE user_id = $1
		FOR UPDATE`, userID).
		Scan(&a.UserID, &a.Balance, &a.TotalDeposits, &a.TotalWithdrawals,
			&a.TotalInterest, &a.HasWithdrawalThisQuarter, &a.LastInterestDate, &a.Version, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SavingsLedgerService) appendJournalEntry(tx *sql.Tx, userID int, entryType string, amount, balanceAfter int64, reference *string) (*models.JournalEntry, error) {
	entry := &models.JournalEntry{
		UserID:       userID,
		EntryType:    entryType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reference:    reference,
		CreatedAt:    time.Now(),
	}

	err := tx.QueryRow(`
		INSERT INTO journal_entries (user_id, entry_type, amount, balance_after, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		userID, entryType, amount, balanceAfter, reference, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *SavingsLedgerService) updateAccount(tx *sql.Tx, a *models.SavingsAccount) error {
	result, err := tx.Exec(`
		UPDATE savings_accounts
		SET balance = $1, total_deposits = $2, total_withdrawals = $3, total_interest = $4,
		    has_withdrawal_this_quarter = $5, last_interest_date = $6,
		    version = version + 1, updated_at = $7
		WHERE user_id = $8 AND version = $9`,
		a.Balance, a.TotalDeposits, a.TotalWithdrawals, a.TotalInterest,
		a.HasWithdrawalThisQuarter, a.LastInterestDate, time.Now(), a.UserID, a.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %d", a.UserID)
	}

	return nil
}
