package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/taxmint/backend/internal/audit"
	"github.com/taxmint/backend/internal/models"
)

var (
	// ErrInsufficientAvailableBalance is the user-facing request guard. It
	// accounts for other pending holds, unlike the internal debit guard.
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")

	// ErrInvalidPayoutDetails means a bank transfer was requested without a
	// complete destination account.
	ErrInvalidPayoutDetails = errors.New("invalid payout details")

	// ErrInvalidState rejects transitions out of a terminal status.
	ErrInvalidState = errors.New("request is not pending")

	// ErrNotOwner rejects a cancel by anyone but the requesting user.
	ErrNotOwner = errors.New("request belongs to another user")

	// ErrRequestNotFound means no withdrawal request row matches the id.
	ErrRequestNotFound = errors.New("withdrawal request not found")
)

const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

// WithdrawalService manages the two-phase withdrawal workflow: users create
// and cancel pending requests, admins approve or reject them. Admin
// approval is the only operation that debits a savings account.
type WithdrawalService struct {
	db     *sql.DB
	ledger *SavingsLedgerService
	payout *PayoutService
	audit  *audit.Logger
}

func NewWithdrawalService(db *sql.DB) *WithdrawalService {
	return &WithdrawalService{
		db:     db,
		ledger: NewSavingsLedgerService(db),
		payout: NewPayoutService(),
		audit:  audit.NewLogger(),
	}
}

// Request places a pending withdrawal hold against the user's available
// balance. The account row is locked for the duration of the check and
// insert, so stacked requests cannot exceed the true balance.
func (s *WithdrawalService) Request(ctx context.Context, userID int, amount int64, method string, payout *models.PayoutDetails) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive, got %d", amount)
	}

	switch method {
	case models.MethodBankTransfer:
		if payout == nil || payout.BankName == "" || payout.AccountNumber == "" || payout.AccountName == "" {
			return nil, ErrInvalidPayoutDetails
		}
	case models.MethodTaxPayment:
		payout = nil
	default:
		return nil, fmt.Errorf("%w: unsupported method %q", ErrInvalidPayoutDetails, method)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	account, err := s.ledger.lockAccount(tx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := s.pendingHolds(tx, userID)
	if err != nil {
		return nil, err
	}

	if amount > account.Balance-pending {
		return nil, ErrInsufficientAvailableBalance
	}

	request := &models.WithdrawalRequest{
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Payout:    payout,
		Status:    models.WithdrawalPending,
		CreatedAt: time.Now(),
	}

	var bankCode, bankName, accountNumber, accountName any
	if payout != nil {
		bankCode, bankName, accountNumber, accountName = payout.BankCode, payout.BankName, payout.AccountNumber, payout.AccountName
	}

	err = tx.QueryRow(`
		INSERT INTO withdrawal_requests (user_id, amount, method, bank_code, bank_name, account_number, account_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		userID, amount, method, bankCode, bankName, accountNumber, accountName,
		models.WithdrawalPending, request.CreatedAt).Scan(&request.ID)
	if err != nil {
		return nil, err
	}

	// Informational journal entry. The balance is untouched until approval.
	if _, err := s.ledger.appendJournalEntry(tx, userID, models.EntryWithdrawalRequest, amount, account.Balance, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[WITHDRAWAL] Request %d created for user %d, amount %d, method %s", request.ID, userID, amount, method)
	return request, nil
}

// Cancel transitions the caller's own pending request to cancelled.
func (s *WithdrawalService) Cancel(ctx context.Context, requestID, byUserID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ownerID int
	var status string
	err = tx.QueryRow(`
		SELECT user_id, status FROM withdrawal_requests
		WHERE id = $1
		FOR UPDATE`, requestID).Scan(&ownerID, &status)
	if err == sql.ErrNoRows {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	if ownerID != byUserID {
		return ErrNotOwner
	}
	if status != models.WithdrawalPending {
		return ErrInvalidState
	}

	if _, err := tx.Exec(`
		UPDATE withdrawal_requests SET status = $1 WHERE id = $2`,
		models.WithdrawalCancelled, requestID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("[WITHDRAWAL] Request %d cancelled by user %d", requestID, byUserID)
	return nil
}

// Process applies an admin decision to a pending request. Approval debits
// the account and marks the request completed in the same transaction, so
// a crash can never leave a completed request without its debit or a debit
// without its completed request.
func (s *WithdrawalService) Process(ctx context.Context, requestID int, action string, adminID int, notes string) (*models.WithdrawalRequest, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	request, err := s.lockRequest(tx, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.WithdrawalPending {
		return nil, ErrInvalidState
	}

	now := time.Now()
	request.ProcessedAt = &now
	request.ProcessedBy = &adminID
	request.Notes = notes

	if action == ActionApprove {
		// The debit guard checks the raw balance under the account row
		// lock. On insufficient balance the whole transaction rolls back
		// and the request stays pending.
		if _, err := s.ledger.DebitTx(tx, request.UserID, request.Amount, models.EntryWithdrawal); err != nil {
			return nil, err
		}
		request.Status = models.WithdrawalCompleted
	} else {
		request.Status = models.WithdrawalCancelled
	}

	if _, err := tx.Exec(`
		UPDATE withdrawal_requests
		SET status = $1, processed_at = $2, processed_by = $3, notes = $4
		WHERE id = $5`,
		request.Status, request.ProcessedAt, adminID, notes, requestID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.LogWithdrawalDecision(requestID, request.UserID, adminID, action, request.Amount)

	if action == ActionApprove && request.Method == models.MethodBankTransfer {
		// Payout instruction for the ops side; failure here does not undo
		// the approval, it only needs a manual re-issue.
		if err := s.payout.IssueInstruction(request); err != nil {
			log.Printf("[WITHDRAWAL] Payout instruction failed for request %d: %v", requestID, err)
		}
	}

	return request, nil
}

// ListForUser returns the user's withdrawal requests, newest first.
func (s *WithdrawalService) ListForUser(userID, limit int) ([]models.WithdrawalRequest, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, amount, method, bank_code, bank_name, account_number, account_name,
		       status, notes, processed_at, processed_by, created_at
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawalRequests(rows)
}

// ListPending returns every pending request, oldest first, for the admin
// processing queue.
func (s *WithdrawalService) ListPending(limit int) ([]models.WithdrawalRequest, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, amount, method, bank_code, bank_name, account_number, account_name,
		       status, notes, processed_at, processed_by, created_at
		FROM withdrawal_requests
		WHERE status = $1
		ORDER BY id ASC
		LIMIT $2`, models.WithdrawalPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawalRequests(rows)
}

func (s *WithdrawalService) lockRequest(tx *sql.Tx, requestID int) (*models.WithdrawalRequest, error) {
	var r models.WithdrawalRequest
	var bankCode, bankName, accountNumber, accountName, notes sql.NullString
	err := tx.QueryRow(`
		SELECT id, user_id, amount, method, bank_code, bank_name, account_number, account_name,
		       status, notes, processed_at, processed_by, created_at
		FROM withdrawal_requests
		WHERE id = $1
		FOR UPDATE`, requestID).
		Scan(&r.ID, &r.UserID, &r.Amount, &r.Method, &bankCode, &bankName, &accountNumber, &accountName,
			&r.Status, &notes, &r.ProcessedAt, &r.ProcessedBy, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	r.Notes = notes.String
	if bankName.Valid {
		r.Payout = &models.PayoutDetails{
			BankCode:      bankCode.String,
			BankName:      bankName.String,
			AccountNumber: accountNumber.String,
			AccountName:   accountName.String,
		}
	}
	return &r, nil
}

func (s *WithdrawalService) pendingHolds(tx *sql.Tx, userID int) (int64, error) {
	var pending int64
	err := tx.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests
		WHERE user_id = $1 AND status = $2`,
		userID, models.WithdrawalPending).Scan(&pending)
	return pending, err
}

func scanWithdrawalRequests(rows *sql.Rows) ([]models.WithdrawalRequest, error) {
	requests := []models.WithdrawalRequest{}
	for rows.Next() {
		var r models.WithdrawalRequest
		var bankCode, bankName, accountNumber, accountName, notes sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.Amount, &r.Method, &bankCode, &bankName, &accountNumber, &accountName,
			&r.Status, &notes, &r.ProcessedAt, &r.ProcessedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Notes = notes.String
		if bankName.Valid {
			r.Payout = &models.PayoutDetails{
				BankCode:      bankCode.String,
				BankName:      bankName.String,
				AccountNumber: accountNumber.String,
				AccountName:   accountName.String,
			}
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
