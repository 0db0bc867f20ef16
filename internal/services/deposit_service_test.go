package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/taxmint/backend/internal/audit"
	"github.com/taxmint/backend/internal/config"
	"github.com/taxmint/backend/internal/gateway"
	"github.com/taxmint/backend/internal/models"
)

func newTestDepositService(db *sql.DB, gw PaymentGateway) *DepositService {
	return &DepositService{
		db:        db,
		gateway:   gw,
		ledger:    NewSavingsLedgerService(db),
		qr:        NewQRService(db, nil, time.Minute),
		validator: NewValidationHelper(),
		audit:     audit.NewLogger(),
		cfg:       config.LoadSavingsConfig(),
	}
}

func TestDepositService_InitializeDeposit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	t.Run("below minimum is rejected before the gateway", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)

		_, err := service.initializeDeposit(context.Background(), 7, service.cfg.MinimumDeposit-1)
		assert.ErrorIs(t, err, ErrBelowMinimum)
		gw.AssertNotCalled(t, "Initialize")
	})

	t.Run("successful initialization records the session", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		amount := service.cfg.MinimumDeposit

		mock.ExpectQuery("SELECT email FROM users").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("user@example.com"))

		gw.On("Initialize", context.Background(), amount, "user@example.com", service.cfg.DepositCallbackURL).
			Return(&gateway.InitResult{
				AuthorizationURL: "https://checkout.paystack.com/abc123",
				AccessCode:       "abc123",
				Reference:        "ref-abc",
			}, nil)

		mock.ExpectExec("INSERT INTO deposit_sessions").
			WithArgs("ref-abc", 7, amount, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		session, err := service.initializeDeposit(context.Background(), 7, amount)
		assert.NoError(t, err)
		assert.Equal(t, "ref-abc", session.Reference)
		assert.Equal(t, "https://checkout.paystack.com/abc123", session.AuthorizationURL)
		assert.NotEmpty(t, session.QRImage)
		assert.NoError(t, mock.ExpectationsWereMet())
		gw.AssertExpectations(t)
	})

	t.Run("gateway failure opens no session", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		amount := service.cfg.MinimumDeposit

		mock.ExpectQuery("SELECT email FROM users").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("user@example.com"))

		gw.On("Initialize", context.Background(), amount, "user@example.com", service.cfg.DepositCallbackURL).
			Return(nil, errors.New("gateway down"))

		_, err := service.initializeDeposit(context.Background(), 7, amount)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDepositService_VerifyDeposit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	journalColumns := []string{"id", "user_id", "entry_type", "amount", "balance_after", "reference", "created_at"}

	t.Run("first verification credits the account", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		reference := "ref-abc"
		amount := int64(200000)

		// No prior entry for this reference
		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows(journalColumns))

		mock.ExpectQuery("SELECT user_id, amount FROM deposit_sessions").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}).AddRow(7, amount))

		gw.On("Verify", context.Background(), reference).
			Return(&gateway.VerifyResult{Settled: true, Amount: amount, Channel: "card"}, nil)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO savings_accounts").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("(?s)SELECT user_id, balance.*FOR UPDATE").
			WithArgs(7).
			WillReturnRows(accountRow(7, 0, 0, 0, 0, false, 1))
		mock.ExpectQuery("INSERT INTO journal_entries").
			WithArgs(7, models.EntryDeposit, amount, amount, reference, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec("UPDATE savings_accounts").
			WithArgs(amount, amount, int64(0), int64(0), false, nil, sqlmock.AnyArg(), 7, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry, replayed, err := service.verifyDeposit(context.Background(), reference)
		assert.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, amount, entry.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
		gw.AssertExpectations(t)
	})

	t.Run("replayed verification returns the prior entry without crediting", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		reference := "ref-abc"

		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows(journalColumns).
				AddRow(1, 7, models.EntryDeposit, 200000, 200000, reference, time.Now()))

		entry, replayed, err := service.verifyDeposit(context.Background(), reference)
		assert.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, int64(200000), entry.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
		gw.AssertNotCalled(t, "Verify")
	})

	t.Run("unknown reference", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)

		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs("ref-unknown").
			WillReturnRows(sqlmock.NewRows(journalColumns))

		mock.ExpectQuery("SELECT user_id, amount FROM deposit_sessions").
			WithArgs("ref-unknown").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}))

		_, _, err := service.verifyDeposit(context.Background(), "ref-unknown")
		assert.ErrorIs(t, err, ErrUnknownReference)
		gw.AssertNotCalled(t, "Verify")
	})

	t.Run("unsettled payment leaves no ledger trace", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		reference := "ref-pending"

		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows(journalColumns))

		mock.ExpectQuery("SELECT user_id, amount FROM deposit_sessions").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}).AddRow(7, 200000))

		gw.On("Verify", context.Background(), reference).
			Return(&gateway.VerifyResult{Settled: false}, nil)

		_, _, err := service.verifyDeposit(context.Background(), reference)
		assert.ErrorIs(t, err, ErrGatewayVerification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gateway outage fails closed", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		reference := "ref-outage"

		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows(journalColumns))

		mock.ExpectQuery("SELECT user_id, amount FROM deposit_sessions").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}).AddRow(7, 200000))

		gw.On("Verify", context.Background(), reference).
			Return(nil, errors.New("connection refused"))

		_, _, err := service.verifyDeposit(context.Background(), reference)
		assert.ErrorIs(t, err, ErrGatewayVerification)
	})

	t.Run("concurrent verification loses the race and replays", func(t *testing.T) {
		gw := new(MockPaymentGateway)
		service := newTestDepositService(db, gw)
		reference := "ref-race"
		amount := int64(200000)

		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows(journalColumns))

		mock.ExpectQuery("SELECT user_id, amount FROM deposit_sessions").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}).AddRow(7, amount))

		gw.On("Verify", context.Background(), reference).
			Return(&gateway.VerifyResult{Settled: true, Amount: amount}, nil)

		// The unique index on journal_entries.reference trips
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO savings_accounts").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("(?s)SELECT user_id, balance.*FOR UPDATE").
			WithArgs(7).
			WillReturnRows(accountRow(7, amount, amount, 0, 0, false, 2))
		mock.ExpectQuery("INSERT INTO journal_entries").
			WithArgs(7, models.EntryDeposit, amount, amount*2, reference, sqlmock.AnyArg()).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		// The winner's entry is returned instead
		mock.ExpectQuery("(?s)SELECT id, user_id, entry_type.*WHERE reference").
			WithArgs(reference).
			WillReturnRows(sqlmock.NewRows(journalColumns).
				AddRow(1, 7, models.EntryDeposit, amount, amount, reference, time.Now()))

		entry, replayed, err := service.verifyDeposit(context.Background(), reference)
		assert.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, amount, entry.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
