package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/taxmint/backend/internal/models"
	"github.com/taxmint/backend/internal/services"
)

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), "userID", userID)
	return req.WithContext(ctx)
}

func TestSavingsHandler_GetAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	handler := NewSavingsHandler(services.NewSavingsLedgerService(db), services.NewWithdrawalService(db))

	accountColumns := []string{
		"user_id", "balance", "total_deposits", "total_withdrawals", "total_interest",
		"has_withdrawal_this_quarter", "last_interest_date", "version", "updated_at",
	}

	t.Run("existing account with pending hold", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, balance").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(accountColumns).
				AddRow(7, 250000, 300000, 50000, 0, true, nil, 5, time.Now()))

		mock.ExpectQuery("SELECT a.balance").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(210000))

		w := httptest.NewRecorder()
		handler.GetAccount(w, authedRequest(http.MethodGet, "/savings/account", nil, "7"))

		assert.Equal(t, http.StatusOK, w.Code)

		var summary AccountSummary
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, int64(250000), summary.Balance)
		assert.Equal(t, int64(210000), summary.AvailableBalance)
		assert.True(t, summary.HasWithdrawalThisQuarter)
	})

	t.Run("no account yet returns a zeroed summary", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, balance").
			WithArgs(9).
			WillReturnRows(sqlmock.NewRows(accountColumns))

		w := httptest.NewRecorder()
		handler.GetAccount(w, authedRequest(http.MethodGet, "/savings/account", nil, "9"))

		assert.Equal(t, http.StatusOK, w.Code)

		var summary AccountSummary
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, int64(0), summary.Balance)
		assert.Equal(t, int64(0), summary.AvailableBalance)
	})

	t.Run("missing auth context", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetAccount(w, httptest.NewRequest(http.MethodGet, "/savings/account", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSavingsHandler_RequestWithdrawal(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	handler := NewSavingsHandler(services.NewSavingsLedgerService(db), services.NewWithdrawalService(db))

	t.Run("insufficient available balance maps to 422", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT user_id, balance.*FOR UPDATE").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{
				"user_id", "balance", "total_deposits", "total_withdrawals", "total_interest",
				"has_withdrawal_this_quarter", "last_interest_date", "version", "updated_at",
			}).AddRow(7, 100000, 100000, 0, 0, false, nil, 1, time.Now()))
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(7, models.WithdrawalPending).
			WillReturnRows(sqlmock.NewRows([]string{"pending"}).AddRow(90000))
		mock.ExpectRollback()

		body, _ := json.Marshal(WithdrawalRequestBody{Amount: 50000, Method: models.MethodTaxPayment})
		w := httptest.NewRecorder()
		handler.RequestWithdrawal(w, authedRequest(http.MethodPost, "/savings/withdrawals", body, "7"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("bank transfer without payout details maps to 400", func(t *testing.T) {
		body, _ := json.Marshal(WithdrawalRequestBody{Amount: 50000, Method: models.MethodBankTransfer})
		w := httptest.NewRecorder()
		handler.RequestWithdrawal(w, authedRequest(http.MethodPost, "/savings/withdrawals", body, "7"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported method fails validation", func(t *testing.T) {
		body := []byte(`{"amount": 50000, "method": "CASH"}`)
		w := httptest.NewRecorder()
		handler.RequestWithdrawal(w, authedRequest(http.MethodPost, "/savings/withdrawals", body, "7"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSavingsHandler_CancelWithdrawal(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	handler := NewSavingsHandler(services.NewSavingsLedgerService(db), services.NewWithdrawalService(db))

	newCancelRequest := func(requestID, userID string) *http.Request {
		req := authedRequest(http.MethodDelete, "/savings/withdrawals/"+requestID, nil, userID)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("requestId", requestID)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("someone else's request maps to 403", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT user_id, status.*FOR UPDATE").
			WithArgs(11).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow(7, models.WithdrawalPending))
		mock.ExpectRollback()

		w := httptest.NewRecorder()
		handler.CancelWithdrawal(w, newCancelRequest("11", "8"))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("already processed maps to 409", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT user_id, status.*FOR UPDATE").
			WithArgs(11).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow(7, models.WithdrawalCompleted))
		mock.ExpectRollback()

		w := httptest.NewRecorder()
		handler.CancelWithdrawal(w, newCancelRequest("11", "7"))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid id maps to 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.CancelWithdrawal(w, newCancelRequest("abc", "7"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
