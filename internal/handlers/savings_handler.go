package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taxmint/backend/internal/config"
	"github.com/taxmint/backend/internal/models"
	"github.com/taxmint/backend/internal/services"
)

// SavingsHandler exposes the user-facing savings surface: account summary,
// journal history and the withdrawal request lifecycle.
type SavingsHandler struct {
	ledger      *services.SavingsLedgerService
	withdrawals *services.WithdrawalService
	validator   *services.ValidationHelper
	cfg         *config.SavingsConfig
}

func NewSavingsHandler(ledger *services.SavingsLedgerService, withdrawals *services.WithdrawalService) *SavingsHandler {
	return &SavingsHandler{
		ledger:      ledger,
		withdrawals: withdrawals,
		validator:   services.NewValidationHelper(),
		cfg:         config.LoadSavingsConfig(),
	}
}

// AccountSummary is the account view returned to the user.
type AccountSummary struct {
	Balance                  int64  `json:"balance"`
	AvailableBalance         int64  `json:"availableBalance"`
	TotalDeposits            int64  `json:"totalDeposits"`
	TotalWithdrawals         int64  `json:"totalWithdrawals"`
	TotalInterest            int64  `json:"totalInterest"`
	HasWithdrawalThisQuarter bool   `json:"hasWithdrawalThisQuarter"`
	LastInterestDate         string `json:"lastInterestDate,omitempty"`
}

// WithdrawalRequestBody is the payload for creating a withdrawal request.
type WithdrawalRequestBody struct {
	Amount int64                 `json:"amount" validate:"required,gt=0"`
	Method string                `json:"method" validate:"required,oneof=BANK_TRANSFER TAX_PAYMENT"`
	Payout *models.PayoutDetails `json:"payoutDetails,omitempty"`
}

// GetAccount returns the savings account summary
// @Summary Get savings account
// @Description Get the authenticated user's savings account summary. Users without a deposit yet get a zeroed summary.
// @Tags savings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountSummary
// @Failure 401 {object} services.ErrorResponse
// @Router /savings/account [get]
func (h *SavingsHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := h.ledger.GetAccount(userID)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			// No deposit yet. A zeroed summary, not a 404.
			writeJSON(w, AccountSummary{})
			return
		}
		log.Printf("[SAVINGS] Failed to load account for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Failed to load account", http.StatusInternalServerError, nil)
		return
	}

	available, err := h.ledger.AvailableBalance(userID)
	if err != nil {
		log.Printf("[SAVINGS] Failed to compute available balance for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Failed to load account", http.StatusInternalServerError, nil)
		return
	}

	summary := AccountSummary{
		Balance:                  account.Balance,
		AvailableBalance:         available,
		TotalDeposits:            account.TotalDeposits,
		TotalWithdrawals:         account.TotalWithdrawals,
		TotalInterest:            account.TotalInterest,
		HasWithdrawalThisQuarter: account.HasWithdrawalThisQuarter,
	}
	if account.LastInterestDate != nil {
		summary.LastInterestDate = account.LastInterestDate.Format("2006-01-02")
	}

	writeJSON(w, summary)
}

// GetJournal returns recent ledger entries
// @Summary Get journal history
// @Description List the newest journal entries for the authenticated user
// @Tags savings
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries to return"
// @Success 200 {array} models.JournalEntry
// @Failure 401 {object} services.ErrorResponse
// @Router /savings/journal [get]
func (h *SavingsHandler) GetJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := h.cfg.JournalPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= h.cfg.JournalPageSize {
			limit = n
		}
	}

	entries, err := h.ledger.ListJournal(userID, limit)
	if err != nil {
		log.Printf("[SAVINGS] Failed to list journal for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Failed to load journal", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, entries)
}

// RequestWithdrawal creates a pending withdrawal request
// @Summary Request a withdrawal
// @Description Place a pending withdrawal hold against the available balance. Funds move only after admin approval.
// @Tags withdrawals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WithdrawalRequestBody true "Withdrawal request"
// @Success 201 {object} models.WithdrawalRequest
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /savings/withdrawals [post]
func (h *SavingsHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req WithdrawalRequestBody

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	request, err := h.withdrawals.Request(r.Context(), userID, req.Amount, req.Method, req.Payout)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientAvailableBalance):
			services.SendErrorResponse(w, "Insufficient available balance", http.StatusUnprocessableEntity, nil)
		case errors.Is(err, services.ErrInvalidPayoutDetails):
			services.SendErrorResponse(w, "Invalid payout details", http.StatusBadRequest, nil)
		case errors.Is(err, services.ErrAccountNotFound):
			services.SendErrorResponse(w, "No savings account", http.StatusUnprocessableEntity, nil)
		default:
			log.Printf("[SAVINGS] Withdrawal request failed for user %d: %v", userID, err)
			services.SendErrorResponse(w, "Failed to create withdrawal request", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

// CancelWithdrawal cancels the caller's own pending request
// @Summary Cancel a withdrawal request
// @Description Cancel a pending withdrawal request. Only the requesting user may cancel, and only while pending.
// @Tags withdrawals
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Withdrawal request ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /savings/withdrawals/{requestId} [delete]
func (h *SavingsHandler) CancelWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	requestID, err := strconv.Atoi(chi.URLParam(r, "requestId"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid request id", http.StatusBadRequest, nil)
		return
	}

	if err := h.withdrawals.Cancel(r.Context(), requestID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			services.SendErrorResponse(w, "Withdrawal request not found", http.StatusNotFound, nil)
		case errors.Is(err, services.ErrNotOwner):
			services.SendErrorResponse(w, "Not your withdrawal request", http.StatusForbidden, nil)
		case errors.Is(err, services.ErrInvalidState):
			services.SendErrorResponse(w, "Request is no longer pending", http.StatusConflict, nil)
		default:
			log.Printf("[SAVINGS] Cancel failed for request %d: %v", requestID, err)
			services.SendErrorResponse(w, "Failed to cancel withdrawal request", http.StatusInternalServerError, nil)
		}
		return
	}

	writeJSON(w, map[string]string{"message": "Withdrawal request cancelled"})
}

// ListWithdrawals returns the user's withdrawal requests
// @Summary List withdrawal requests
// @Description List the authenticated user's withdrawal requests, newest first
// @Tags withdrawals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.WithdrawalRequest
// @Failure 401 {object} services.ErrorResponse
// @Router /savings/withdrawals [get]
func (h *SavingsHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	requests, err := h.withdrawals.ListForUser(userID, h.cfg.JournalPageSize)
	if err != nil {
		log.Printf("[SAVINGS] Failed to list withdrawals for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Failed to load withdrawal requests", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, requests)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func userIDFromContext(ctx context.Context) (int, bool) {
	raw, ok := ctx.Value("userID").(string)
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
