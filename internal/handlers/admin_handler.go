package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taxmint/backend/internal/services"
)

// AdminHandler exposes the admin processing surface: the pending withdrawal
// queue and the quarterly interest operations.
type AdminHandler struct {
	withdrawals *services.WithdrawalService
	interest    *services.InterestService
	validator   *services.ValidationHelper
}

func NewAdminHandler(withdrawals *services.WithdrawalService, interest *services.InterestService) *AdminHandler {
	return &AdminHandler{
		withdrawals: withdrawals,
		interest:    interest,
		validator:   services.NewValidationHelper(),
	}
}

// ProcessRequestBody is the payload for an admin withdrawal decision.
type ProcessRequestBody struct {
	Action string `json:"action" validate:"required,oneof=APPROVE REJECT"`
	Notes  string `json:"notes" validate:"max=500"`
}

// ListPendingWithdrawals returns the admin processing queue
// @Summary List pending withdrawal requests
// @Description List every pending withdrawal request, oldest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.WithdrawalRequest
// @Failure 403 {string} string "Admin access required"
// @Router /admin/withdrawals [get]
func (h *AdminHandler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	requests, err := h.withdrawals.ListPending(200)
	if err != nil {
		log.Printf("[ADMIN] Failed to list pending withdrawals: %v", err)
		services.SendErrorResponse(w, "Failed to load pending withdrawals", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, requests)
}

// ProcessWithdrawal applies an approve or reject decision
// @Summary Process a withdrawal request
// @Description Approve or reject a pending withdrawal request. Approval debits the account atomically with the status change.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Withdrawal request ID"
// @Param request body ProcessRequestBody true "Decision"
// @Success 200 {object} models.WithdrawalRequest
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /admin/withdrawals/{requestId} [post]
func (h *AdminHandler) ProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := userIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	requestID, err := strconv.Atoi(chi.URLParam(r, "requestId"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid request id", http.StatusBadRequest, nil)
		return
	}

	var req ProcessRequestBody

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

	request, err := h.withdrawals.Process(r.Context(), requestID, req.Action, adminID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			services.SendErrorResponse(w, "Withdrawal request not found", http.StatusNotFound, nil)
		case errors.Is(err, services.ErrInvalidState):
			services.SendErrorResponse(w, "Request is no longer pending", http.StatusConflict, nil)
		case errors.Is(err, services.ErrInsufficientBalance):
			// The account can no longer cover the amount; the request stays
			// pending for the admin to reject or retry later.
			services.SendErrorResponse(w, "Account balance no longer covers this request", http.StatusUnprocessableEntity, nil)
		default:
			log.Printf("[ADMIN] Processing failed for request %d: %v", requestID, err)
			services.SendErrorResponse(w, "Failed to process withdrawal request", http.StatusInternalServerError, nil)
		}
		return
	}

	writeJSON(w, request)
}

// RunInterestAccrual credits quarterly interest to eligible accounts
// @Summary Run quarterly interest accrual
// @Description Credit interest to every account without a withdrawal this quarter. Refused if the quarter already ran, unless force=true.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param force query bool false "Re-run even if the quarter was already processed"
// @Success 200 {object} models.InterestRun
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/interest/accrual [post]
func (h *AdminHandler) RunInterestAccrual(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	run, err := h.interest.RunAccrual(r.Context(), time.Now(), force)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateQuarterRun) {
			services.SendErrorResponse(w, "Interest already accrued for this quarter", http.StatusConflict, nil)
			return
		}
		log.Printf("[ADMIN] Interest accrual failed: %v", err)
		services.SendErrorResponse(w, "Failed to run interest accrual", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, run)
}

// ResetQuarterFlags clears per-account withdrawal flags for a new quarter
// @Summary Reset quarterly withdrawal flags
// @Description Clear has-withdrawal flags on every account at the start of a quarter. Refused if already run this quarter, unless force=true.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param force query bool false "Re-run even if the quarter was already reset"
// @Success 200 {object} models.InterestRun
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/interest/reset [post]
func (h *AdminHandler) ResetQuarterFlags(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	run, err := h.interest.ResetQuarter(r.Context(), time.Now(), force)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateQuarterRun) {
			services.SendErrorResponse(w, "Quarter flags already reset", http.StatusConflict, nil)
			return
		}
		log.Printf("[ADMIN] Quarter reset failed: %v", err)
		services.SendErrorResponse(w, "Failed to reset quarter flags", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, run)
}
