package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/lib/pq"
	"github.com/taxmint/backend/internal/audit"
	"github.com/taxmint/backend/internal/config"
	"github.com/taxmint/backend/internal/gateway"
	"github.com/taxmint/backend/internal/models"
)

var (
	// ErrBelowMinimum rejects deposits under the configured floor before
	// any gateway session is opened.
	ErrBelowMinimum = errors.New("deposit amount below minimum")

	// ErrGatewayVerification means settlement could not be confirmed. No
	// ledger trace is left behind this error.
	ErrGatewayVerification = errors.New("gateway verification failed")

	// ErrUnknownReference means the reference was never issued by us.
	ErrUnknownReference = errors.New("unknown payment reference")
)

// PaymentGateway is the slice of the hosted-payments API the deposit flow
// needs. The concrete client lives in internal/gateway.
type PaymentGateway interface {
	Initialize(ctx context.Context, amount int64, email, callbackURL string) (*gateway.InitResult, error)
	Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error)
}

// DepositService runs the two-step deposit flow: open a hosted checkout
// session, then credit the ledger once the gateway confirms settlement.
// Verification is idempotent on the payment reference.
type DepositService struct {
	db        *sql.DB
	gateway   PaymentGateway
	ledger    *SavingsLedgerService
	qr        *QRService
	validator *ValidationHelper
	audit     *audit.Logger
	cfg       *config.SavingsConfig
}

func NewDepositService(db *sql.DB, redisClient *redis.Client, gw PaymentGateway) *DepositService {
	cfg := config.LoadSavingsConfig()
	return &DepositService{
		db:        db,
		gateway:   gw,
		ledger:    NewSavingsLedgerService(db),
		qr:        NewQRService(db, redisClient, cfg.DepositSessionTTL),
		validator: NewValidationHelper(),
		audit:     audit.NewLogger(),
		cfg:       cfg,
	}
}

// InitializeDeposit opens a hosted payment session
// @Summary Initialize a deposit
// @Description Open a hosted checkout session for a savings deposit
// @Tags deposits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{amount=int64} true "Deposit amount in kobo"
// @Success 200 {object} object{authorizationUrl=string,reference=string,qrImage=string}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /savings/deposits/initialize [post]
func (s *DepositService) InitializeDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	session, err := s.initializeDeposit(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, ErrBelowMinimum) {
			SendErrorResponse(w, fmt.Sprintf("Minimum deposit is %d kobo", s.cfg.MinimumDeposit), http.StatusBadRequest, nil)
			return
		}
		log.Printf("[DEPOSIT] Initialize failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to initialize deposit", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// VerifyDeposit confirms settlement and credits the ledger
// @Summary Verify a deposit
// @Description Confirm settlement of a payment reference and credit the savings account. Safe to call repeatedly.
// @Tags deposits
// @Produce json
// @Security BearerAuth
// @Param reference query string true "Payment reference"
// @Success 200 {object} object{credited=bool,entry=models.JournalEntry}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /savings/deposits/verify [get]
func (s *DepositService) VerifyDeposit(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		SendErrorResponse(w, "reference is required", http.StatusBadRequest, nil)
		return
	}

	entry, replayed, err := s.verifyDeposit(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownReference):
			SendErrorResponse(w, "Unknown payment reference", http.StatusNotFound, nil)
		case errors.Is(err, ErrGatewayVerification):
			log.Printf("[DEPOSIT] Verification failed for reference %s: %v", reference, err)
			SendErrorResponse(w, "Payment could not be verified", http.StatusBadGateway, nil)
		default:
			log.Printf("[DEPOSIT] Verify failed for reference %s: %v", reference, err)
			SendErrorResponse(w, "Failed to verify deposit", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"credited": !replayed,
		"entry":    entry,
	})
}

// GetDepositSession resumes a pending checkout session
// @Summary Get a pending deposit session
// @Tags deposits
// @Produce json
// @Security BearerAuth
// @Param reference path string true "Payment reference"
// @Success 200 {object} map[string]any
// @Failure 404 {object} ErrorResponse
// @Router /savings/deposits/{reference}/session [get]
func (s *DepositService) GetDepositSession(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	session, err := s.qr.DepositSession(r.Context(), reference)
	if err != nil {
		SendErrorResponse(w, "Deposit session not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

type depositSession struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
	QRImage          string `json:"qrImage"`
	Amount           int64  `json:"amount"`
}

func (s *DepositService) initializeDeposit(ctx context.Context, userID int, amount int64) (*depositSession, error) {
	if amount < s.cfg.MinimumDeposit {
		return nil, ErrBelowMinimum
	}

	var email string
	if err := s.db.QueryRow(`SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
		return nil, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}

	result, err := s.gateway.Initialize(ctx, amount, email, s.cfg.DepositCallbackURL)
	if err != nil {
		return nil, err
	}

	// Record who the reference belongs to before the user is redirected,
	// so the success callback can be tied back to an account.
	if _, err := s.db.Exec(`
		INSERT INTO deposit_sessions (reference, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4)`,
		result.Reference, userID, amount, time.Now()); err != nil {
		return nil, err
	}

	qrImage, err := s.qr.GenerateDepositQR(ctx, result.Reference, result.AuthorizationURL)
	if err != nil {
		// The checkout link still works without the QR image.
		log.Printf("[DEPOSIT] QR generation failed for reference %s: %v", result.Reference, err)
	}

	log.Printf("[DEPOSIT] Session opened for user %d, reference %s, amount %d", userID, result.Reference, amount)
	return &depositSession{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
		QRImage:          qrImage,
		Amount:           amount,
	}, nil
}

// verifyDeposit credits the account exactly once per reference no matter
// how many times the success callback is replayed. The journal's unique
// index on reference is the backstop for concurrent retries.
func (s *DepositService) verifyDeposit(ctx context.Context, reference string) (*models.JournalEntry, bool, error) {
	if entry, err := s.findJournalEntryByReference(reference); err == nil {
		return entry, true, nil
	} else if err != sql.ErrNoRows {
		return nil, false, err
	}

	var userID int
	var sessionAmount int64
	err := s.db.QueryRow(`SELECT user_id, amount FROM deposit_sessions WHERE reference = $1`, reference).
		Scan(&userID, &sessionAmount)
	if err == sql.ErrNoRows {
		return nil, false, ErrUnknownReference
	}
	if err != nil {
		return nil, false, err
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrGatewayVerification, err)
	}
	if !result.Settled {
		return nil, false, ErrGatewayVerification
	}

	if result.Amount != sessionAmount {
		log.Printf("[DEPOSIT] Settled amount %d differs from session amount %d for reference %s; crediting settled amount",
			result.Amount, sessionAmount, reference)
	}

	entry, err := s.ledger.Credit(ctx, userID, result.Amount, models.EntryDeposit, &reference)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// A concurrent verification won the race. Return its entry.
			if prior, lookupErr := s.findJournalEntryByReference(reference); lookupErr == nil {
				return prior, true, nil
			}
		}
		s.audit.LogError(userID, "DEPOSIT_CREDIT", err)
		return nil, false, err
	}

	return entry, false, nil
}

func (s *DepositService) findJournalEntryByReference(reference string) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := s.db.QueryRow(`
		SELECT id, user_id, entry_type, amount, balance_after, reference, created_at
		FROM journal_entries
		WHERE reference = $1`, reference).
		Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.Reference, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// userIDFromContext pulls the authenticated user out of the request context
// set by the auth middleware.
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
