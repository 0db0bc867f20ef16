package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/taxmint/backend/internal/config"
	"github.com/taxmint/backend/internal/models"
)

// ErrDuplicateQuarterRun guards against running accrual or the quarter
// reset twice for the same quarter, which would double-pay interest or
// grant eligibility mid-quarter.
var ErrDuplicateQuarterRun = errors.New("quarter already processed")

// InterestService runs the quarterly interest batch. Accrual credits every
// account that did not withdraw this quarter; the flag reset is a separate,
// separately-invoked operation so eligibility for the next quarter is never
// granted as a side effect of accrual.
type InterestService struct {
	db      *sql.DB
	ledger  *SavingsLedgerService
	rateBps int64
}

func NewInterestService(db *sql.DB) *InterestService {
	cfg := config.LoadSavingsConfig()
	return &InterestService{
		db:      db,
		ledger:  NewSavingsLedgerService(db),
		rateBps: int64(cfg.QuarterlyRateBps),
	}
}

// QuarterLabel names the quarter containing t, e.g. "2026-Q3".
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

// RunAccrual credits interest to every eligible account. Each account is
// its own transaction, so a failure on one account does not roll back the
// others; failed accounts are logged and skipped. A quarter that already
// has an accrual run recorded is refused unless force is set.
func (s *InterestService) RunAccrual(ctx context.Context, now time.Time, force bool) (*models.InterestRun, error) {
	quarter := QuarterLabel(now)

	if !force {
		done, err := s.hasRun(quarter, models.RunAccrual)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, fmt.Errorf("%w: accrual for %s", ErrDuplicateQuarterRun, quarter)
		}
	}

	rows, err := s.db.Query(`
		SELECT user_id, balance FROM savings_accounts
		WHERE has_withdrawal_this_quarter = FALSE AND balance > 0
		ORDER BY user_id`)
	if err != nil {
		return nil, err
	}

	type eligible struct {
		userID  int
		balance int64
	}
	var accounts []eligible
	for rows.Next() {
		var a eligible
		if err := rows.Scan(&a.userID, &a.balance); err != nil {
			rows.Close()
			return nil, err
		}
		accounts = append(accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var totalInterest int64
	var affected int
	for _, a := range accounts {
		interest := a.balance * s.rateBps / 10000
		if interest <= 0 {
			continue
		}

		if _, err := s.ledger.Credit(ctx, a.userID, interest, models.EntryInterest, nil); err != nil {
			log.Printf("[INTEREST] Failed to credit account %d: %v", a.userID, err)
			continue
		}

		totalInterest += interest
		affected++
	}

	run, err := s.recordRun(quarter, models.RunAccrual, totalInterest, affected)
	if err != nil {
		return nil, err
	}

	log.Printf("[INTEREST] Accrual for %s credited %d kobo across %d accounts", quarter, totalInterest, affected)
	return run, nil
}

// ResetQuarter clears has_withdrawal_this_quarter on every account. Run at
// the start of a quarter, never as part of accrual.
func (s *InterestService) ResetQuarter(ctx context.Context, now time.Time, force bool) (*models.InterestRun, error) {
	quarter := QuarterLabel(now)

	if !force {
		done, err := s.hasRun(quarter, models.RunReset)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, fmt.Errorf("%w: reset for %s", ErrDuplicateQuarterRun, quarter)
		}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE savings_accounts
		SET has_withdrawal_this_quarter = FALSE, version = version + 1, updated_at = NOW()
		WHERE has_withdrawal_this_quarter = TRUE`)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	run, err := s.recordRun(quarter, models.RunReset, 0, int(affected))
	if err != nil {
		return nil, err
	}

	log.Printf("[INTEREST] Quarter reset for %s cleared %d accounts", quarter, affected)
	return run, nil
}

func (s *InterestService) hasRun(quarter, runType string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM interest_runs WHERE quarter = $1 AND run_type = $2)`,
		quarter, runType).Scan(&exists)
	return exists, err
}

func (s *InterestService) recordRun(quarter, runType string, totalInterest int64, affected int) (*models.InterestRun, error) {
	run := &models.InterestRun{
		Quarter:          quarter,
		RunType:          runType,
		TotalInterest:    totalInterest,
		AccountsAffected: affected,
		CreatedAt:        time.Now(),
	}

	err := s.db.QueryRow(`
		INSERT INTO interest_runs (quarter, run_type, total_interest, accounts_affected, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		quarter, runType, totalInterest, affected, run.CreatedAt).Scan(&run.ID)
	if err != nil {
		return nil, err
	}

	return run, nil
}
