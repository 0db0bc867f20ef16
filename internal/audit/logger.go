package audit

import (
	"encoding/json"
	"log"
	"time"
)

// Event is a single audit record for a balance-affecting operation.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    int       `json:"user_id"`
	Amount    int64     `json:"amount,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (a *Logger) LogLedgerEntry(userID int, entryType string, amount, balanceAfter int64, reference string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: entryType,
		UserID:    userID,
		Amount:    amount,
		Reference: reference,
		Status:    "SUCCESS",
		Details:   map[string]int64{"balance_after": balanceAfter},
	})
}

func (a *Logger) LogWithdrawalDecision(requestID, userID, adminID int, action string, amount int64) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "WITHDRAWAL_" + action,
		UserID:    userID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]int{"request_id": requestID, "processed_by": adminID},
	})
}

func (a *Logger) LogError(userID int, operation string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
