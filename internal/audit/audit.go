package audit

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/walletfc/backend/internal/models"
)

type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// Logger writes the audit trail as JSON lines on the standard logger.
type Logger struct {
	out *log.Logger
}

func NewLogger() *Logger {
	return &Logger{out: log.Default()}
}

// LogTransaction records a committed ledger record.
func (a *Logger) LogTransaction(t *models.Transaction) {
	details := map[string]string{"type": string(t.Type)}
	if t.FromUserID != nil {
		details["from_user"] = *t.FromUserID
	}
	if t.ToUserID != nil {
		details["to_user"] = *t.ToUserID
	}
	if t.ProductID != nil {
		details["product"] = *t.ProductID
	}

	a.log(Event{
		Timestamp:     time.Now(),
		EventType:     "LEDGER_" + strings.ToUpper(string(t.Type)),
		TransactionID: t.ID,
		Amount:        models.FormatMoney(t.Amount),
		Currency:      string(t.Currency),
		Status:        "SUCCESS",
		Details:       details,
	})
}

func (a *Logger) LogError(operation, userID string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "ERROR",
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *Logger) LogOperation(userID, operation, details string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		UserID:    userID,
		Status:    "SUCCESS",
		Details:   map[string]string{"details": details},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	a.out.Printf("AUDIT: %s", string(data))
}
