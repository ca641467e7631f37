package amqp

import (
	"encoding/json"
	"time"
)

// Ledger parts named in change messages.
const (
	PartExpenses = "expenses"
	PartIncome   = "income"
	PartBudgets  = "budgets"
)

// LedgerChangedMessage announces that one part of a user's ledger was
// rewritten. It carries no amounts; consumers reload the ledger if they need it.
type LedgerChangedMessage struct {
	Username  string    `json:"username"`
	Part      string    `json:"part"`
	Operation string    `json:"operation"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time
func NewLedgerChangedMessage(username, part, operation string, records int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Username:  username,
		Part:      part,
		Operation: operation,
		Records:   records,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
