package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage describes one committed mutation against a user's notes
// list or transaction ledger. Consumers append these to the audit trail.
type LedgerEventMessage struct {
	Operation string    `json:"operation"`
	UserID    int64     `json:"user_id"`
	ItemKind  string    `json:"item_kind"`
	ItemID    int64     `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event message stamped with the current time.
func NewLedgerEventMessage(operation string, userID int64, itemKind string, itemID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Operation: operation,
		UserID:    userID,
		ItemKind:  itemKind,
		ItemID:    itemID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
