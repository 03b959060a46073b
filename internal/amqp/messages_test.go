package amqp

import (
	"testing"
	"time"
)

func TestLedgerEventMessage_JSONRoundTrip(t *testing.T) {
	original := &LedgerEventMessage{
		Operation: "delete",
		UserID:    42,
		ItemKind:  "transaction",
		ItemID:    7,
		Timestamp: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := LedgerEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if decoded.Operation != original.Operation {
		t.Errorf("Operation = %q, want %q", decoded.Operation, original.Operation)
	}
	if decoded.UserID != original.UserID {
		t.Errorf("UserID = %d, want %d", decoded.UserID, original.UserID)
	}
	if decoded.ItemKind != original.ItemKind {
		t.Errorf("ItemKind = %q, want %q", decoded.ItemKind, original.ItemKind)
	}
	if decoded.ItemID != original.ItemID {
		t.Errorf("ItemID = %d, want %d", decoded.ItemID, original.ItemID)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
}

func TestLedgerEventMessageFromJSON_Invalid(t *testing.T) {
	if _, err := LedgerEventMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewLedgerEventMessage(t *testing.T) {
	before := time.Now().UTC()
	msg := NewLedgerEventMessage("create", 1, "note", 99)
	after := time.Now().UTC()

	if msg.Operation != "create" || msg.UserID != 1 || msg.ItemKind != "note" || msg.ItemID != 99 {
		t.Errorf("unexpected message fields: %+v", msg)
	}
	if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
		t.Errorf("Timestamp %v not between %v and %v", msg.Timestamp, before, after)
	}
}
