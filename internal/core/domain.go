package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	KindNote        ItemKind = "note"
	KindTransaction ItemKind = "transaction"
)

type (
	// TransactionType is the ledger entry direction.
	TransactionType string

	// ItemKind distinguishes the two position-ordered collections a user owns.
	ItemKind string

	User struct {
		ID           int64
		Username     string
		FirstName    string
		PasswordHash string
		CreatedAt    time.Time
	}

	Session struct {
		Token     string
		UserID    int64
		ExpiresAt time.Time
		CreatedAt time.Time
	}

	// Note is a free-form text item in the owner's ordered notes list.
	Note struct {
		ID       int64
		UserID   int64
		Content  string
		Position int64
	}

	// Transaction is a ledger entry in the owner's ordered transaction list.
	Transaction struct {
		ID          int64
		UserID      int64
		Description string
		Amount      decimal.Decimal
		Type        TransactionType
		Timestamp   time.Time
		Position    int64
	}
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType validates a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", NewValidationError("invalid transaction type")
	}
	return t, nil
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Content) == "" {
		return NewValidationError("note content is required")
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description is required")
	}
	if t.Amount.IsNegative() {
		return NewValidationError("amount must be non negative")
	}
	if !t.Type.Valid() {
		return NewValidationError("invalid transaction type")
	}
	return nil
}
