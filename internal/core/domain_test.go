package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionType
		wantErr bool
	}{
		{input: "income", want: Income},
		{input: "expense", want: Expense},
		{input: " income ", want: Income},
		{input: "", wantErr: true},
		{input: "transfer", wantErr: true},
		{input: "INCOME", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTransactionType(%q) expected error", tt.input)
				}
				if !IsValidation(err) {
					t.Errorf("ParseTransactionType(%q) error = %v, want ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTransactionType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTransactionType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNoteValidate(t *testing.T) {
	if err := (Note{Content: "buy milk"}).Validate(); err != nil {
		t.Errorf("valid note rejected: %v", err)
	}
	if err := (Note{Content: "   "}).Validate(); err == nil {
		t.Error("blank note accepted")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Description: "salary",
		Amount:      decimal.RequireFromString("1500"),
		Type:        Income,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(tx *Transaction)
	}{
		{"blank description", func(tx *Transaction) { tx.Description = "  " }},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.RequireFromString("-1") }},
		{"invalid type", func(tx *Transaction) { tx.Type = "refund" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}
