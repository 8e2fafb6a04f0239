package money

import (
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	m := New(123456, EUR)
	if m.Amount() != 123456 {
		t.Errorf("Expected 123456, got %d", m.Amount())
	}
	if m.Currency() != "EUR" {
		t.Errorf("Expected EUR, got %s", m.Currency())
	}
}

func TestNilMoneyIsSafe(t *testing.T) {
	var m *Money
	if m.Amount() != 0 {
		t.Errorf("Expected 0, got %d", m.Amount())
	}
	if m.Currency() != "" {
		t.Errorf("Expected empty currency, got %s", m.Currency())
	}
	if !m.IsZero() {
		t.Error("Expected nil money to be zero")
	}
}

func TestAdd(t *testing.T) {
	sum, err := New(100, EUR).Add(New(50, EUR))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sum.Amount() != 150 {
		t.Errorf("Expected 150, got %d", sum.Amount())
	}
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	if _, err := New(100, EUR).Add(New(50, USD)); err == nil {
		t.Error("Expected error for mismatched currencies")
	}
}

func TestSubtract(t *testing.T) {
	diff, err := New(100, EUR).Subtract(New(30, EUR))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff.Amount() != 70 {
		t.Errorf("Expected 70, got %d", diff.Amount())
	}
}

func TestString(t *testing.T) {
	if got := New(123456, EUR).String(); got != "EUR 1234.56" {
		t.Errorf("Expected 'EUR 1234.56', got '%s'", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(New(50990, EUR))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var m Money
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Amount() != 50990 || m.Currency() != "EUR" {
		t.Errorf("Round trip lost data: %d %s", m.Amount(), m.Currency())
	}
}
