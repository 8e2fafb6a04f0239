package common

import (
	"testing"
)

func TestParseAmount_German(t *testing.T) {
	result, err := ParseAmount("1.234,56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 123456 {
		t.Errorf("Expected 123456, got %d", result)
	}
}

func TestParseAmount_Swiss(t *testing.T) {
	result, err := ParseAmount("1'234.56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 123456 {
		t.Errorf("Expected 123456, got %d", result)
	}
}

func TestParseAmount_US(t *testing.T) {
	result, err := ParseAmount("1,234.56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 123456 {
		t.Errorf("Expected 123456, got %d", result)
	}
}

func TestParseAmount_NegativeSuffixStripped(t *testing.T) {
	// trade confirmations render debits as "509,90-"; the sign is
	// handled by the transaction type, not the amount
	result, err := ParseAmount("-509,90")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 50990 {
		t.Errorf("Expected 50990, got %d", result)
	}
}

func TestParseAmount_NonBreakingSpaces(t *testing.T) {
	result, err := ParseAmount("1 234,56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 123456 {
		t.Errorf("Expected 123456, got %d", result)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	if _, err := ParseAmount("abc"); err == nil {
		t.Error("Expected error for non-numeric input")
	}
	if _, err := ParseAmount(""); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestDetectNumberStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected NumberStyle
	}{
		{"1.234,56", StyleGerman},
		{"1'234.56", StyleSwiss},
		{"1,234.56", StyleUS},
		{"500,00", StyleGerman},
		{"500.00", StyleUS},
		{"1234", StyleGerman},
	}

	for _, tt := range tests {
		result := DetectNumberStyle(tt.input)
		if result != tt.expected {
			t.Errorf("DetectNumberStyle(%q) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}

func TestParseShares_FixedPoint(t *testing.T) {
	result, err := ParseShares("10")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 1_000_000_000 {
		t.Errorf("Expected 1000000000, got %d", result)
	}
}

func TestParseShares_Fractional(t *testing.T) {
	result, err := ParseShares("0,5174")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 51_740_000 {
		t.Errorf("Expected 51740000, got %d", result)
	}
}

func TestParseExchangeRate_KeepsPrecision(t *testing.T) {
	result, err := ParseExchangeRate("1,1613")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1.1613" {
		t.Errorf("Expected '1.1613', got '%s'", result.String())
	}
}

func TestFormatShares(t *testing.T) {
	if got := FormatShares(1_000_000_000); got != "10" {
		t.Errorf("Expected '10', got '%s'", got)
	}
	if got := FormatShares(1_050_000_000); got != "10.5" {
		t.Errorf("Expected '10.5', got '%s'", got)
	}
}
