package common

import (
	"testing"
	"time"
)

func TestParseDate_German(t *testing.T) {
	result, err := ParseDate("15.01.2015")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := time.Date(2015, 1, 15, 0, 0, 0, 0, time.UTC)
	if !result.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestParseDate_GermanMonthName(t *testing.T) {
	result, err := ParseDate("15. März 2021")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Month() != time.March || result.Day() != 15 || result.Year() != 2021 {
		t.Errorf("Expected 2021-03-15, got %v", result)
	}
}

func TestParseDate_MrzAbbreviation(t *testing.T) {
	result, err := ParseDate("1. Mrz 2021")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Month() != time.March {
		t.Errorf("Expected March, got %v", result.Month())
	}
}

func TestParseDate_ISO(t *testing.T) {
	result, err := ParseDate("2021-03-05")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Year() != 2021 || result.Month() != time.March || result.Day() != 5 {
		t.Errorf("Expected 2021-03-05, got %v", result)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := ParseDate("not a date"); err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestParseDateTime(t *testing.T) {
	result, err := ParseDateTime("15.01.2015", "09:04:16")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := time.Date(2015, 1, 15, 9, 4, 16, 0, time.UTC)
	if !result.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestParseDateTime_UnparseableClockFallsBackToDate(t *testing.T) {
	result, err := ParseDateTime("15.01.2015", "??")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := time.Date(2015, 1, 15, 0, 0, 0, 0, time.UTC)
	if !result.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}
