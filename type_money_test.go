package allocation

import (
	"encoding/json"
	"testing"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "$0.00"},
		{1.5, "$1.50"},
		{5400, "$5,400.00"},
		{-130, "-$130.00"},
		{1000000, "$1,000,000.00"},
	}
	for _, tc := range tests {
		if got := Dollars(tc.value).String(); got != tc.want {
			t.Errorf("Dollars(%v).String() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMoneySignedString(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "+$0.00"},
		{1, "+$1.00"},
		{-1, "-$1.00"},
	}
	for _, tc := range tests {
		if got := Dollars(tc.value).SignedString(); got != tc.want {
			t.Errorf("Dollars(%v).SignedString() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

// Round goes to the currency fraction, half away from zero.
func TestMoneyRound(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{100.004, 100},
		{100.005, 100.01},
		{-2.345, -2.35},
	}
	for _, tc := range tests {
		if got := Dollars(tc.value).Round(); !got.Equal(Dollars(tc.want)) {
			t.Errorf("Dollars(%v).Round() = %s, want %v", tc.value, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := Dollars(10).Add(Dollars(2.5)); !got.Equal(Dollars(12.5)) {
		t.Errorf("Add() = %s, want $12.50", got)
	}
	if got := Dollars(10).Sub(Dollars(3)); !got.Equal(Dollars(7)) {
		t.Errorf("Sub() = %s, want $7.00", got)
	}
	if got := Dollars(5).Neg(); !got.Equal(Dollars(-5)) {
		t.Errorf("Neg() = %s, want -$5.00", got)
	}
	if got := Dollars(-5).Abs(); !got.Equal(Dollars(5)) {
		t.Errorf("Abs() = %s, want $5.00", got)
	}
	if got := Dollars(100).MulFloat(0.25); !got.Equal(Dollars(25)) {
		t.Errorf("MulFloat(0.25) = %s, want $25.00", got)
	}
	if got := Dollars(220).Mul(Q(100)); !got.Equal(Dollars(22000)) {
		t.Errorf("Mul(100) = %s, want $22,000.00", got)
	}
	if got := Dollars(22000).Div(Q(100)); !got.Equal(Dollars(220)) {
		t.Errorf("Div(100) = %s, want $220.00", got)
	}
	if got := Dollars(12.34).AsFloat(); got != 12.34 {
		t.Errorf("AsFloat() = %v, want 12.34", got)
	}
	if !Dollars(1).LessThan(Dollars(2)) || !Dollars(2).GreaterThan(Dollars(1)) {
		t.Error("comparison operators are wrong")
	}
}

// The zero Money has no currency and merges with either operand.
func TestMoneyWeakCurrency(t *testing.T) {
	var zero Money
	got := zero.Add(Dollars(5))
	if !got.Equal(Dollars(5)) {
		t.Errorf("zero.Add($5) = %s, want $5.00", got)
	}
	if got.Currency() != DefaultCurrency {
		t.Errorf("zero.Add($5).Currency() = %q, want %q", got.Currency(), DefaultCurrency)
	}
}

func TestMoneyJSON(t *testing.T) {
	got, err := json.Marshal(Dollars(100.005))
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	if string(got) != "100.01" {
		t.Errorf("json.Marshal($100.005) = %s, want the rounded bare number 100.01", got)
	}
	if got, _ := json.Marshal(Dollars(220)); string(got) != "220" {
		t.Errorf("json.Marshal($220) = %s, want 220", got)
	}

	var m Money
	if err := json.Unmarshal([]byte("123.45"), &m); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if !m.Equal(Dollars(123.45)) || m.Currency() != DefaultCurrency {
		t.Errorf("json.Unmarshal(123.45) = %s %s, want $123.45 USD", m, m.Currency())
	}
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Error("json.Unmarshal(abc) did not fail")
	}
}
