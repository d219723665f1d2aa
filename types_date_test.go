package allocation

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2025, 7, 31)
	d2 := NewDate(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	today := Today()
	currentYear := today.Year()
	currentMonth := today.Month()

	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		// Standard ISO Format (Fallback)
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{"invalid-date", Date{}, true},

		// Relative Duration Format
		{"0d", today, false},
		{"-1d", today.Add(-1), false},
		{"+1d", today.Add(1), false},
		{"1d", Date{}, true},
		{"-0d", today, false},
		{"+0d", today, false},
		{"-2w", today.Add(-14), false},
		{"+1m", NewDate(currentYear, currentMonth+1, today.Day()), false},
		{"-3q", NewDate(currentYear, currentMonth-9, today.Day()), false},
		{"+1y", NewDate(currentYear+1, currentMonth, today.Day()), false},
		{"-1y", NewDate(currentYear-1, currentMonth, today.Day()), false},

		// [MM-]DD Format
		{"27", NewDate(currentYear, currentMonth, 27), false},
		{fmt.Sprintf("%d-27", currentMonth), NewDate(currentYear, currentMonth, 27), false},
		{"0", NewDate(currentYear, currentMonth, 0), false},                               // Last day of previous month
		{fmt.Sprintf("%d-0", currentMonth), NewDate(currentYear, currentMonth, 0), false}, // Last day of previous month
		{"1-15", NewDate(currentYear, time.January, 15), false},
		{"0-15", NewDate(currentYear-1, time.December, 15), false},
		{"1-0", NewDate(currentYear-1, time.December, 31), false}, // Last day of previous year
		{"0-0", NewDate(currentYear-1, time.November, 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected Date
		wantErr  bool
	}{
		{
			// Data files carry real dates, an empty one is a corruption.
			name:    "Empty string",
			json:    `""`,
			wantErr: true,
		},
		{
			name:     "Non-Zero Date",
			json:     `"2024-05-21"`,
			expected: NewDate(2024, 5, 21),
			wantErr:  false,
		},
		{
			name:     "Lenient Date",
			json:     `"2024-5-2"`,
			expected: NewDate(2024, 5, 2),
			wantErr:  false,
		},
		{
			name:    "Invalid Date",
			json:    `"not-a-date"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.json), &d)
			if (err != nil) != tt.wantErr {
				t.Errorf("json.Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d != tt.expected {
				t.Errorf("json.Unmarshal() got = %v, want %v", d, tt.expected)
			}
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(NewDate(2024, 5, 21))
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(got) != `"2024-05-21"` {
		t.Errorf("json.Marshal() = %s, want \"2024-05-21\"", got)
	}

	var back Date
	if err := json.Unmarshal(got, &back); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if back != NewDate(2024, 5, 21) {
		t.Errorf("round trip got %v, want 2024-05-21", back)
	}
}

func TestDateArithmetic(t *testing.T) {
	if got := NewDate(2024, 12, 31).Add(1); got != NewDate(2025, 1, 1) {
		t.Errorf("Add(1) = %v, want 2025-01-01", got)
	}
	if got := NewDate(2024, 2, 29).AddYears(1); got != NewDate(2025, 3, 1) {
		t.Errorf("AddYears(1) on a leap day = %v, want 2025-03-01", got)
	}
	if got := NewDate(2025, 1, 31).AddMonths(1); got != NewDate(2025, 3, 3) {
		t.Errorf("AddMonths(1) = %v, want the normalized 2025-03-03", got)
	}
	if got := NewDate(2025, 1, 1).Sub(NewDate(2024, 1, 1)); got != 366 {
		t.Errorf("Sub() across a leap year = %d days, want 366", got)
	}
	if got := NewDate(2024, 1, 1).Sub(NewDate(2025, 1, 1)); got != -366 {
		t.Errorf("Sub() backwards = %d days, want -366", got)
	}

	d1, d2 := NewDate(2025, 6, 1), NewDate(2025, 6, 2)
	if !d1.Before(d2) || d1.After(d2) || d1.Before(d1) {
		t.Error("Before/After ordering is wrong")
	}
	if !(Date{}).IsZero() || d1.IsZero() {
		t.Error("IsZero() is wrong")
	}

	if got := NewDate(2025, 7, 1).String(); got != "2025-07-01" {
		t.Errorf("String() = %q, want 2025-07-01", got)
	}
	if got := NewDate(2025, 7, 1).Format("01.2006"); got != "07.2025" {
		t.Errorf("Format(01.2006) = %q, want 07.2025", got)
	}
}
