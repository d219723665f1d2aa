package allocation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func checkpoint(t *testing.T, date Date, value float64) *Checkpoint {
	t.Helper()
	cp, err := NewCheckpoint(date, Dollars(value))
	if err != nil {
		t.Fatalf("NewCheckpoint(%s) error: %v", date, err)
	}
	return cp
}

func checkpointWithFlows(t *testing.T, date Date, value, inflow, outflow float64) *Checkpoint {
	t.Helper()
	cp, err := NewCheckpointWithFlows(date, Dollars(value), Dollars(inflow), Dollars(outflow))
	if err != nil {
		t.Fatalf("NewCheckpointWithFlows(%s) error: %v", date, err)
	}
	return cp
}

func TestNewCheckpointValidation(t *testing.T) {
	date := NewDate(2021, 1, 1)

	tests := []struct {
		name                   string
		value, inflow, outflow float64
		wantErr                string
	}{
		{"negative value", -1, 0, 0, "portfolio value must be non-negative"},
		{"negative inflow", 100, -1, 0, "inflow must be non-negative"},
		{"negative outflow", 100, 0, -1, "outflow must be non-negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCheckpointWithFlows(date, Dollars(tc.value), Dollars(tc.inflow), Dollars(tc.outflow))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got error %v, want %q", err, tc.wantErr)
			}
		})
	}

	t.Run("value rounds to the cent", func(t *testing.T) {
		cp := checkpoint(t, date, 100.004)
		checkMoney(t, "Value()", cp.Value(), 100.00)
		cp = checkpoint(t, date, 100.006)
		checkMoney(t, "Value()", cp.Value(), 100.01)
	})
}

func TestNewTimeline(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewTimeline(nil)
		if err == nil || !strings.Contains(err.Error(), "at least one checkpoint") {
			t.Errorf("NewTimeline(nil) error = %v, want one about missing checkpoints", err)
		}
	})

	t.Run("sorts by date", func(t *testing.T) {
		timeline, err := NewTimeline([]*Checkpoint{
			checkpoint(t, NewDate(2021, 3, 1), 120),
			checkpoint(t, NewDate(2021, 1, 1), 100),
		})
		if err != nil {
			t.Fatalf("NewTimeline() error: %v", err)
		}
		if timeline.Begin() != NewDate(2021, 1, 1) || timeline.End() != NewDate(2021, 3, 1) {
			t.Errorf("range = %s..%s, want 2021-01-01..2021-03-01", timeline.Begin(), timeline.End())
		}
	})

	t.Run("duplicate dates", func(t *testing.T) {
		_, err := NewTimeline([]*Checkpoint{
			checkpoint(t, NewDate(2021, 1, 1), 100),
			checkpoint(t, NewDate(2021, 1, 1), 120),
		})
		if err == nil || !strings.Contains(err.Error(), "two checkpoints with the same date") {
			t.Errorf("NewTimeline() error = %v, want one about duplicate dates", err)
		}
	})
}

func TestGetCheckpoint(t *testing.T) {
	// $100 at new year, $300 a month later after depositing $150 and
	// withdrawing $50 that day.
	timeline, err := NewTimeline([]*Checkpoint{
		checkpoint(t, NewDate(2021, 1, 1), 100),
		checkpointWithFlows(t, NewDate(2021, 1, 31), 300, 150, 50),
	})
	if err != nil {
		t.Fatalf("NewTimeline() error: %v", err)
	}

	t.Run("interpolates between checkpoints", func(t *testing.T) {
		// Net of the day's flows the end value is $200, mid-month sits
		// halfway between $100 and $200.
		cp, err := timeline.GetCheckpoint(NewDate(2021, 1, 16), true)
		if err != nil {
			t.Fatalf("GetCheckpoint() error: %v", err)
		}
		checkMoney(t, "Value()", cp.Value(), 150)
		if !cp.Inflow().IsZero() || !cp.Outflow().IsZero() {
			t.Errorf("synthetic checkpoint has flows %v/%v, want none", cp.Inflow(), cp.Outflow())
		}
		if cp.Date() != NewDate(2021, 1, 16) {
			t.Errorf("Date() = %s, want 2021-01-16", cp.Date())
		}
		// The synthetic checkpoint is not inserted.
		if timeline.HasCheckpoint(NewDate(2021, 1, 16)) {
			t.Error("HasCheckpoint() = true after interpolation, want false")
		}
	})

	t.Run("exact date returns the stored checkpoint", func(t *testing.T) {
		cp, err := timeline.GetCheckpoint(NewDate(2021, 1, 31), true)
		if err != nil {
			t.Fatalf("GetCheckpoint() error: %v", err)
		}
		checkMoney(t, "Value()", cp.Value(), 300)
		checkMoney(t, "Inflow()", cp.Inflow(), 150)
		checkMoney(t, "Outflow()", cp.Outflow(), 50)
	})

	t.Run("no interpolation", func(t *testing.T) {
		var nferr *NotFoundError
		if _, err := timeline.GetCheckpoint(NewDate(2021, 1, 16), false); !errors.As(err, &nferr) {
			t.Errorf("GetCheckpoint() error = %v, want NotFoundError", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, date := range []Date{NewDate(2020, 12, 31), NewDate(2021, 2, 1)} {
			_, err := timeline.GetCheckpoint(date, true)
			if err == nil || !strings.Contains(err.Error(), "not in the range of the saved checkpoints") {
				t.Errorf("GetCheckpoint(%s) error = %v, want a range error", date, err)
			}
		}
	})
}

func TestInsertCheckpoint(t *testing.T) {
	timeline, err := NewTimeline([]*Checkpoint{
		checkpoint(t, NewDate(2021, 1, 1), 100),
		checkpoint(t, NewDate(2021, 3, 1), 120),
	})
	if err != nil {
		t.Fatalf("NewTimeline() error: %v", err)
	}

	if err := timeline.InsertCheckpoint(checkpoint(t, NewDate(2021, 2, 1), 110), false); err != nil {
		t.Fatalf("InsertCheckpoint() error: %v", err)
	}
	checkpoints := timeline.Checkpoints()
	if len(checkpoints) != 3 || checkpoints[1].Date() != NewDate(2021, 2, 1) {
		t.Fatalf("checkpoints out of order after insert: %v", checkpoints)
	}

	err = timeline.InsertCheckpoint(checkpoint(t, NewDate(2021, 2, 1), 115), false)
	if err == nil || !strings.Contains(err.Error(), "two checkpoints with the same date") {
		t.Errorf("InsertCheckpoint() error = %v, want one about the duplicate date", err)
	}

	if err := timeline.InsertCheckpoint(checkpoint(t, NewDate(2021, 2, 1), 115), true); err != nil {
		t.Fatalf("InsertCheckpoint(replace) error: %v", err)
	}
	if len(timeline.Checkpoints()) != 3 {
		t.Fatalf("replace changed the checkpoint count: %d", len(timeline.Checkpoints()))
	}
	cp, err := timeline.GetCheckpoint(NewDate(2021, 2, 1), false)
	if err != nil {
		t.Fatalf("GetCheckpoint() error: %v", err)
	}
	checkMoney(t, "Value()", cp.Value(), 115)
}

func TestDeleteCheckpoint(t *testing.T) {
	timeline, err := NewTimeline([]*Checkpoint{
		checkpoint(t, NewDate(2021, 1, 1), 100),
		checkpoint(t, NewDate(2021, 2, 1), 110),
	})
	if err != nil {
		t.Fatalf("NewTimeline() error: %v", err)
	}

	if err := timeline.DeleteCheckpoint(NewDate(2021, 1, 1)); err != nil {
		t.Fatalf("DeleteCheckpoint() error: %v", err)
	}
	if timeline.Begin() != NewDate(2021, 2, 1) {
		t.Errorf("Begin() = %s after delete, want 2021-02-01", timeline.Begin())
	}
	var nferr *NotFoundError
	if err := timeline.DeleteCheckpoint(NewDate(2021, 1, 1)); !errors.As(err, &nferr) {
		t.Errorf("DeleteCheckpoint() again error = %v, want NotFoundError", err)
	}
}

func checkFlowSeries(t *testing.T, data *PerformanceData, wantDates []Date, wantAmounts []float64) {
	t.Helper()
	if len(data.Dates) != len(wantDates) || len(data.Amounts) != len(wantAmounts) {
		t.Fatalf("got %d dates and %d amounts, want %d", len(data.Dates), len(data.Amounts), len(wantDates))
	}
	for i := range wantDates {
		if data.Dates[i] != wantDates[i] {
			t.Errorf("date %d = %s, want %s", i, data.Dates[i], wantDates[i])
		}
		if math.Abs(data.Amounts[i]-wantAmounts[i]) > 1e-9 {
			t.Errorf("amount %d = %v, want %v", i, data.Amounts[i], wantAmounts[i])
		}
	}
}

func TestGetPerformanceData(t *testing.T) {
	newTestTimeline := func(t *testing.T) *Timeline {
		timeline, err := NewTimeline([]*Checkpoint{
			checkpoint(t, NewDate(2021, 1, 1), 100),
			checkpointWithFlows(t, NewDate(2021, 6, 1), 160, 20, 0),
			checkpointWithFlows(t, NewDate(2021, 12, 31), 200, 0, 10),
		})
		if err != nil {
			t.Fatalf("NewTimeline() error: %v", err)
		}
		return timeline
	}

	t.Run("whole timeline", func(t *testing.T) {
		data, err := newTestTimeline(t).GetPerformanceData(NewDate(2021, 1, 1), NewDate(2021, 12, 31))
		if err != nil {
			t.Fatalf("GetPerformanceData() error: %v", err)
		}
		// Begin value is invested, the mid-year deposit too, and the end
		// value comes back gross of the end day's withdrawal.
		checkFlowSeries(t, data,
			[]Date{NewDate(2021, 1, 1), NewDate(2021, 6, 1), NewDate(2021, 12, 31)},
			[]float64{-100, -20, 210})
		checkMoney(t, "BeginBalance", data.BeginBalance, 100)
		checkMoney(t, "EndBalance", data.EndBalance, 200)
		checkMoney(t, "Inflows", data.Inflows, 20)
		checkMoney(t, "Outflows", data.Outflows, 10)
	})

	t.Run("interpolated bounds", func(t *testing.T) {
		data, err := newTestTimeline(t).GetPerformanceData(NewDate(2021, 3, 1), NewDate(2021, 9, 1))
		if err != nil {
			t.Fatalf("GetPerformanceData() error: %v", err)
		}
		// 59 of 151 days into the first stretch: 100 + 40*59/151, and 92 of
		// 213 days into the second: 160 + 50*92/213, both to the cent.
		checkFlowSeries(t, data,
			[]Date{NewDate(2021, 3, 1), NewDate(2021, 6, 1), NewDate(2021, 9, 1)},
			[]float64{-115.63, -20, 181.60})
		checkMoney(t, "BeginBalance", data.BeginBalance, 115.63)
		checkMoney(t, "EndBalance", data.EndBalance, 181.60)
		checkMoney(t, "Inflows", data.Inflows, 20)
		checkMoney(t, "Outflows", data.Outflows, 0)
	})

	t.Run("begin day flows are not counted", func(t *testing.T) {
		data, err := newTestTimeline(t).GetPerformanceData(NewDate(2021, 6, 1), NewDate(2021, 12, 31))
		if err != nil {
			t.Fatalf("GetPerformanceData() error: %v", err)
		}
		checkFlowSeries(t, data,
			[]Date{NewDate(2021, 6, 1), NewDate(2021, 12, 31)},
			[]float64{-160, 210})
		checkMoney(t, "Inflows", data.Inflows, 0)
		checkMoney(t, "Outflows", data.Outflows, 10)
	})

	t.Run("begin must be before end", func(t *testing.T) {
		_, err := newTestTimeline(t).GetPerformanceData(NewDate(2021, 6, 1), NewDate(2021, 6, 1))
		if err == nil || !strings.Contains(err.Error(), "must be before end date") {
			t.Errorf("GetPerformanceData() error = %v, want an ordering error", err)
		}
	})
}
