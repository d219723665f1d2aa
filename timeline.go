package allocation

import (
	"encoding/json"
	"sort"
)

// Checkpoint is an immutable snapshot of the total portfolio value on a
// given day, together with that day's external cash movements. Inflow and
// outflow are the money moved on that day only, not cumulative amounts.
type Checkpoint struct {
	date    Date
	value   Money
	inflow  Money
	outflow Money
}

// NewCheckpoint returns a checkpoint of the portfolio value on date, with no
// cash moving in or out on that day.
func NewCheckpoint(date Date, value Money) (*Checkpoint, error) {
	return NewCheckpointWithFlows(date, value, Money{}, Money{})
}

// NewCheckpointWithFlows returns a checkpoint of the portfolio value on
// date. The value is rounded to the cent.
func NewCheckpointWithFlows(date Date, value, inflow, outflow Money) (*Checkpoint, error) {
	if value.IsNegative() {
		return nil, validationErrorf("portfolio value must be non-negative (got %s)", value)
	}
	if inflow.IsNegative() {
		return nil, validationErrorf("inflow must be non-negative (got %s)", inflow)
	}
	if outflow.IsNegative() {
		return nil, validationErrorf("outflow must be non-negative (got %s)", outflow)
	}
	return &Checkpoint{date: date, value: value.Round(), inflow: inflow, outflow: outflow}, nil
}

// Date returns the day of this checkpoint.
func (c *Checkpoint) Date() Date { return c.date }

// Value returns the portfolio value on the checkpoint's day.
func (c *Checkpoint) Value() Money { return c.value }

// Inflow returns the money that flowed into the portfolio on that day.
func (c *Checkpoint) Inflow() Money { return c.inflow }

// Outflow returns the money that flowed out of the portfolio on that day.
func (c *Checkpoint) Outflow() Money { return c.outflow }

func (c *Checkpoint) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("date", c.date)
	w.Append("value", c.value)
	w.Optional("inflow", c.inflow)
	w.Optional("outflow", c.outflow)
	return w.MarshalJSON()
}

type checkpointDoc struct {
	Date    Date  `json:"date"`
	Value   Money `json:"value"`
	Inflow  Money `json:"inflow"`
	Outflow Money `json:"outflow"`
}

func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var doc checkpointDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	cp, err := NewCheckpointWithFlows(doc.Date, doc.Value, doc.Inflow, doc.Outflow)
	if err != nil {
		return err
	}
	*c = *cp
	return nil
}

// Timeline is a date-ordered collection of checkpoints, at most one per day.
type Timeline struct {
	checkpoints []*Checkpoint
}

// NewTimeline returns a timeline holding the given checkpoints, sorted by
// date. At least one checkpoint is required.
func NewTimeline(checkpoints []*Checkpoint) (*Timeline, error) {
	if len(checkpoints) == 0 {
		return nil, validationErrorf("a timeline requires at least one checkpoint")
	}
	sorted := make([]*Checkpoint, len(checkpoints))
	copy(sorted, checkpoints)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].date.Before(sorted[j].date) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].date == sorted[i-1].date {
			return nil, validationErrorf("cannot have two checkpoints with the same date (%s)", sorted[i].date)
		}
	}
	return &Timeline{checkpoints: sorted}, nil
}

// Checkpoints returns the checkpoints in date order. The slice is shared
// with the timeline and must not be mutated.
func (t *Timeline) Checkpoints() []*Checkpoint { return t.checkpoints }

// search returns the position of date in the timeline, and whether a
// checkpoint exists for it. When absent, the position is where a checkpoint
// for date would be inserted.
func (t *Timeline) search(date Date) (int, bool) {
	i := sort.Search(len(t.checkpoints), func(i int) bool {
		return !t.checkpoints[i].date.Before(date)
	})
	return i, i < len(t.checkpoints) && t.checkpoints[i].date == date
}

// HasCheckpoint returns true iff there is a checkpoint for date.
func (t *Timeline) HasCheckpoint(date Date) bool { _, ok := t.search(date); return ok }

// Begin returns the date of the earliest checkpoint.
func (t *Timeline) Begin() Date { return t.checkpoints[0].date }

// End returns the date of the latest checkpoint.
func (t *Timeline) End() Date { return t.checkpoints[len(t.checkpoints)-1].date }

// Covers returns true if date falls within the timeline.
func (t *Timeline) Covers(date Date) bool {
	return !date.Before(t.Begin()) && !date.After(t.End())
}

// interpolateCheckpoint computes a synthetic checkpoint between c1 and c2.
// The later value is taken net of that day's cash event before weighting by
// elapsed time.
func interpolateCheckpoint(date Date, c1, c2 *Checkpoint) (*Checkpoint, error) {
	val1 := c1.value.AsFloat()
	val2 := c2.value.Sub(c2.inflow).Add(c2.outflow).AsFloat()
	fraction := float64(date.Sub(c1.date)) / float64(c2.date.Sub(c1.date))
	return NewCheckpoint(date, Dollars(val1+(val2-val1)*fraction))
}

// GetCheckpoint returns the checkpoint for date. If no checkpoint exists for
// that day and interpolate is false, a NotFoundError is returned. With
// interpolate set, a synthetic checkpoint is computed by linear
// interpolation between the two bracketing checkpoints. The date must lie
// within [Begin, End]. The synthetic checkpoint is not inserted into the
// timeline.
func (t *Timeline) GetCheckpoint(date Date, interpolate bool) (*Checkpoint, error) {
	pos, ok := t.search(date)
	if ok {
		return t.checkpoints[pos], nil
	}
	if !interpolate {
		return nil, &NotFoundError{Kind: "checkpoint", Name: date.String()}
	}
	if !t.Covers(date) {
		return nil, validationErrorf("%s is not in the range of the saved checkpoints (begin=%s, end=%s)", date, t.Begin(), t.End())
	}
	return interpolateCheckpoint(date, t.checkpoints[pos-1], t.checkpoints[pos])
}

// InsertCheckpoint adds a checkpoint to the timeline, keeping dates sorted.
// A checkpoint already present for the same date is an error unless replace
// is set, in which case it is overwritten.
func (t *Timeline) InsertCheckpoint(checkpoint *Checkpoint, replace bool) error {
	pos, ok := t.search(checkpoint.date)
	if ok {
		if !replace {
			return validationErrorf("cannot insert two checkpoints with the same date (%s)", checkpoint.date)
		}
		t.checkpoints[pos] = checkpoint
		return nil
	}
	t.checkpoints = append(t.checkpoints, nil)
	copy(t.checkpoints[pos+1:], t.checkpoints[pos:])
	t.checkpoints[pos] = checkpoint
	return nil
}

// DeleteCheckpoint removes the checkpoint for date.
func (t *Timeline) DeleteCheckpoint(date Date) error {
	pos, ok := t.search(date)
	if !ok {
		return &NotFoundError{Kind: "checkpoint", Name: date.String()}
	}
	t.checkpoints = append(t.checkpoints[:pos], t.checkpoints[pos+1:]...)
	return nil
}

// PerformanceData is a dated cash flow series in a shape ready for an
// internal rate of return solver. Money flowing out of the portfolio is
// positive, money flowing in is negative.
type PerformanceData struct {
	Dates   []Date
	Amounts []float64

	BeginBalance Money
	EndBalance   Money
	Inflows      Money
	Outflows     Money
}

// GetPerformanceData extracts the cash flows between begin and end, both
// interpolated when they fall between checkpoints. The begin value counts as
// money invested (negative flow) and the end value as money returned
// (positive flow, net of that day's cash event).
func (t *Timeline) GetPerformanceData(begin, end Date) (*PerformanceData, error) {
	if !begin.Before(end) {
		return nil, validationErrorf("begin date (%s) must be before end date (%s)", begin, end)
	}

	beginCheckpoint, err := t.GetCheckpoint(begin, true)
	if err != nil {
		return nil, err
	}
	endCheckpoint, err := t.GetCheckpoint(end, true)
	if err != nil {
		return nil, err
	}

	data := &PerformanceData{
		BeginBalance: beginCheckpoint.value,
		EndBalance:   endCheckpoint.value,
	}
	data.Dates = append(data.Dates, begin)
	data.Amounts = append(data.Amounts, -beginCheckpoint.value.AsFloat())

	for _, cp := range t.checkpoints {
		if !cp.date.After(begin) {
			continue
		}
		if !cp.date.Before(end) {
			break
		}
		data.Dates = append(data.Dates, cp.date)
		data.Amounts = append(data.Amounts, cp.outflow.Sub(cp.inflow).AsFloat())
		data.Inflows = data.Inflows.Add(cp.inflow)
		data.Outflows = data.Outflows.Add(cp.outflow)
	}

	data.Dates = append(data.Dates, end)
	data.Amounts = append(data.Amounts, endCheckpoint.value.Add(endCheckpoint.outflow).Sub(endCheckpoint.inflow).AsFloat())
	data.Inflows = data.Inflows.Add(endCheckpoint.inflow)
	data.Outflows = data.Outflows.Add(endCheckpoint.outflow)
	return data, nil
}

func (t *Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.checkpoints)
}

func (t *Timeline) UnmarshalJSON(data []byte) error {
	var checkpoints []*Checkpoint
	if err := json.Unmarshal(data, &checkpoints); err != nil {
		return err
	}
	tl, err := NewTimeline(checkpoints)
	if err != nil {
		return err
	}
	*t = *tl
	return nil
}

var _ json.Marshaler = (*Timeline)(nil)
var _ json.Unmarshaler = (*Timeline)(nil)
