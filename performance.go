package allocation

import (
	"encoding/json"
	"math"
	"sort"
)

// performancePeriods are the trailing windows reported by Summary, shortest
// first.
var performancePeriods = []struct {
	Name string
	Days int
}{
	{"1 Month", 30},
	{"3 Months", 90},
	{"6 Months", 180},
	{"1 Year", 365},
	{"3 Years", 3 * 365},
	{"10 Years", 10 * 365},
}

// Performance computes growth statistics over a timeline of portfolio
// checkpoints.
type Performance struct {
	timeline *Timeline
}

// NewPerformance returns a Performance reporting on the given timeline.
func NewPerformance(timeline *Timeline) *Performance {
	return &Performance{timeline: timeline}
}

// Timeline returns the underlying timeline.
func (p *Performance) Timeline() *Timeline { return p.timeline }

// PerformanceSummaryRow is the performance over one trailing window.
type PerformanceSummaryRow struct {
	Period    string
	Inflows   Money
	Outflows  Money
	Change    Money
	ChangePct Percent
	IRR       Percent
}

func summaryRow(period string, data *PerformanceData) PerformanceSummaryRow {
	change := data.EndBalance.Sub(data.BeginBalance)
	return PerformanceSummaryRow{
		Period:    period,
		Inflows:   data.Inflows,
		Outflows:  data.Outflows,
		Change:    change,
		ChangePct: Percent(100 * change.AsFloat() / data.BeginBalance.AsFloat()),
		IRR:       Percent(100 * XIRR(data.Dates, data.Amounts)),
	}
}

// Summary reports the performance over the largest trailing windows that fit
// inside the timeline, at most three of them, plus an Overall row spanning
// the whole timeline. A timeline with a single checkpoint yields no rows.
func (p *Performance) Summary() ([]PerformanceSummaryRow, error) {
	if p.timeline.Begin() == p.timeline.End() {
		return nil, nil
	}

	span := p.timeline.End().Sub(p.timeline.Begin())
	end := sort.Search(len(performancePeriods), func(i int) bool {
		return performancePeriods[i].Days >= span
	})
	begin := end - 3
	if begin < 0 {
		begin = 0
	}

	var rows []PerformanceSummaryRow
	for _, period := range performancePeriods[begin:end] {
		data, err := p.timeline.GetPerformanceData(p.timeline.End().Add(-period.Days), p.timeline.End())
		if err != nil {
			return nil, err
		}
		rows = append(rows, summaryRow(period.Name, data))
	}

	data, err := p.timeline.GetPerformanceData(p.timeline.Begin(), p.timeline.End())
	if err != nil {
		return nil, err
	}
	return append(rows, summaryRow("Overall", data)), nil
}

// PerformanceInfo details the portfolio performance between two dates.
// Market growth is the portfolio growth net of external cash flows, the part
// the market itself contributed.
type PerformanceInfo struct {
	Begin           Date
	End             Date
	BeginBalance    Money
	EndBalance      Money
	Inflows         Money
	Outflows        Money
	PortfolioGrowth Money
	MarketGrowth    Money
	GrowthPct       Percent
	IRR             Percent
}

// Info reports the performance between begin and end, both interpolated when
// they fall between checkpoints. A zero begin or end date defaults to the
// corresponding timeline boundary.
func (p *Performance) Info(begin, end Date) (*PerformanceInfo, error) {
	if begin.IsZero() {
		begin = p.timeline.Begin()
	}
	if end.IsZero() {
		end = p.timeline.End()
	}

	data, err := p.timeline.GetPerformanceData(begin, end)
	if err != nil {
		return nil, err
	}
	change := data.EndBalance.Sub(data.BeginBalance)
	return &PerformanceInfo{
		Begin:           begin,
		End:             end,
		BeginBalance:    data.BeginBalance,
		EndBalance:      data.EndBalance,
		Inflows:         data.Inflows,
		Outflows:        data.Outflows,
		PortfolioGrowth: change,
		MarketGrowth:    change.Sub(data.Inflows).Add(data.Outflows),
		GrowthPct:       Percent(math.Round(1000*change.AsFloat()/data.BeginBalance.AsFloat()) / 10),
		IRR:             Percent(math.Round(1000*XIRR(data.Dates, data.Amounts)) / 10),
	}, nil
}

func (p *Performance) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("timeline", p.timeline)
	return w.MarshalJSON()
}

type performanceDoc struct {
	Timeline *Timeline `json:"timeline"`
}

func (p *Performance) UnmarshalJSON(data []byte) error {
	var doc performanceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Timeline == nil {
		return validationErrorf("performance document has no timeline")
	}
	p.timeline = doc.Timeline
	return nil
}

var _ json.Marshaler = (*Performance)(nil)
var _ json.Unmarshaler = (*Performance)(nil)
