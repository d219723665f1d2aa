package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/allocation"
	md "github.com/nao1215/markdown"
)

// PerformanceMarkdown renders the trailing-window performance summary.
func PerformanceMarkdown(rows []allocation.PerformanceSummaryRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Performance Summary")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Period", "Inflows", "Outflows", "Portfolio Change", "Change %", "IRR"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Period,
			row.Inflows.Round().String(),
			row.Outflows.Round().String(),
			row.Change.Round().SignedString(),
			row.ChangePct.String(),
			row.IRR.String(),
		})
	}
	doc.Table(table)
	return doc.String()
}

// PerformanceInfoMarkdown renders the detailed performance between two
// dates as plain label/value lines.
func PerformanceInfoMarkdown(info *allocation.PerformanceInfo) string {
	if info == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Performance from %s to %s\n\n", info.Begin, info.End)

	lines := []struct{ label, value string }{
		{"Start date", info.Begin.String()},
		{"End date", info.End.String()},
		{"Beginning balance", info.BeginBalance.Round().String()},
		{"Ending balance", info.EndBalance.Round().String()},
		{"Inflows", info.Inflows.Round().String()},
		{"Outflows", info.Outflows.Round().String()},
		{"Portfolio growth", info.PortfolioGrowth.Round().SignedString()},
		{"Market growth", info.MarketGrowth.Round().SignedString()},
		{"Portfolio growth %", info.GrowthPct.String()},
		{"Internal Rate of Return", info.IRR.String()},
	}
	for _, line := range lines {
		fmt.Fprintf(&b, "- %s: %s\n", line.label, line.value)
	}
	return b.String()
}

// CheckpointsMarkdown renders the checkpoints of a timeline, oldest first.
func CheckpointsMarkdown(timeline *allocation.Timeline) string {
	if timeline == nil {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Portfolio Checkpoints")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Portfolio Value", "Inflow", "Outflow"},
	}
	for _, checkpoint := range timeline.Checkpoints() {
		table.Rows = append(table.Rows, []string{
			checkpoint.Date().String(),
			checkpoint.Value().Round().String(),
			checkpoint.Inflow().Round().String(),
			checkpoint.Outflow().Round().String(),
		})
	}
	doc.Table(table)
	return doc.String()
}
