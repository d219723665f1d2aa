package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/allocation"
	md "github.com/nao1215/markdown"
)

// allocationTable lays out allocation entries the same way for the flat
// allocation report and the rebalance report.
func allocationTable(entries []allocation.AllocationEntry) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Class", "Actual%", "Desired%", "Value", "Difference"},
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			entry.Name,
			pct1(entry.ActualRatio),
			pct1(entry.DesiredRatio),
			dollars(entry.Value),
			deltaDollars(entry.Drift),
		})
	}
	return table
}

// AllocationMarkdown renders the flat asset allocation across a cut of asset
// classes.
func AllocationMarkdown(entries []allocation.AllocationEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Asset Allocation")
	doc.Table(allocationTable(entries))
	return doc.String()
}

// RebalanceMarkdown renders the asset classes that drifted outside their
// rebalance bands. An empty row set renders to an empty string, nothing
// drifted.
func RebalanceMarkdown(entries []allocation.AllocationEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Asset Classes Outside Rebalance Bands")
	doc.Table(allocationTable(entries))
	return doc.String()
}

// AllocationTreeMarkdown renders the allocation tree vertically, one section
// per asset class with children.
func AllocationTreeMarkdown(rows []allocation.AllocationRow) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Asset Allocation Tree")

	sections := 0
	for _, row := range rows {
		if len(row.Children) == 0 {
			continue
		}
		sections++
		doc.H2(row.Name)
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Class", "Actual%", "Desired%", "Value"},
		}
		for _, child := range row.Children {
			table.Rows = append(table.Rows, []string{
				child.Name,
				pct1(child.ActualRatio),
				pct1(child.DesiredRatio),
				dollars(child.Value),
			})
		}
		doc.Table(table)
	}
	if sections == 0 {
		return ""
	}
	return doc.String()
}

// AllocationCompactMarkdown renders the allocation tree horizontally, one
// row per root-to-leaf path. The column count depends on the tree depth so
// the table is assembled by hand.
func AllocationCompactMarkdown(c *allocation.CompactAllocation) string {
	if c == nil || len(c.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Asset Allocation\n\n")

	header := make([]string, 0, 3*c.Depth+4)
	align := make([]string, 0, 3*c.Depth+4)
	for i := 0; i < c.Depth; i++ {
		header = append(header, "Class", "A%", "D%")
		align = append(align, ":---", "---:", "---:")
	}
	header = append(header, "Actual%", "Desired%", "Value", "Difference")
	align = append(align, "---:", "---:", "---:", "---:")
	fmt.Fprintf(&b, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(&b, "|%s|\n", strings.Join(align, "|"))

	for _, row := range c.Rows {
		cells := make([]string, 0, len(header))
		for _, group := range row.Groups {
			if group == nil {
				cells = append(cells, "", "", "")
				continue
			}
			cells = append(cells, group.Name, pct0(group.ActualRatio), pct0(group.DesiredRatio))
		}
		cells = append(cells,
			pct1(row.Leaf.ActualRatio),
			pct1(row.Leaf.DesiredRatio),
			dollars(row.Leaf.Value),
			deltaDollars(row.Leaf.Drift),
		)
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}
	return b.String()
}
