package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/allocation"
	md "github.com/nao1215/markdown"
)

// AccountsMarkdown renders the accounts report. With groupByType the rows
// are expected to be grouped already and the account column is dropped.
func AccountsMarkdown(rows []allocation.AccountRow, groupByType bool) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Accounts")

	table := md.TableSet{}
	if groupByType {
		table.Alignment = []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight}
		table.Header = []string{"Account Type", "Value", "Percentage"}
		for _, row := range rows {
			table.Rows = append(table.Rows, []string{
				row.AccountType,
				row.Value.Round().String(),
				row.Pct.String(),
			})
		}
	} else {
		table.Alignment = []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight}
		table.Header = []string{"Account", "Account Type", "Value", "Percentage"}
		for _, row := range rows {
			table.Rows = append(table.Rows, []string{
				row.Name,
				row.AccountType,
				row.Value.Round().String(),
				row.Pct.String(),
			})
		}
	}
	doc.Table(table)
	return doc.String()
}

// AssetsMarkdown renders every asset with its value. With quantity a share
// count column is added, blank for assets that have none.
func AssetsMarkdown(rows []allocation.AssetRow, quantity bool) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Assets")

	table := md.TableSet{}
	if quantity {
		table.Alignment = []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight}
		table.Header = []string{"Account", "Quantity", "Asset", "Value"}
	} else {
		table.Alignment = []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight}
		table.Header = []string{"Account", "Asset", "Value"}
	}
	for _, row := range rows {
		cells := []string{row.Account}
		if quantity {
			shares := ""
			if row.HasQuantity {
				shares = strconv.FormatFloat(row.Quantity, 'f', -1, 64)
			}
			cells = append(cells, shares)
		}
		cells = append(cells, row.Name, row.Value.Round().String())
		table.Rows = append(table.Rows, cells)
	}
	doc.Table(table)
	return doc.String()
}

// LocationMarkdown renders where each asset class is held. The class name is
// printed on the first row of its group only, the rest of the group reads as
// a continuation.
func LocationMarkdown(rows []allocation.AssetLocationRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Asset Location")

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Asset Class", "Account Type", "Percentage", "Value"},
	}
	for _, row := range rows {
		name := row.AssetClass
		for _, entry := range row.Entries {
			table.Rows = append(table.Rows, []string{
				name,
				entry.AccountType,
				pct1(entry.Ratio),
				entry.Value.Round().String(),
			})
			name = ""
		}
	}
	doc.Table(table)
	return doc.String()
}
