package renderer

import (
	"bytes"

	"github.com/etnz/allocation"
	md "github.com/nao1215/markdown"
)

// LotsMarkdown renders the tax lots report, one row per purchase lot.
func LotsMarkdown(rows []allocation.LotRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Tax Lots")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Account", "Short Name", "Date", "Cost", "Gain", "Gain%", "Term"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Account,
			row.ShortName,
			row.Date.String(),
			row.Cost.Round().String(),
			row.Gain.Round().SignedString(),
			row.GainPct.SignedString(),
			row.Term,
		})
	}
	doc.Table(table)
	return doc.String()
}

// TLHMarkdown renders the tax loss harvesting report. An empty row set
// renders to an empty string, nothing to harvest.
func TLHMarkdown(rows []allocation.TLHRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Tax Loss Harvesting")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Account", "Asset", "Date", "Loss", "Loss%"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Account,
			row.ShortName,
			row.Date.String(),
			row.Loss.Round().String(),
			row.LossPct.String(),
		})
	}
	doc.Table(table)
	return doc.String()
}
