package renderer

import (
	"bytes"

	"github.com/etnz/allocation"
	md "github.com/nao1215/markdown"
)

// WhatIfsMarkdown renders the hypothetical changes currently applied to the
// portfolio, account cash first then per-asset deltas. No changes render to
// an empty string.
func WhatIfsMarkdown(accounts []allocation.AccountWhatIf, assets []allocation.AssetWhatIf) string {
	if len(accounts) == 0 && len(assets) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Hypothetical What Ifs")

	if len(accounts) > 0 {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Account", "Cash"},
		}
		for _, row := range accounts {
			table.Rows = append(table.Rows, []string{
				row.Account,
				row.Cash.Round().SignedString(),
			})
		}
		doc.Table(table)
	}

	if len(assets) > 0 {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Account", "Asset", "Delta"},
		}
		for _, row := range assets {
			table.Rows = append(table.Rows, []string{
				row.Account,
				row.Asset,
				row.Delta.Round().SignedString(),
			})
		}
		doc.Table(table)
	}
	return doc.String()
}

// AllocateMarkdown renders the cash allocation plan, how much to buy or sell
// of each asset.
func AllocateMarkdown(rows []allocation.AllocateRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Cash Allocation")

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Asset", "Delta"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.ShortName,
			row.Delta.Round().SignedString(),
		})
	}
	doc.Table(table)
	return doc.String()
}
