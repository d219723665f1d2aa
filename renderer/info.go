package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/allocation"
	md "github.com/nao1215/markdown"
)

// AccountInfoMarkdown renders the details of one account.
func AccountInfoMarkdown(account *allocation.Account) (string, error) {
	total, err := account.Total()
	if err != nil {
		return "", err
	}
	cash := account.AvailableCash()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", account.Name())
	fmt.Fprintf(&b, "- Type: %s\n", account.AccountType())
	fmt.Fprintf(&b, "- Total: %s\n", total.Sub(cash).Round())
	if !cash.IsZero() {
		fmt.Fprintf(&b, "- Available Cash: %s\n", cash.Round().SignedString())
	}
	return b.String(), nil
}

// AssetInfoMarkdown renders the details of one asset. Savings bond
// collections additionally list their bonds.
func AssetInfoMarkdown(asset allocation.Asset) (string, error) {
	name, err := asset.Name()
	if err != nil {
		return "", err
	}
	value, err := asset.Value()
	if err != nil {
		return "", err
	}
	adjusted, err := asset.AdjustedValue()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "- Short Name: %s\n", asset.ShortName())
	fmt.Fprintf(&b, "- Value: %s\n", value.Round())
	if !asset.Delta().IsZero() {
		fmt.Fprintf(&b, "- Adjusted Value: %s\n", adjusted.Round())
	}

	if bonds, ok := asset.(*allocation.SavingsBonds); ok {
		rows, err := bonds.ListBonds(allocation.Today())
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(BondsMarkdown(name, rows))
	}
	return b.String(), nil
}

// BondsMarkdown renders the bonds held by a savings bond collection, one row
// per bond with its current rate and redemption value.
func BondsMarkdown(name string, rows []allocation.SavingsBondRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2(name)

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Issue Date", "Denomination", "Rate", "Value"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Issue.Format("01/2006"),
			row.Denomination.Round().String(),
			row.Rate,
			row.Value.Round().String(),
		})
	}
	doc.Table(table)
	return doc.String()
}
