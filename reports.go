package allocation

import (
	"math"
	"sort"
)

// AccountRow is one line of the accounts report: an account, or an account
// type when grouping, with its value and share of the portfolio.
type AccountRow struct {
	Name        string
	AccountType string
	Value       Money
	Pct         Percent
}

// ListAccounts returns all accounts with their total value and their share
// of the portfolio. With groupByType, accounts of the same type are
// aggregated into one row and Name is left empty.
func (p *Portfolio) ListAccounts(groupByType bool) ([]AccountRow, error) {
	var rows []AccountRow
	var typeOrder []string
	typeTotals := make(map[string]Money)
	total := Dollars(0)

	for _, account := range p.accounts {
		value, err := account.Total()
		if err != nil {
			return nil, err
		}
		rows = append(rows, AccountRow{
			Name:        account.Name(),
			AccountType: account.AccountType(),
			Value:       value,
		})
		if _, seen := typeTotals[account.AccountType()]; !seen {
			typeOrder = append(typeOrder, account.AccountType())
		}
		typeTotals[account.AccountType()] = typeTotals[account.AccountType()].Add(value)
		total = total.Add(value)
	}

	if groupByType {
		grouped := make([]AccountRow, 0, len(typeOrder))
		for _, accountType := range typeOrder {
			value := typeTotals[accountType]
			grouped = append(grouped, AccountRow{
				AccountType: accountType,
				Value:       value,
				Pct:         pctOf(value, total),
			})
		}
		return grouped, nil
	}

	for i := range rows {
		rows[i].Pct = pctOf(rows[i].Value, total)
	}
	return rows, nil
}

// pctOf returns value as a percentage of total, 0 when total is zero.
func pctOf(value, total Money) Percent {
	if total.IsZero() {
		return 0
	}
	return Percent(100 * value.AsFloat() / total.AsFloat())
}

// AssetRow is one line of the assets report.
type AssetRow struct {
	Account   string
	ShortName string
	Name      string
	Value     Money
	// Quantity is the share count for assets that have one.
	Quantity    float64
	HasQuantity bool
}

// ListAssets returns every asset of the portfolio with its adjusted value.
func (p *Portfolio) ListAssets() ([]AssetRow, error) {
	var rows []AssetRow
	for _, account := range p.accounts {
		for _, asset := range account.Assets() {
			name, err := asset.Name()
			if err != nil {
				return nil, err
			}
			value, err := asset.AdjustedValue()
			if err != nil {
				return nil, err
			}
			row := AssetRow{
				Account:   account.Name(),
				ShortName: asset.ShortName(),
				Name:      name,
				Value:     value,
			}
			if shared, ok := asset.(interface{ Shares() float64 }); ok {
				row.Quantity = shared.Shares()
				row.HasQuantity = true
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// LotRow is one line of the tax lots report: one purchase lot of one asset
// with its unrealized gain at the current price.
type LotRow struct {
	Account   string
	ShortName string
	Date      Date
	Cost      Money
	Gain      Money
	GainPct   Percent
	Term      string
}

// ListLots returns the tax lots of every asset that tracks them. asOf is the
// day used to classify holding periods.
func (p *Portfolio) ListLots(asOf Date) ([]LotRow, error) {
	var rows []LotRow
	for _, account := range p.accounts {
		for _, asset := range account.Assets() {
			holder, ok := asset.(LotHolder)
			if !ok || len(holder.Lots()) == 0 {
				continue
			}
			gains, err := holder.LotGains(asOf)
			if err != nil {
				return nil, err
			}
			for _, gain := range gains {
				rows = append(rows, LotRow{
					Account:   account.Name(),
					ShortName: asset.ShortName(),
					Date:      gain.Date,
					Cost:      gain.Cost,
					Gain:      gain.Gain,
					GainPct:   gain.GainPct,
					Term:      gain.Term,
				})
			}
		}
	}
	return rows, nil
}

// AssetLocationEntry is the money one asset class holds in one account type.
type AssetLocationEntry struct {
	AccountType string
	Ratio       float64
	Value       Money
}

// AssetLocationRow groups the location of one asset class across account
// types, largest holding first.
type AssetLocationRow struct {
	AssetClass string
	Entries    []AssetLocationEntry
}

// AssetLocation reports where each asset class is held: for every leaf class
// with money mapped to it, the account types holding it and the fraction
// each type holds. Classes are listed in the order they are first seen.
func (p *Portfolio) AssetLocation() ([]AssetLocationRow, error) {
	classToType := make(map[string]map[string]float64)
	var classOrder []string

	for _, account := range p.accounts {
		for _, asset := range account.Assets() {
			value, err := asset.AdjustedValue()
			if err != nil {
				return nil, err
			}
			for name, ratio := range asset.ClassRatios() {
				if _, seen := classToType[name]; !seen {
					classToType[name] = make(map[string]float64)
					classOrder = append(classOrder, name)
				}
				classToType[name][account.AccountType()] += ratio * value.AsFloat()
			}
		}
	}

	var rows []AssetLocationRow
	for _, name := range classOrder {
		typeValues := classToType[name]
		total := 0.0
		for _, value := range typeValues {
			total += value
		}
		if math.Abs(total) < deltaTolerance {
			continue
		}
		row := AssetLocationRow{AssetClass: name}
		for _, accountType := range sortedByValue(typeValues) {
			value := typeValues[accountType]
			row.Entries = append(row.Entries, AssetLocationEntry{
				AccountType: accountType,
				Ratio:       value / total,
				Value:       Dollars(value),
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sortedByValue returns the keys of values sorted by descending value, ties
// broken by key so the output is deterministic.
func sortedByValue(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if values[keys[i]] != values[keys[j]] {
			return values[keys[i]] > values[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
