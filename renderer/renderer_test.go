package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/allocation"
)

// wantInOrder fails when the wanted substrings do not all appear in got, in
// the given order.
func wantInOrder(t *testing.T, got string, wants ...string) {
	t.Helper()
	pos := 0
	for _, want := range wants {
		idx := strings.Index(got[pos:], want)
		if idx < 0 {
			t.Fatalf("output missing %q (in order):\n%s", want, got)
		}
		pos += idx + len(want)
	}
}

func TestAllocationMarkdown(t *testing.T) {
	entries := []allocation.AllocationEntry{
		{Name: "US", ActualRatio: 0.552, DesiredRatio: 0.54, Value: 5520, Drift: -120},
		{Name: "Intl", ActualRatio: 0.348, DesiredRatio: 0.36, Value: 3480, Drift: 120},
		{Name: "Bond", ActualRatio: 0.1, DesiredRatio: 0.1, Value: 1000, Drift: 0},
	}
	got := AllocationMarkdown(entries)
	wantInOrder(t, got,
		"Asset Allocation",
		"Class", "Actual%", "Desired%", "Value", "Difference",
		"US", "55.2%", "54.0%", "$5,520.00", "-$120.00",
		"Intl", "34.8%", "36.0%", "$3,480.00", "+$120.00",
		"Bond", "10.0%", "10.0%", "$1,000.00", "+$0.00",
	)

	if got := AllocationMarkdown(nil); got != "" {
		t.Errorf("AllocationMarkdown(nil) = %q, want empty", got)
	}
}

func TestRebalanceMarkdown(t *testing.T) {
	entries := []allocation.AllocationEntry{
		{Name: "Bond", ActualRatio: 0.2, DesiredRatio: 0.1, Value: 2000, Drift: -1000},
	}
	got := RebalanceMarkdown(entries)
	wantInOrder(t, got, "Rebalance", "Bond", "20.0%", "10.0%", "$2,000.00", "-$1,000.00")

	if got := RebalanceMarkdown(nil); got != "" {
		t.Errorf("RebalanceMarkdown(nil) = %q, want empty", got)
	}
}

func TestAllocationTreeMarkdown(t *testing.T) {
	rows := []allocation.AllocationRow{
		{Name: "All", Value: 10000, Children: []allocation.AllocationEntry{
			{Name: "Equity", ActualRatio: 0.9, DesiredRatio: 0.9, Value: 9000},
			{Name: "Bond", ActualRatio: 0.1, DesiredRatio: 0.1, Value: 1000},
		}},
		{Name: "Equity", Value: 9000, Children: []allocation.AllocationEntry{
			{Name: "US", ActualRatio: 0.6, DesiredRatio: 0.6, Value: 5400},
			{Name: "Intl", ActualRatio: 0.4, DesiredRatio: 0.4, Value: 3600},
		}},
		{Name: "US", Value: 5400},
		{Name: "Intl", Value: 3600},
		{Name: "Bond", Value: 1000},
	}
	got := AllocationTreeMarkdown(rows)
	wantInOrder(t, got,
		"Asset Allocation Tree",
		"All",
		"Equity", "90.0%", "$9,000.00",
		"Bond", "10.0%", "$1,000.00",
		"Equity",
		"US", "60.0%", "$5,400.00",
		"Intl", "40.0%", "$3,600.00",
	)
	// Leaf classes get no section of their own.
	if want, count := "## ", strings.Count(got, "## "); count != 2 {
		t.Errorf("output has %d %q sections, want 2:\n%s", count, want, got)
	}
}

func TestAllocationCompactMarkdown(t *testing.T) {
	compact := &allocation.CompactAllocation{
		Depth: 2,
		Rows: []*allocation.CompactRow{
			{
				Groups: []*allocation.CompactGroup{
					{Name: "Equity", ActualRatio: 0.9, DesiredRatio: 0.9},
					{Name: "US", ActualRatio: 0.6, DesiredRatio: 0.6},
				},
				Leaf: allocation.AllocationEntry{Name: "US", ActualRatio: 0.54, DesiredRatio: 0.54, Value: 5400},
			},
			{
				Groups: []*allocation.CompactGroup{
					nil,
					{Name: "Intl", ActualRatio: 0.4, DesiredRatio: 0.4},
				},
				Leaf: allocation.AllocationEntry{Name: "Intl", ActualRatio: 0.36, DesiredRatio: 0.36, Value: 3600},
			},
			{
				Groups: []*allocation.CompactGroup{
					{Name: "Bond", ActualRatio: 0.1, DesiredRatio: 0.1},
					nil,
				},
				Leaf: allocation.AllocationEntry{Name: "Bond", ActualRatio: 0.1, DesiredRatio: 0.1, Value: 1000},
			},
		},
	}

	want := `# Asset Allocation

| Class | A% | D% | Class | A% | D% | Actual% | Desired% | Value | Difference |
|:---|---:|---:|:---|---:|---:|---:|---:|---:|---:|
| Equity | 90% | 90% | US | 60% | 60% | 54.0% | 54.0% | $5,400.00 | +$0.00 |
|  |  |  | Intl | 40% | 40% | 36.0% | 36.0% | $3,600.00 | +$0.00 |
| Bond | 10% | 10% |  |  |  | 10.0% | 10.0% | $1,000.00 | +$0.00 |
`
	got := AllocationCompactMarkdown(compact)
	if got != want {
		t.Errorf("AllocationCompactMarkdown() =\n%s\nwant:\n%s", got, want)
	}

	if got := AllocationCompactMarkdown(&allocation.CompactAllocation{}); got != "" {
		t.Errorf("AllocationCompactMarkdown(empty) = %q, want empty", got)
	}
}

func TestAccountsMarkdown(t *testing.T) {
	rows := []allocation.AccountRow{
		{Name: "Schwab", AccountType: "Taxable", Value: allocation.Dollars(6000), Pct: 60},
		{Name: "401K", AccountType: "Tax-Deferred", Value: allocation.Dollars(4000), Pct: 40},
	}
	got := AccountsMarkdown(rows, false)
	wantInOrder(t, got,
		"Accounts",
		"Account", "Account Type", "Value", "Percentage",
		"Schwab", "Taxable", "$6,000.00", "60.00%",
		"401K", "Tax-Deferred", "$4,000.00", "40.00%",
	)

	grouped := []allocation.AccountRow{
		{AccountType: "Taxable", Value: allocation.Dollars(6000), Pct: 60},
	}
	got = AccountsMarkdown(grouped, true)
	wantInOrder(t, got, "Account Type", "Taxable", "$6,000.00", "60.00%")
	if strings.Contains(got, "| Account |") {
		t.Errorf("grouped output still has an Account column:\n%s", got)
	}
}

func TestAssetsMarkdown(t *testing.T) {
	rows := []allocation.AssetRow{
		{Account: "Schwab", ShortName: "VTI", Name: "Total Stock Market", Value: allocation.Dollars(9000), Quantity: 30, HasQuantity: true},
		{Account: "Schwab", ShortName: "Cash", Name: "Cash", Value: allocation.Dollars(1000)},
	}
	got := AssetsMarkdown(rows, false)
	wantInOrder(t, got, "Assets", "Schwab", "Total Stock Market", "$9,000.00", "Cash", "$1,000.00")
	if strings.Contains(got, "Quantity") {
		t.Errorf("output has a Quantity column without asking for one:\n%s", got)
	}

	got = AssetsMarkdown(rows, true)
	wantInOrder(t, got, "Quantity", "30", "Total Stock Market")
}

func TestLocationMarkdown(t *testing.T) {
	rows := []allocation.AssetLocationRow{
		{AssetClass: "US", Entries: []allocation.AssetLocationEntry{
			{AccountType: "Taxable", Ratio: 0.75, Value: allocation.Dollars(4500)},
			{AccountType: "Tax-Deferred", Ratio: 0.25, Value: allocation.Dollars(1500)},
		}},
	}
	got := LocationMarkdown(rows)
	wantInOrder(t, got,
		"Asset Location",
		"Asset Class", "Account Type", "Percentage", "Value",
		"US", "Taxable", "75.0%", "$4,500.00",
		"Tax-Deferred", "25.0%", "$1,500.00",
	)
	if count := strings.Count(got, "US"); count != 1 {
		t.Errorf("class name appears %d times, want once (first row of the group):\n%s", count, got)
	}
}

func TestLotsMarkdown(t *testing.T) {
	rows := []allocation.LotRow{
		{
			Account:   "Schwab",
			ShortName: "VTI",
			Date:      allocation.NewDate(2024, time.March, 1),
			Cost:      allocation.Dollars(10000),
			Gain:      allocation.Dollars(-500),
			GainPct:   -5,
			Term:      "LT",
		},
	}
	got := LotsMarkdown(rows)
	wantInOrder(t, got,
		"Tax Lots",
		"Account", "Short Name", "Date", "Cost", "Gain", "Gain%", "Term",
		"Schwab", "VTI", "2024-03-01", "$10,000.00", "-$500.00", "-5.00%", "LT",
	)
}

func TestTLHMarkdown(t *testing.T) {
	rows := []allocation.TLHRow{
		{
			Account:   "Schwab",
			ShortName: "VTI",
			Date:      allocation.NewDate(2025, time.January, 10),
			Loss:      allocation.Dollars(500),
			LossPct:   12,
		},
	}
	got := TLHMarkdown(rows)
	wantInOrder(t, got,
		"Tax Loss Harvesting",
		"Account", "Asset", "Date", "Loss", "Loss%",
		"Schwab", "VTI", "2025-01-10", "$500.00", "12.00%",
	)

	if got := TLHMarkdown(nil); got != "" {
		t.Errorf("TLHMarkdown(nil) = %q, want empty", got)
	}
}

func TestWhatIfsMarkdown(t *testing.T) {
	accounts := []allocation.AccountWhatIf{
		{Account: "Schwab", Cash: allocation.Dollars(500)},
	}
	assets := []allocation.AssetWhatIf{
		{Account: "Schwab", Asset: "VTI", Delta: allocation.Dollars(-500)},
	}
	got := WhatIfsMarkdown(accounts, assets)
	wantInOrder(t, got,
		"Hypothetical What Ifs",
		"Account", "Cash",
		"Schwab", "+$500.00",
		"Account", "Asset", "Delta",
		"Schwab", "VTI", "-$500.00",
	)

	if got := WhatIfsMarkdown(nil, nil); got != "" {
		t.Errorf("WhatIfsMarkdown(nil, nil) = %q, want empty", got)
	}
}

func TestAllocateMarkdown(t *testing.T) {
	rows := []allocation.AllocateRow{
		{ShortName: "VTI", Delta: allocation.Dollars(54)},
		{ShortName: "VXUS", Delta: allocation.Dollars(36)},
		{ShortName: "BND", Delta: allocation.Dollars(10)},
	}
	got := AllocateMarkdown(rows)
	wantInOrder(t, got,
		"Cash Allocation",
		"Asset", "Delta",
		"VTI", "+$54.00",
		"VXUS", "+$36.00",
		"BND", "+$10.00",
	)
}

func TestPerformanceMarkdown(t *testing.T) {
	rows := []allocation.PerformanceSummaryRow{
		{
			Period:    "3 Months",
			Inflows:   allocation.Dollars(1000),
			Outflows:  allocation.Dollars(200),
			Change:    allocation.Dollars(1500),
			ChangePct: 15,
			IRR:       12.5,
		},
		{
			Period:   "Overall",
			Inflows:  allocation.Dollars(5000),
			Outflows: allocation.Dollars(1000),
			Change:   allocation.Dollars(4000),
		},
	}
	got := PerformanceMarkdown(rows)
	wantInOrder(t, got,
		"Performance Summary",
		"Period", "Inflows", "Outflows", "Portfolio Change", "Change %", "IRR",
		"3 Months", "$1,000.00", "$200.00", "+$1,500.00", "15.00%", "12.50%",
		"Overall", "$5,000.00", "$1,000.00", "+$4,000.00",
	)
}

func TestPerformanceInfoMarkdown(t *testing.T) {
	info := &allocation.PerformanceInfo{
		Begin:           allocation.NewDate(2021, time.January, 1),
		End:             allocation.NewDate(2021, time.December, 31),
		BeginBalance:    allocation.Dollars(10000),
		EndBalance:      allocation.Dollars(13000),
		Inflows:         allocation.Dollars(2000),
		Outflows:        allocation.Dollars(500),
		PortfolioGrowth: allocation.Dollars(3000),
		MarketGrowth:    allocation.Dollars(1500),
		GrowthPct:       30,
		IRR:             28.5,
	}
	want := `# Performance from 2021-01-01 to 2021-12-31

- Start date: 2021-01-01
- End date: 2021-12-31
- Beginning balance: $10,000.00
- Ending balance: $13,000.00
- Inflows: $2,000.00
- Outflows: $500.00
- Portfolio growth: +$3,000.00
- Market growth: +$1,500.00
- Portfolio growth %: 30.00%
- Internal Rate of Return: 28.50%
`
	got := PerformanceInfoMarkdown(info)
	if got != want {
		t.Errorf("PerformanceInfoMarkdown() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCheckpointsMarkdown(t *testing.T) {
	first, err := allocation.NewCheckpoint(allocation.NewDate(2021, time.January, 1), allocation.Dollars(100))
	if err != nil {
		t.Fatal(err)
	}
	second, err := allocation.NewCheckpointWithFlows(
		allocation.NewDate(2021, time.January, 31),
		allocation.Dollars(300), allocation.Dollars(150), allocation.Dollars(50))
	if err != nil {
		t.Fatal(err)
	}
	timeline, err := allocation.NewTimeline([]*allocation.Checkpoint{first, second})
	if err != nil {
		t.Fatal(err)
	}

	got := CheckpointsMarkdown(timeline)
	wantInOrder(t, got,
		"Portfolio Checkpoints",
		"Date", "Portfolio Value", "Inflow", "Outflow",
		"2021-01-01", "$100.00",
		"2021-01-31", "$300.00", "$150.00", "$50.00",
	)
}

func TestAccountInfoMarkdown(t *testing.T) {
	account := allocation.NewAccount("Schwab", "Taxable")
	asset, err := allocation.NewManualAsset("Cash", allocation.Dollars(100), map[string]float64{"All": 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := account.AddAsset(asset); err != nil {
		t.Fatal(err)
	}

	got, err := AccountInfoMarkdown(account)
	if err != nil {
		t.Fatal(err)
	}
	want := `# Schwab

- Type: Taxable
- Total: $100.00
`
	if got != want {
		t.Errorf("AccountInfoMarkdown() =\n%s\nwant:\n%s", got, want)
	}

	// Cash moved by what-ifs shows up as a separate line.
	account.AddCash(allocation.Dollars(25))
	got, err = AccountInfoMarkdown(account)
	if err != nil {
		t.Fatal(err)
	}
	wantInOrder(t, got, "Total: $100.00", "Available Cash: +$25.00")
}

func TestAssetInfoMarkdown(t *testing.T) {
	asset, err := allocation.NewManualAsset("Emergency Fund", allocation.Dollars(1000), map[string]float64{"All": 1})
	if err != nil {
		t.Fatal(err)
	}
	got, err := AssetInfoMarkdown(asset)
	if err != nil {
		t.Fatal(err)
	}
	wantInOrder(t, got, "Emergency Fund", "Short Name: Emergency Fund", "Value: $1,000.00")
	if strings.Contains(got, "Adjusted Value") {
		t.Errorf("output has an adjusted value without a what-if:\n%s", got)
	}

	asset.WhatIf(allocation.Dollars(-100))
	got, err = AssetInfoMarkdown(asset)
	if err != nil {
		t.Fatal(err)
	}
	wantInOrder(t, got, "Value: $1,000.00", "Adjusted Value: $900.00")
}

func TestBondsMarkdown(t *testing.T) {
	rows := []allocation.SavingsBondRow{
		{
			Issue:        allocation.NewDate(2020, time.March, 1),
			Denomination: allocation.Dollars(1000),
			Rate:         "2.69%",
			Value:        allocation.Dollars(1268.40),
		},
	}
	got := BondsMarkdown("I Bonds", rows)
	wantInOrder(t, got,
		"I Bonds",
		"Issue Date", "Denomination", "Rate", "Value",
		"03/2020", "$1,000.00", "2.69%", "$1,268.40",
	)
}
