package allocation

import "math"

// TLH is a tax loss harvesting analyzer. It flags tax lots that could be
// sold to harvest their capital loss.
type TLH struct {
	maxPercentage float64
	maxDollars    float64
}

// NewTLH returns an analyzer flagging every lot that has lost more than
// maxPercentage (a ratio, 0.1 meaning 10% below cost basis). When maxDollars
// is not zero and the combined loss of an asset's losing lots exceeds it,
// all the losing lots of that asset are flagged instead.
func NewTLH(maxPercentage, maxDollars float64) (*TLH, error) {
	if maxPercentage <= 0 || maxPercentage >= 1 {
		return nil, validationErrorf("max percentage should be between 0%% and 100%% (exclusive)")
	}
	if maxDollars < 0 {
		return nil, validationErrorf("max dollars should be positive")
	}
	return &TLH{maxPercentage: maxPercentage, maxDollars: maxDollars}, nil
}

// TLHRow is one tax lot whose loss can be harvested.
type TLHRow struct {
	Account   string
	ShortName string
	Date      Date
	Loss      Money
	LossPct   Percent
}

// lotsToSell selects which of an asset's lots to harvest.
func (t *TLH) lotsToSell(account, shortName string, gains []LotGain) []TLHRow {
	var percentLots []TLHRow
	var negativeLots []TLHRow
	totalLoss := 0.0

	for _, gain := range gains {
		loss := gain.Gain.Neg()
		row := TLHRow{
			Account:   account,
			ShortName: shortName,
			Date:      gain.Date,
			Loss:      loss,
			LossPct:   Percent(-float64(gain.GainPct)),
		}
		if loss.IsPositive() {
			negativeLots = append(negativeLots, row)
			totalLoss += loss.AsFloat()
		}
		if float64(row.LossPct)/100 > t.maxPercentage {
			percentLots = append(percentLots, row)
		}
	}

	if t.maxDollars != 0 && totalLoss > t.maxDollars {
		return negativeLots
	}
	return percentLots
}

// Analyze returns the tax lots of the portfolio that can be loss harvested,
// at today's prices.
func (t *TLH) Analyze(portfolio *Portfolio) ([]TLHRow, error) {
	var rows []TLHRow
	for _, account := range portfolio.Accounts() {
		for _, asset := range account.Assets() {
			holder, ok := asset.(LotHolder)
			if !ok || len(holder.Lots()) == 0 {
				continue
			}
			gains, err := holder.LotGains(Today())
			if err != nil {
				return nil, err
			}
			rows = append(rows, t.lotsToSell(account.Name(), asset.ShortName(), gains)...)
		}
	}
	return rows, nil
}

// BandRebalance flags asset classes drifted outside rebalancing bands. An
// asset class is outside its band when its actual allocation differs from
// the desired one by more than the absolute band, or by more than the
// relative band in proportion to the desired ratio. The popular 5/25 rule is
// NewBandRebalance(0.05, 0.25).
type BandRebalance struct {
	maxAbsolute float64
	maxRelative float64
}

// NewBandRebalance returns an analyzer with the given absolute and relative
// bands, both ratios in (0, 1).
func NewBandRebalance(maxAbsolute, maxRelative float64) (*BandRebalance, error) {
	if maxAbsolute <= 0 || maxAbsolute >= 1 {
		return nil, validationErrorf("max absolute percentage should be between 0%% and 100%% (exclusive)")
	}
	if maxRelative <= 0 || maxRelative >= 1 {
		return nil, validationErrorf("max relative percentage should be between 0%% and 100%% (exclusive)")
	}
	return &BandRebalance{maxAbsolute: maxAbsolute, maxRelative: maxRelative}, nil
}

// Analyze returns the leaf asset classes that drifted outside the bands.
func (b *BandRebalance) Analyze(portfolio *Portfolio) ([]AllocationEntry, error) {
	entries, err := portfolio.AssetAllocation(portfolio.LeafNames())
	if err != nil {
		return nil, err
	}

	var out []AllocationEntry
	for _, entry := range entries {
		abs := math.Abs(entry.ActualRatio - entry.DesiredRatio)
		rel := 0.0
		if entry.DesiredRatio != 0 {
			rel = abs / entry.DesiredRatio
		}
		if abs >= b.maxAbsolute || rel >= b.maxRelative {
			out = append(out, entry)
		}
	}
	return out, nil
}
