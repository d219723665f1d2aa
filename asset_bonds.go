package allocation

import (
	"encoding/json"
	"fmt"
)

// Savings bond series supported by the treasury redemption calculator.
const (
	SeriesI  = "I"
	SeriesEE = "EE"
)

// SavingsBond is one individual savings bond: the month it was issued and
// its face denomination.
type SavingsBond struct {
	Issue        Date
	Denomination Money
}

func (b SavingsBond) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("issue", b.Issue)
	w.Append("denomination", b.Denomination)
	return json.Marshal(w)
}

func (b *SavingsBond) UnmarshalJSON(data []byte) error {
	var doc struct {
		Issue        Date    `json:"issue"`
		Denomination float64 `json:"denomination"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return validationErrorf("invalid savings bond document: %v", err)
	}
	b.Issue = doc.Issue
	b.Denomination = Dollars(doc.Denomination)
	return nil
}

// SavingsBondRow is the current state of one savings bond: its composite
// rate as reported by the treasury and its redemption value.
type SavingsBondRow struct {
	Issue        Date
	Denomination Money
	Rate         string
	Value        Money
}

// SavingsBonds is a collection of I or EE savings bonds held as one asset.
// The bonds are valued through the treasury redemption calculator.
type SavingsBonds struct {
	baseAsset
	series string
	bonds  []SavingsBond
	quotes *QuoteService
}

// NewIBonds returns an empty collection of series I savings bonds.
func NewIBonds(quotes *QuoteService, classRatios map[string]float64) (*SavingsBonds, error) {
	return newSavingsBonds(quotes, SeriesI, classRatios)
}

// NewEEBonds returns an empty collection of series EE savings bonds.
func NewEEBonds(quotes *QuoteService, classRatios map[string]float64) (*SavingsBonds, error) {
	return newSavingsBonds(quotes, SeriesEE, classRatios)
}

func newSavingsBonds(quotes *QuoteService, series string, classRatios map[string]float64) (*SavingsBonds, error) {
	base, err := newBaseAsset(classRatios)
	if err != nil {
		return nil, err
	}
	return &SavingsBonds{baseAsset: base, series: series, quotes: quotes}, nil
}

// AddBond appends a bond issued on the month of issue with the given face
// denomination.
func (a *SavingsBonds) AddBond(issue Date, denomination Money) *SavingsBonds {
	a.bonds = append(a.bonds, SavingsBond{Issue: issue, Denomination: denomination})
	return a
}

// Bonds returns the individual bonds of this collection.
func (a *SavingsBonds) Bonds() []SavingsBond { return a.bonds }

// Series returns the savings bond series, "I" or "EE".
func (a *SavingsBonds) Series() string { return a.series }

func (a *SavingsBonds) Type() string {
	return a.series + "Bonds"
}

func (a *SavingsBonds) Name() (string, error) {
	return a.series + " Bonds", nil
}

func (a *SavingsBonds) ShortName() string {
	name, _ := a.Name()
	return name
}

func (a *SavingsBonds) Value() (Money, error) {
	return a.valueAsOf(Today())
}

func (a *SavingsBonds) valueAsOf(asOf Date) (Money, error) {
	total := Dollars(0)
	for _, bond := range a.bonds {
		quote, err := a.redemption(bond, asOf)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(Dollars(quote.Value))
	}
	return total, nil
}

func (a *SavingsBonds) AdjustedValue() (Money, error) {
	value, err := a.Value()
	if err != nil {
		return Money{}, err
	}
	return a.adjust(value), nil
}

// ListBonds returns the per-bond rates and redemption values as of the given
// day.
func (a *SavingsBonds) ListBonds(asOf Date) ([]SavingsBondRow, error) {
	rows := make([]SavingsBondRow, 0, len(a.bonds))
	for _, bond := range a.bonds {
		quote, err := a.redemption(bond, asOf)
		if err != nil {
			return nil, err
		}
		rows = append(rows, SavingsBondRow{
			Issue:        bond.Issue,
			Denomination: bond.Denomination,
			Rate:         quote.Rate,
			Value:        Dollars(quote.Value),
		})
	}
	return rows, nil
}

func (a *SavingsBonds) redemption(bond SavingsBond, asOf Date) (BondQuote, error) {
	if a.quotes == nil {
		return BondQuote{}, fmt.Errorf("%s bonds: no quote service configured", a.series)
	}
	return a.quotes.BondRedemption(a.series, bond.Issue, bond.Denomination.AsFloat(), asOf)
}

// Prefetch warms the redemption value of every bond in the cache.
func (a *SavingsBonds) Prefetch() error {
	_, err := a.Value()
	return err
}

func (a *SavingsBonds) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("asset_mapping", a.ratios)
	if len(a.bonds) > 0 {
		w.Append("bonds", a.bonds)
	}
	if !a.delta.IsZero() {
		w.Append("what_if", a.delta)
	}
	return json.Marshal(w)
}

func decodeIBonds(data []byte, quotes *QuoteService) (Asset, error) {
	return decodeSavingsBonds(SeriesI, data, quotes)
}

func decodeEEBonds(data []byte, quotes *QuoteService) (Asset, error) {
	return decodeSavingsBonds(SeriesEE, data, quotes)
}

func decodeSavingsBonds(series string, data []byte, quotes *QuoteService) (Asset, error) {
	var doc struct {
		Bonds []SavingsBond `json:"bonds"`
		baseAssetDoc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid %s bonds document: %v", series, err)
	}
	a, err := newSavingsBonds(quotes, series, doc.AssetMapping)
	if err != nil {
		return nil, err
	}
	a.bonds = doc.Bonds
	doc.restoreCommon(a)
	return a, nil
}

var _ Asset = (*SavingsBonds)(nil)
