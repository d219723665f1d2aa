package allocation

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// VanguardFund is an institutional Vanguard trust fund. These funds have no
// public ticker and are priced through Vanguard's fund API by their numeric
// fund id.
type VanguardFund struct {
	TradedAsset
	fundID int
	quotes *QuoteService
}

// NewVanguardFund returns an asset of shares units of the Vanguard fund
// fundID, priced through the given quote service.
func NewVanguardFund(quotes *QuoteService, fundID int, shares float64, classRatios map[string]float64) (*VanguardFund, error) {
	base, err := newBaseAsset(classRatios)
	if err != nil {
		return nil, err
	}
	return &VanguardFund{
		TradedAsset: TradedAsset{baseAsset: base, shares: shares},
		fundID:      fundID,
		quotes:      quotes,
	}, nil
}

func (a *VanguardFund) Type() string      { return "VanguardFund" }
func (a *VanguardFund) ShortName() string { return strconv.Itoa(a.fundID) }

// FundID returns the numeric Vanguard fund id.
func (a *VanguardFund) FundID() int { return a.fundID }

func (a *VanguardFund) Name() (string, error) {
	if a.quotes == nil {
		return "", fmt.Errorf("vanguard fund %d: no quote service configured", a.fundID)
	}
	return a.quotes.FundName(a.fundID)
}

// Price returns the current unit price of the fund.
func (a *VanguardFund) Price() (Money, error) {
	if a.quotes == nil {
		return Money{}, fmt.Errorf("vanguard fund %d: no quote service configured", a.fundID)
	}
	price, err := a.quotes.FundPrice(a.fundID)
	if err != nil {
		return Money{}, err
	}
	return Dollars(price), nil
}

func (a *VanguardFund) Value() (Money, error) {
	price, err := a.Price()
	if err != nil {
		return Money{}, err
	}
	return a.valueAt(price), nil
}

func (a *VanguardFund) AdjustedValue() (Money, error) {
	value, err := a.Value()
	if err != nil {
		return Money{}, err
	}
	return a.adjust(value), nil
}

func (a *VanguardFund) LotGains(asOf Date) ([]LotGain, error) {
	price, err := a.Price()
	if err != nil {
		return nil, err
	}
	return lotGains(a.lots, price, asOf), nil
}

// Prefetch warms the fund name and price in the cache.
func (a *VanguardFund) Prefetch() error {
	if _, err := a.Name(); err != nil {
		return err
	}
	_, err := a.Price()
	return err
}

func (a *VanguardFund) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("fund_id", a.fundID)
	a.writeTraded(w)
	return json.Marshal(w)
}

func decodeVanguardFund(data []byte, quotes *QuoteService) (Asset, error) {
	var doc struct {
		FundID int `json:"fund_id"`
		tradedAssetDoc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid vanguard fund document: %v", err)
	}
	a, err := NewVanguardFund(quotes, doc.FundID, doc.Shares, doc.AssetMapping)
	if err != nil {
		return nil, err
	}
	if err := doc.restoreTraded(a); err != nil {
		return nil, err
	}
	return a, nil
}

var _ LotHolder = (*VanguardFund)(nil)
