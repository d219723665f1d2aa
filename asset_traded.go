package allocation

import (
	"encoding/json"
	"fmt"
	"math"
)

// TradedAsset carries the state common to assets with a unit count and a per
// unit market price: the number of shares held and, optionally, the tax lots
// those shares were bought in.
type TradedAsset struct {
	baseAsset
	shares float64
	lots   []TaxLot
}

// Shares returns the number of units held.
func (a *TradedAsset) Shares() float64 { return a.shares }

// Lots returns the tax lots of this asset, nil when none were recorded.
func (a *TradedAsset) Lots() []TaxLot { return a.lots }

// SetLots records the purchase lots of this asset. The lot quantities must
// sum to the share count.
func (a *TradedAsset) SetLots(lots []TaxLot) error {
	sum := 0.0
	for _, lot := range lots {
		sum += lot.Quantity
	}
	if math.Abs(sum-a.shares) > deltaTolerance {
		return validationErrorf("lots provided should sum up to %v", a.shares)
	}
	a.lots = lots
	return nil
}

// valueAt prices the whole position at the given unit price.
func (a *TradedAsset) valueAt(price Money) Money {
	return price.MulFloat(a.shares)
}

// writeTraded appends the document fields shared by traded assets.
func (a *TradedAsset) writeTraded(w *jsonObjectWriter) {
	w.Append("shares", a.shares)
	w.Append("asset_mapping", a.ratios)
	if len(a.lots) > 0 {
		w.Append("tax_lots", a.lots)
	}
	if !a.delta.IsZero() {
		w.Append("what_if", a.delta)
	}
}

type tradedAssetDoc struct {
	Shares  float64  `json:"shares"`
	TaxLots []TaxLot `json:"tax_lots"`
	baseAssetDoc
}

func (d *tradedAssetDoc) restoreTraded(a LotHolder) error {
	if len(d.TaxLots) > 0 {
		if err := a.SetLots(d.TaxLots); err != nil {
			return err
		}
	}
	d.restoreCommon(a)
	return nil
}

// LotHolder is implemented by assets that track purchase tax lots.
type LotHolder interface {
	Asset
	Lots() []TaxLot
	SetLots(lots []TaxLot) error
	// LotGains prices every lot at the current unit price and returns the
	// per-lot unrealized gains. asOf classifies the holding periods.
	LotGains(asOf Date) ([]LotGain, error)
}

// TickerAsset is a publicly traded asset, a stock or an ETF, priced through
// its ticker symbol.
type TickerAsset struct {
	TradedAsset
	ticker string
	quotes *QuoteService
}

// NewTickerAsset returns an asset of shares units of ticker, priced through
// the given quote service.
func NewTickerAsset(quotes *QuoteService, ticker string, shares float64, classRatios map[string]float64) (*TickerAsset, error) {
	base, err := newBaseAsset(classRatios)
	if err != nil {
		return nil, err
	}
	return &TickerAsset{
		TradedAsset: TradedAsset{baseAsset: base, shares: shares},
		ticker:      ticker,
		quotes:      quotes,
	}, nil
}

func (a *TickerAsset) Type() string      { return "TickerAsset" }
func (a *TickerAsset) ShortName() string { return a.ticker }

// Ticker returns the ticker symbol of this asset.
func (a *TickerAsset) Ticker() string { return a.ticker }

func (a *TickerAsset) Name() (string, error) {
	quote, err := a.quote()
	if err != nil {
		return "", err
	}
	return quote.Name, nil
}

// Price returns the current unit price of the ticker.
func (a *TickerAsset) Price() (Money, error) {
	quote, err := a.quote()
	if err != nil {
		return Money{}, err
	}
	return Dollars(quote.Price), nil
}

func (a *TickerAsset) quote() (Quote, error) {
	if a.quotes == nil {
		return Quote{}, fmt.Errorf("ticker %q: no quote service configured", a.ticker)
	}
	return a.quotes.TickerQuote(a.ticker)
}

func (a *TickerAsset) Value() (Money, error) {
	price, err := a.Price()
	if err != nil {
		return Money{}, err
	}
	return a.valueAt(price), nil
}

func (a *TickerAsset) AdjustedValue() (Money, error) {
	value, err := a.Value()
	if err != nil {
		return Money{}, err
	}
	return a.adjust(value), nil
}

func (a *TickerAsset) LotGains(asOf Date) ([]LotGain, error) {
	price, err := a.Price()
	if err != nil {
		return nil, err
	}
	return lotGains(a.lots, price, asOf), nil
}

// Prefetch warms the ticker quote in the cache.
func (a *TickerAsset) Prefetch() error {
	_, err := a.quote()
	return err
}

func (a *TickerAsset) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("ticker", a.ticker)
	a.writeTraded(w)
	return json.Marshal(w)
}

func decodeTickerAsset(data []byte, quotes *QuoteService) (Asset, error) {
	var doc struct {
		Ticker string `json:"ticker"`
		tradedAssetDoc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid ticker asset document: %v", err)
	}
	a, err := NewTickerAsset(quotes, doc.Ticker, doc.Shares, doc.AssetMapping)
	if err != nil {
		return nil, err
	}
	if err := doc.restoreTraded(a); err != nil {
		return nil, err
	}
	return a, nil
}

var _ LotHolder = (*TickerAsset)(nil)
