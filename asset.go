package allocation

import (
	"encoding/json"
	"math"
	"sort"
)

// Asset is a single holding: a fund, an ETF, a bond collection or just cash.
//
// An asset maps its value onto leaf asset classes through ClassRatios and
// carries a cumulative what-if delta used to model hypothetical buys and
// sells without touching the real value.
type Asset interface {
	json.Marshaler

	// Type returns the registry tag identifying the concrete asset type.
	Type() string
	// Name returns the full printable name. For priced assets the name
	// comes from the pricing provider and the call can fail.
	Name() (string, error)
	// ShortName returns the short identifier of the asset, unique within
	// its account (a ticker, a fund id, a label).
	ShortName() string
	// Value returns the current market value of the asset.
	Value() (Money, error)
	// AdjustedValue returns Value plus the what-if delta, floored at zero.
	AdjustedValue() (Money, error)
	// WhatIf adds delta to the what-if accumulator.
	WhatIf(delta Money)
	// Delta returns the current what-if accumulator.
	Delta() Money
	// ClassRatios maps leaf asset class names to the fraction of this
	// asset's value allocated to them. Fractions sum to 1.
	ClassRatios() map[string]float64
}

// deltaTolerance is the tolerance under which a what-if accumulator snaps
// back to exactly zero, so that a round trip of deltas does not leave float
// dust in reports.
const deltaTolerance = 1e-6

// baseAsset carries the fields common to all assets: the class mapping and
// the what-if accumulator.
type baseAsset struct {
	ratios map[string]float64
	delta  Money
}

func newBaseAsset(classRatios map[string]float64) (baseAsset, error) {
	total := 0.0
	for _, ratio := range classRatios {
		if ratio < 0 || ratio > 1 {
			return baseAsset{}, validationErrorf("bad class ratio provided to asset (%v)", ratio)
		}
		total += ratio
	}
	if math.Abs(total-1) > ratioTolerance {
		return baseAsset{}, validationErrorf("total allocation to classes must be 100%% (actual = %.0f%%)", total*100)
	}
	return baseAsset{ratios: classRatios}, nil
}

func (a *baseAsset) WhatIf(delta Money) {
	a.delta = a.delta.Add(delta)
	if math.Abs(a.delta.AsFloat()) < deltaTolerance {
		a.delta = Money{}
	}
}

func (a *baseAsset) Delta() Money { return a.delta }

func (a *baseAsset) ClassRatios() map[string]float64 { return a.ratios }

// adjust applies the what-if accumulator to value. A delta larger than the
// value itself floors the result at zero, a holding cannot be worth less
// than nothing.
func (a *baseAsset) adjust(value Money) Money {
	v := value.Add(a.delta)
	if v.IsNegative() {
		return Dollars(0)
	}
	return v
}

// writeCommon appends the base fields shared by all asset documents.
func (a *baseAsset) writeCommon(w *jsonObjectWriter) {
	w.Append("asset_mapping", a.ratios)
	if !a.delta.IsZero() {
		w.Append("what_if", a.delta)
	}
}

// baseAssetDoc is the decoded form of the common asset fields.
type baseAssetDoc struct {
	AssetMapping map[string]float64 `json:"asset_mapping"`
	WhatIf       float64            `json:"what_if"`
}

// restoreCommon replays the decoded what-if delta onto the asset.
func (d *baseAssetDoc) restoreCommon(a Asset) {
	if d.WhatIf != 0 {
		a.WhatIf(Dollars(d.WhatIf))
	}
}

// AssetDecoder builds an asset back from its document body. Priced assets
// resolve their values through the given quote service.
type AssetDecoder func(data []byte, quotes *QuoteService) (Asset, error)

var assetDecoders = map[string]AssetDecoder{}

// RegisterAsset registers a decoder for the given asset type tag, so that
// new asset types can be decoded from portfolio documents without editing
// this package. Registering the same tag twice panics.
func RegisterAsset(typeTag string, decode AssetDecoder) {
	if _, ok := assetDecoders[typeTag]; ok {
		panic("asset type already registered: " + typeTag)
	}
	assetDecoders[typeTag] = decode
}

// RegisteredAssetTypes returns the sorted tags of all registered asset types.
func RegisteredAssetTypes() []string {
	tags := make([]string, 0, len(assetDecoders))
	for tag := range assetDecoders {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func init() {
	RegisterAsset("ManualAsset", decodeManualAsset)
	RegisterAsset("TickerAsset", decodeTickerAsset)
	RegisterAsset("VanguardFund", decodeVanguardFund)
	RegisterAsset("IBonds", decodeIBonds)
	RegisterAsset("EEBonds", decodeEEBonds)
}

// encodeAsset wraps the asset document body under its type tag, so that the
// decoder knows which factory to dispatch to.
func encodeAsset(a Asset) ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append(a.Type(), a)
	return json.Marshal(w)
}

// decodeAsset dispatches a {"TypeTag": {...}} document to the registered
// decoder.
func decodeAsset(data []byte, quotes *QuoteService) (Asset, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid asset document: %v", err)
	}
	if len(doc) != 1 {
		return nil, validationErrorf("asset document must have exactly one type tag, got %d", len(doc))
	}
	for tag, body := range doc {
		decode, ok := assetDecoders[tag]
		if !ok {
			return nil, &NotFoundError{Kind: "asset type", Name: tag}
		}
		return decode(body, quotes)
	}
	panic("unreachable")
}
