package allocation

import "encoding/json"

// ManualAsset is an asset whose value is entered by hand, typically cash,
// private investments or anything without a market quote.
type ManualAsset struct {
	baseAsset
	name  string
	value Money
}

// NewManualAsset returns a manual asset named name worth value, mapped onto
// leaf asset classes per classRatios.
func NewManualAsset(name string, value Money, classRatios map[string]float64) (*ManualAsset, error) {
	base, err := newBaseAsset(classRatios)
	if err != nil {
		return nil, err
	}
	return &ManualAsset{baseAsset: base, name: name, value: value}, nil
}

func (a *ManualAsset) Type() string          { return "ManualAsset" }
func (a *ManualAsset) Name() (string, error) { return a.name, nil }
func (a *ManualAsset) ShortName() string     { return a.name }

func (a *ManualAsset) Value() (Money, error) { return a.value, nil }

func (a *ManualAsset) AdjustedValue() (Money, error) { return a.adjust(a.value), nil }

// SetValue replaces the manually entered value.
func (a *ManualAsset) SetValue(value Money) { a.value = value }

func (a *ManualAsset) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("name", a.name)
	w.Append("value", a.value)
	a.writeCommon(w)
	return json.Marshal(w)
}

func decodeManualAsset(data []byte, _ *QuoteService) (Asset, error) {
	var doc struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
		baseAssetDoc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid manual asset document: %v", err)
	}
	a, err := NewManualAsset(doc.Name, Dollars(doc.Value), doc.AssetMapping)
	if err != nil {
		return nil, err
	}
	doc.restoreCommon(a)
	return a, nil
}

var _ Asset = (*ManualAsset)(nil)
