package allocation

import (
	"encoding/json"
	"math"
)

// Account is a named collection of assets, a brokerage or retirement account
// for instance. The account type is a free-form tag ("Taxable", "Tax-Exempt",
// ...) used to group accounts in reports.
//
// The available cash balance records money hypothetically freed by what-if
// operations on the account's assets, see Portfolio.WhatIf.
type Account struct {
	name        string
	accountType string
	assets      []Asset
	cash        Money
}

// NewAccount returns an empty account named name with the given type tag.
func NewAccount(name, accountType string) *Account {
	return &Account{name: name, accountType: accountType}
}

// Name returns the name of this account.
func (a *Account) Name() string { return a.name }

// AccountType returns the type tag of this account.
func (a *Account) AccountType() string { return a.accountType }

// Assets returns the assets of this account in insertion order.
func (a *Account) Assets() []Asset { return a.assets }

// AddAsset adds an asset to this account. The asset's short name must be
// unique within the account.
func (a *Account) AddAsset(asset Asset) error {
	for _, existing := range a.assets {
		if existing.ShortName() == asset.ShortName() {
			return validationErrorf("attempting to add duplicate asset: %s", asset.ShortName())
		}
	}
	a.assets = append(a.assets, asset)
	return nil
}

// ReplaceAsset adds an asset, replacing any existing asset with the same
// short name in place.
func (a *Account) ReplaceAsset(asset Asset) {
	for i, existing := range a.assets {
		if existing.ShortName() == asset.ShortName() {
			a.assets[i] = asset
			return
		}
	}
	a.assets = append(a.assets, asset)
}

// GetAsset returns the asset with the given short name.
func (a *Account) GetAsset(shortName string) (Asset, error) {
	for _, asset := range a.assets {
		if asset.ShortName() == shortName {
			return asset, nil
		}
	}
	return nil, &NotFoundError{Kind: "asset", Name: shortName}
}

// RemoveAsset removes the asset with the given short name.
func (a *Account) RemoveAsset(shortName string) error {
	for i, asset := range a.assets {
		if asset.ShortName() == shortName {
			a.assets = append(a.assets[:i], a.assets[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Kind: "asset", Name: shortName}
}

// SetAssets replaces all assets of this account.
func (a *Account) SetAssets(assets []Asset) error {
	a.assets = nil
	for _, asset := range assets {
		if err := a.AddAsset(asset); err != nil {
			return err
		}
	}
	return nil
}

// AddCash adds delta to the available cash balance. A balance within 1e-6 of
// zero snaps back to exactly zero.
func (a *Account) AddCash(delta Money) {
	a.cash = a.cash.Add(delta)
	if math.Abs(a.cash.AsFloat()) < deltaTolerance {
		a.cash = Money{}
	}
}

// AvailableCash returns the cash balance accumulated by what-if operations.
func (a *Account) AvailableCash() Money { return a.cash }

// Total returns the value of this account: available cash plus the adjusted
// value of every asset.
func (a *Account) Total() (Money, error) {
	total := a.cash
	for _, asset := range a.assets {
		value, err := asset.AdjustedValue()
		if err != nil {
			return Money{}, err
		}
		total = total.Add(value)
	}
	return total, nil
}

// BaseTotal returns the value of this account ignoring any what-if
// adjustment and the available cash.
func (a *Account) BaseTotal() (Money, error) {
	total := Dollars(0)
	for _, asset := range a.assets {
		value, err := asset.Value()
		if err != nil {
			return Money{}, err
		}
		total = total.Add(value)
	}
	return total, nil
}

func (a *Account) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("name", a.name)
	w.Append("account_type", a.accountType)
	if len(a.assets) > 0 {
		assets := make([]json.RawMessage, 0, len(a.assets))
		for _, asset := range a.assets {
			raw, err := encodeAsset(asset)
			if err != nil {
				return nil, err
			}
			assets = append(assets, raw)
		}
		w.Append("assets", assets)
	}
	if !a.cash.IsZero() {
		w.Append("available_cash", a.cash)
	}
	return json.Marshal(w)
}

// decodeAccount decodes an account document, dispatching each asset to its
// registered decoder.
func decodeAccount(data []byte, quotes *QuoteService) (*Account, error) {
	var doc struct {
		Name          string            `json:"name"`
		AccountType   string            `json:"account_type"`
		Assets        []json.RawMessage `json:"assets"`
		AvailableCash float64           `json:"available_cash"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid account document: %v", err)
	}
	account := NewAccount(doc.Name, doc.AccountType)
	for _, raw := range doc.Assets {
		asset, err := decodeAsset(raw, quotes)
		if err != nil {
			return nil, err
		}
		if err := account.AddAsset(asset); err != nil {
			return nil, err
		}
	}
	if doc.AvailableCash != 0 {
		account.AddCash(Dollars(doc.AvailableCash))
	}
	return account, nil
}

var _ json.Marshaler = (*Account)(nil)
