package allocation

import (
	"encoding/json"
	"sort"
	"strings"
)

// Portfolio is the top level object: a validated asset class tree describing
// the desired allocation, and the accounts holding the actual assets.
//
// Every asset in every account maps its value onto leaf classes of the tree,
// the mapping is checked when the account is added.
type Portfolio struct {
	classes  *AssetClass
	leafSet  map[string]bool
	accounts []*Account
}

// NewPortfolio returns a portfolio with the given desired allocation. The
// asset class tree is validated here.
func NewPortfolio(classes *AssetClass) (*Portfolio, error) {
	if _, err := classes.Validate(); err != nil {
		return nil, err
	}
	leaves, err := classes.Leaves()
	if err != nil {
		return nil, err
	}
	return &Portfolio{classes: classes, leafSet: leaves}, nil
}

// AssetClasses returns the desired allocation tree of this portfolio.
func (p *Portfolio) AssetClasses() *AssetClass { return p.classes }

// Accounts returns the accounts of this portfolio in insertion order.
func (p *Portfolio) Accounts() []*Account { return p.accounts }

// checkAssetClasses verifies that every class an account's assets map to is
// a leaf of the portfolio's tree.
func (p *Portfolio) checkAssetClasses(account *Account) error {
	for _, asset := range account.Assets() {
		for name := range asset.ClassRatios() {
			if !p.leafSet[name] {
				return validationErrorf("unknown or non-leaf asset class: %s", name)
			}
		}
	}
	return nil
}

// AddAccount adds an account to this portfolio. The account name must be
// unique and all its assets must map onto leaf classes of the tree.
func (p *Portfolio) AddAccount(account *Account) error {
	if err := p.checkAssetClasses(account); err != nil {
		return err
	}
	for _, existing := range p.accounts {
		if existing.Name() == account.Name() {
			return validationErrorf("attempting to add duplicate account: %s", account.Name())
		}
	}
	p.accounts = append(p.accounts, account)
	return nil
}

// ReplaceAccount adds an account, replacing any existing account with the
// same name in place.
func (p *Portfolio) ReplaceAccount(account *Account) error {
	if err := p.checkAssetClasses(account); err != nil {
		return err
	}
	for i, existing := range p.accounts {
		if existing.Name() == account.Name() {
			p.accounts[i] = account
			return nil
		}
	}
	p.accounts = append(p.accounts, account)
	return nil
}

// GetAccount returns the account with the given name.
func (p *Portfolio) GetAccount(name string) (*Account, error) {
	for _, account := range p.accounts {
		if account.Name() == name {
			return account, nil
		}
	}
	return nil, &NotFoundError{Kind: "account", Name: name}
}

// RemoveAccount removes the account with the given name.
func (p *Portfolio) RemoveAccount(name string) error {
	for i, account := range p.accounts {
		if account.Name() == name {
			p.accounts = append(p.accounts[:i], p.accounts[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Kind: "account", Name: name}
}

// AccountBySubstring returns the single account whose name contains substr.
// Zero matches and multiple matches are distinct errors, the caller either
// fixes a typo or narrows the query.
func (p *Portfolio) AccountBySubstring(substr string) (*Account, error) {
	var matches []*Account
	for _, account := range p.accounts {
		if strings.Contains(account.Name(), substr) {
			matches = append(matches, account)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "account", Name: substr}
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, account := range matches {
			names[i] = account.Name()
		}
		return nil, &AmbiguousMatchError{Kind: "account", Name: substr, Matches: names}
	}
}

// AssetBySubstring returns the single asset whose account name contains
// accountStr and whose name contains assetStr or whose short name equals
// assetStr.
func (p *Portfolio) AssetBySubstring(accountStr, assetStr string) (*Account, Asset, error) {
	type match struct {
		account *Account
		asset   Asset
	}
	var matches []match
	for _, account := range p.accounts {
		if !strings.Contains(account.Name(), accountStr) {
			continue
		}
		for _, asset := range account.Assets() {
			name, err := asset.Name()
			if err != nil {
				return nil, nil, err
			}
			if strings.Contains(name, assetStr) || asset.ShortName() == assetStr {
				matches = append(matches, match{account, asset})
			}
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil, &NotFoundError{Kind: "asset", Name: assetStr}
	case 1:
		return matches[0].account, matches[0].asset, nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.account.Name() + "/" + m.asset.ShortName()
		}
		return nil, nil, &AmbiguousMatchError{Kind: "asset", Name: assetStr, Matches: names}
	}
}

// WhatIf hypothetically changes the value of an asset by delta. The money
// comes out of the owning account's cash balance, so the account total is
// unchanged: buying more of an asset consumes cash, selling frees it.
func (p *Portfolio) WhatIf(accountName, assetName string, delta Money) error {
	account, err := p.GetAccount(accountName)
	if err != nil {
		return err
	}
	asset, err := account.GetAsset(assetName)
	if err != nil {
		return err
	}
	asset.WhatIf(delta)
	account.AddCash(delta.Neg())
	return nil
}

// WhatIfAddCash hypothetically adds cash to an account.
func (p *Portfolio) WhatIfAddCash(accountName string, delta Money) error {
	account, err := p.GetAccount(accountName)
	if err != nil {
		return err
	}
	account.AddCash(delta)
	return nil
}

// AccountWhatIf is an account whose cash balance was changed by what-if
// operations.
type AccountWhatIf struct {
	Account string
	Cash    Money
}

// AssetWhatIf is an asset whose value was changed by what-if operations.
type AssetWhatIf struct {
	Account string
	Asset   string
	Delta   Money
}

// GetWhatIfs returns all hypothetical changes currently applied to the
// portfolio: accounts with a non-zero cash balance and assets with a
// non-zero delta.
func (p *Portfolio) GetWhatIfs() ([]AccountWhatIf, []AssetWhatIf, error) {
	var accounts []AccountWhatIf
	var assets []AssetWhatIf
	for _, account := range p.accounts {
		if !account.AvailableCash().IsZero() {
			accounts = append(accounts, AccountWhatIf{Account: account.Name(), Cash: account.AvailableCash()})
		}
		for _, asset := range account.Assets() {
			if asset.Delta().IsZero() {
				continue
			}
			name, err := asset.Name()
			if err != nil {
				return nil, nil, err
			}
			assets = append(assets, AssetWhatIf{Account: account.Name(), Asset: name, Delta: asset.Delta()})
		}
	}
	return accounts, assets, nil
}

// ResetWhatIfs removes all hypothetical changes, restoring every asset and
// cash balance to its real value.
func (p *Portfolio) ResetWhatIfs() {
	for _, account := range p.accounts {
		account.AddCash(account.AvailableCash().Neg())
		for _, asset := range account.Assets() {
			asset.WhatIf(asset.Delta().Neg())
		}
	}
}

// TotalValue returns the value of the whole portfolio, including what-if
// adjustments and available cash.
func (p *Portfolio) TotalValue() (Money, error) {
	total := Dollars(0)
	for _, account := range p.accounts {
		t, err := account.Total()
		if err != nil {
			return Money{}, err
		}
		total = total.Add(t)
	}
	return total, nil
}

// UnadjustedValue returns the value of the whole portfolio ignoring what-if
// adjustments and available cash.
func (p *Portfolio) UnadjustedValue() (Money, error) {
	total := Dollars(0)
	for _, account := range p.accounts {
		t, err := account.BaseTotal()
		if err != nil {
			return Money{}, err
		}
		total = total.Add(t)
	}
	return total, nil
}

// LeafValues aggregates the adjusted value of every asset onto the leaf
// asset classes, the flat map ComputeAllocation consumes.
func (p *Portfolio) LeafValues() (map[string]float64, error) {
	values := make(map[string]float64)
	for _, account := range p.accounts {
		for _, asset := range account.Assets() {
			value, err := asset.AdjustedValue()
			if err != nil {
				return nil, err
			}
			for name, ratio := range asset.ClassRatios() {
				values[name] += ratio * value.AsFloat()
			}
		}
	}
	return values, nil
}

// LeafNames returns the names of the leaf asset classes, sorted.
func (p *Portfolio) LeafNames() []string {
	names := make([]string, 0, len(p.leafSet))
	for name := range p.leafSet {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prefetch warms the quotes of all priced assets in parallel.
func (p *Portfolio) Prefetch() error {
	var assets []Asset
	for _, account := range p.accounts {
		assets = append(assets, account.Assets()...)
	}
	return Prefetch(assets)
}

func (p *Portfolio) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("asset_classes", p.classes)
	if len(p.accounts) > 0 {
		w.Append("accounts", p.accounts)
	}
	return json.Marshal(w)
}

var _ json.Marshaler = (*Portfolio)(nil)
