package allocation

import (
	"errors"
	"strings"
	"testing"
)

func TestAccountAssets(t *testing.T) {
	account := NewAccount("Schwab", "Taxable")
	if got := account.Name(); got != "Schwab" {
		t.Errorf("Name() = %q, want Schwab", got)
	}
	if got := account.AccountType(); got != "Taxable" {
		t.Errorf("AccountType() = %q, want Taxable", got)
	}

	if err := account.AddAsset(manualAsset(t, "Cash", 100, map[string]float64{"All": 1})); err != nil {
		t.Fatalf("AddAsset() error: %v", err)
	}
	if err := account.AddAsset(manualAsset(t, "CDs", 50, map[string]float64{"All": 1})); err != nil {
		t.Fatalf("AddAsset() error: %v", err)
	}

	// Insertion order is preserved.
	assets := account.Assets()
	if len(assets) != 2 || assets[0].ShortName() != "Cash" || assets[1].ShortName() != "CDs" {
		t.Errorf("Assets() = %v, want [Cash CDs]", assets)
	}

	t.Run("duplicate short name", func(t *testing.T) {
		err := account.AddAsset(manualAsset(t, "Cash", 1, map[string]float64{"All": 1}))
		var verr *ValidationError
		if !errors.As(err, &verr) || !strings.Contains(err.Error(), "duplicate asset") {
			t.Errorf("AddAsset() error = %v, want a duplicate asset error", err)
		}
	})

	t.Run("get", func(t *testing.T) {
		asset, err := account.GetAsset("CDs")
		if err != nil || asset.ShortName() != "CDs" {
			t.Errorf("GetAsset(CDs) = %v, %v", asset, err)
		}
		_, err = account.GetAsset("Gold")
		var nferr *NotFoundError
		if !errors.As(err, &nferr) {
			t.Errorf("GetAsset(Gold) error = %v, want NotFoundError", err)
		}
	})

	t.Run("replace keeps position", func(t *testing.T) {
		account.ReplaceAsset(manualAsset(t, "Cash", 200, map[string]float64{"All": 1}))
		assets := account.Assets()
		if len(assets) != 2 || assets[0].ShortName() != "Cash" {
			t.Fatalf("Assets() = %v, want Cash still first", assets)
		}
		value, _ := assets[0].Value()
		checkMoney(t, "replaced value", value, 200)
	})

	t.Run("remove", func(t *testing.T) {
		if err := account.RemoveAsset("CDs"); err != nil {
			t.Fatalf("RemoveAsset() error: %v", err)
		}
		if got := len(account.Assets()); got != 1 {
			t.Errorf("got %d assets after removal, want 1", got)
		}
		var nferr *NotFoundError
		if err := account.RemoveAsset("CDs"); !errors.As(err, &nferr) {
			t.Errorf("RemoveAsset(CDs) again error = %v, want NotFoundError", err)
		}
	})
}

func TestAccountSetAssets(t *testing.T) {
	account := NewAccount("Schwab", "Taxable")
	account.AddAsset(manualAsset(t, "Old", 1, map[string]float64{"All": 1}))

	err := account.SetAssets([]Asset{
		manualAsset(t, "Cash", 100, map[string]float64{"All": 1}),
		manualAsset(t, "CDs", 50, map[string]float64{"All": 1}),
	})
	if err != nil {
		t.Fatalf("SetAssets() error: %v", err)
	}
	if _, err := account.GetAsset("Old"); err == nil {
		t.Error("GetAsset(Old) found an asset SetAssets should have dropped")
	}

	err = account.SetAssets([]Asset{
		manualAsset(t, "Cash", 100, map[string]float64{"All": 1}),
		manualAsset(t, "Cash", 50, map[string]float64{"All": 1}),
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate asset") {
		t.Errorf("SetAssets() error = %v, want a duplicate asset error", err)
	}
}

func TestAccountCash(t *testing.T) {
	account := NewAccount("Schwab", "Taxable")
	if !account.AvailableCash().IsZero() {
		t.Fatalf("AvailableCash() = %s, want zero on a new account", account.AvailableCash())
	}

	account.AddCash(Dollars(100))
	account.AddCash(Dollars(-40))
	checkMoney(t, "AvailableCash()", account.AvailableCash(), 60)

	// A residue under the tolerance snaps back to zero.
	account.AddCash(Dollars(-60).Add(Dollars(5e-7)))
	if !account.AvailableCash().IsZero() {
		t.Errorf("AvailableCash() = %s, want zero", account.AvailableCash())
	}
}

func TestAccountTotals(t *testing.T) {
	account := NewAccount("Schwab", "Taxable")
	account.AddAsset(manualAsset(t, "Stocks", 60, map[string]float64{"All": 1}))
	account.AddAsset(manualAsset(t, "Bonds", 40, map[string]float64{"All": 1}))
	account.AddCash(Dollars(10))

	total, err := account.Total()
	if err != nil {
		t.Fatalf("Total() error: %v", err)
	}
	checkMoney(t, "Total()", total, 110)

	base, err := account.BaseTotal()
	if err != nil {
		t.Fatalf("BaseTotal() error: %v", err)
	}
	checkMoney(t, "BaseTotal()", base, 100)

	// Total follows what-if adjustments, BaseTotal never does.
	asset, _ := account.GetAsset("Stocks")
	asset.WhatIf(Dollars(15))
	total, _ = account.Total()
	checkMoney(t, "Total() with what-if", total, 125)
	base, _ = account.BaseTotal()
	checkMoney(t, "BaseTotal() with what-if", base, 100)
}
