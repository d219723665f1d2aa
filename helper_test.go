package allocation

import (
	"math"
	"strconv"
	"testing"
)

// fakeQuoter resolves tickers from a fixed table and counts lookups.
type fakeQuoter struct {
	quotes map[string]Quote
	calls  int
}

func (f *fakeQuoter) Quote(ticker string) (Quote, error) {
	f.calls++
	quote, ok := f.quotes[ticker]
	if !ok {
		return Quote{}, &NotFoundError{Kind: "ticker", Name: ticker}
	}
	return quote, nil
}

// fakeFundQuoter resolves Vanguard fund ids from fixed tables and counts
// lookups per endpoint.
type fakeFundQuoter struct {
	names      map[int]string
	prices     map[int]float64
	nameCalls  int
	priceCalls int
}

func (f *fakeFundQuoter) FundName(fundID int) (string, error) {
	f.nameCalls++
	name, ok := f.names[fundID]
	if !ok {
		return "", &NotFoundError{Kind: "fund", Name: strconv.Itoa(fundID)}
	}
	return name, nil
}

func (f *fakeFundQuoter) FundPrice(fundID int) (float64, error) {
	f.priceCalls++
	price, ok := f.prices[fundID]
	if !ok {
		return 0, &NotFoundError{Kind: "fund", Name: strconv.Itoa(fundID)}
	}
	return price, nil
}

// fakeBondQuoter redeems every savings bond at 110% of its face value.
type fakeBondQuoter struct {
	calls int
}

func (f *fakeBondQuoter) Redemption(series string, issue Date, denomination float64, redeem Date) (BondQuote, error) {
	f.calls++
	return BondQuote{Rate: "2.50%", Value: denomination * 1.1}, nil
}

// testProviders returns the fake providers shared by the pricing tests: VTI
// at $220, VXUS at $60 and fund 7555 at $125.
func testProviders() (*fakeQuoter, *fakeFundQuoter, *fakeBondQuoter) {
	tickers := &fakeQuoter{quotes: map[string]Quote{
		"VTI":  {Name: "Vanguard Total Stock Market ETF", Price: 220},
		"VXUS": {Name: "Vanguard Total International Stock ETF", Price: 60},
	}}
	funds := &fakeFundQuoter{
		names:  map[int]string{7555: "Vanguard Institutional Total Stock Market Index Trust"},
		prices: map[int]float64{7555: 125},
	}
	return tickers, funds, &fakeBondQuoter{}
}

// testQuotes returns a quote service over the fake providers, with no cache.
func testQuotes(t *testing.T) *QuoteService {
	t.Helper()
	tickers, funds, bonds := testProviders()
	return NewQuoteService(tickers, funds, bonds, nil)
}

// tickerAsset builds a TickerAsset priced through the given service.
func tickerAsset(t *testing.T, quotes *QuoteService, ticker string, shares float64, ratios map[string]float64) *TickerAsset {
	t.Helper()
	asset, err := NewTickerAsset(quotes, ticker, shares, ratios)
	if err != nil {
		t.Fatalf("NewTickerAsset(%s) error: %v", ticker, err)
	}
	return asset
}

// checkMoney fails unless got is within a millionth of a dollar of want.
func checkMoney(t *testing.T, what string, got Money, want float64) {
	t.Helper()
	if math.Abs(got.AsFloat()-want) > 1e-6 {
		t.Errorf("%s = %s, want $%v", what, got, want)
	}
}
