package allocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Quote is the data a pricing provider returns for one ticker.
type Quote struct {
	Name  string
	Price float64
}

// BondQuote is the redemption data the treasury calculator returns for one
// savings bond: the composite rate as displayed and the redemption value.
type BondQuote struct {
	Rate  string
	Value float64
}

// Quoter resolves a ticker symbol to its current quote.
type Quoter interface {
	Quote(ticker string) (Quote, error)
}

// FundQuoter resolves a Vanguard fund id to its name and unit price.
type FundQuoter interface {
	FundName(fundID int) (string, error)
	FundPrice(fundID int) (float64, error)
}

// BondQuoter computes the redemption value of a single savings bond as of
// the redeem month.
type BondQuoter interface {
	Redemption(series string, issue Date, denomination float64, redeem Date) (BondQuote, error)
}

// Days each kind of quote stays fresh in the cache. Fund names change so
// rarely that they are exempt from force refresh, see maxDaysToForceRefresh.
const (
	tickerQuoteTTL = 1
	fundNameTTL    = 365
	fundPriceTTL   = 1
	bondValueTTL   = 32
)

// QuoteService resolves asset prices through the configured providers,
// memoizing the slow lookups in a QuoteCache.
//
// Any provider may be nil, lookups of that kind then fail with a descriptive
// error. A nil cache disables memoization.
type QuoteService struct {
	tickers Quoter
	funds   FundQuoter
	bonds   BondQuoter
	cache   *QuoteCache
}

// NewQuoteService returns a quote service backed by the given providers and
// cache.
func NewQuoteService(tickers Quoter, funds FundQuoter, bonds BondQuoter, cache *QuoteCache) *QuoteService {
	return &QuoteService{tickers: tickers, funds: funds, bonds: bonds, cache: cache}
}

// TickerQuote returns the quote for ticker, cached for a day.
func (s *QuoteService) TickerQuote(ticker string) (Quote, error) {
	if s.tickers == nil {
		return Quote{}, fmt.Errorf("no ticker provider configured")
	}
	key := "TickerAsset.quote_" + ticker
	return cached(s.cache, key, tickerQuoteTTL, func() (Quote, error) {
		return s.tickers.Quote(ticker)
	})
}

// FundName returns the long name of a Vanguard fund, cached for a year.
func (s *QuoteService) FundName(fundID int) (string, error) {
	if s.funds == nil {
		return "", fmt.Errorf("no fund provider configured")
	}
	key := fmt.Sprintf("VanguardFund.name_%d", fundID)
	return cached(s.cache, key, fundNameTTL, func() (string, error) {
		return s.funds.FundName(fundID)
	})
}

// FundPrice returns the unit price of a Vanguard fund, cached for a day.
func (s *QuoteService) FundPrice(fundID int) (float64, error) {
	if s.funds == nil {
		return 0, fmt.Errorf("no fund provider configured")
	}
	key := fmt.Sprintf("VanguardFund.price_%d", fundID)
	return cached(s.cache, key, fundPriceTTL, func() (float64, error) {
		return s.funds.FundPrice(fundID)
	})
}

// BondRedemption returns the redemption value of one savings bond as of the
// redeem month, cached for a month.
func (s *QuoteService) BondRedemption(series string, issue Date, denomination float64, redeem Date) (BondQuote, error) {
	if s.bonds == nil {
		return BondQuote{}, fmt.Errorf("no bond provider configured")
	}
	key := fmt.Sprintf("SavingsBonds.value_%s.%s.%v.%s",
		series, issue.Format("01.2006"), denomination, redeem.Format("01.2006"))
	return cached(s.cache, key, bondValueTTL, func() (BondQuote, error) {
		return s.bonds.Redemption(series, issue, denomination, redeem)
	})
}

// cached reads the value under key from the cache, or fetches and stores it.
// Cache write failures are logged and ignored, a failed write only costs a
// refetch later.
func cached[T any](c *QuoteCache, key string, days int, fetch func() (T, error)) (T, error) {
	var value T
	if c != nil {
		if data, ok := c.Get(key, days); ok {
			if err := json.Unmarshal(data, &value); err == nil {
				return value, nil
			}
		}
	}
	value, err := fetch()
	if err != nil {
		return value, err
	}
	if c != nil {
		data, err := json.Marshal(value)
		if err == nil {
			err = c.Put(key, days, data)
		}
		if err != nil {
			log.Printf("cache write err (ignored): %v", err)
		}
	}
	return value, nil
}

// Prefetcher is implemented by assets that can warm their quotes ahead of
// use, so a report over many priced assets does not fetch them one by one.
type Prefetcher interface {
	Prefetch() error
}

// Prefetch warms the quotes of every asset that supports it, fetching in
// parallel. It returns the errors of all failed fetches, the successful ones
// are cached regardless.
func Prefetch(assets []Asset) error {
	var targets []Prefetcher
	for _, a := range assets {
		if p, ok := a.(Prefetcher); ok {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	errc := make(chan error, len(targets))
	var wg sync.WaitGroup
	for _, p := range targets {
		wg.Add(1)
		go func(p Prefetcher) {
			defer wg.Done()
			if err := p.Prefetch(); err != nil {
				errc <- err
			}
		}(p)
	}
	wg.Wait()
	close(errc)

	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
