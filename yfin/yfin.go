// Package yfin prices publicly traded tickers through the Yahoo Finance
// quote API.
package yfin

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/allocation"
)

const quoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"

// Client resolves ticker symbols against Yahoo Finance.
type Client struct {
	httpClient *http.Client
}

// New returns a client fetching through http.DefaultClient.
func New() *Client { return &Client{httpClient: http.DefaultClient} }

// NewWithHTTPClient returns a client fetching through the given HTTP client.
func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Quote returns the long name and the regular market price of ticker. A
// ticker Yahoo does not know, or knows without a name or price, reports a
// NotFoundError.
func (c *Client) Quote(ticker string) (allocation.Quote, error) {
	addr := quoteURL + "?symbols=" + url.QueryEscape(ticker)
	var jobj any
	if err := jwget(c.httpClient, addr, &jobj); err != nil {
		return allocation.Quote{}, fmt.Errorf("error retrieving %q: %w", ticker, err)
	}
	return parseQuote(ticker, jobj)
}

// parseQuote extracts the quote of ticker from a quote API response.
func parseQuote(ticker string, jobj any) (allocation.Quote, error) {
	name, err := jget(jobj, "$.quoteResponse.result[0].longName")
	if err != nil {
		return allocation.Quote{}, &allocation.NotFoundError{Kind: "ticker", Name: ticker}
	}
	nameStr, ok := name.(string)
	if !ok {
		return allocation.Quote{}, &allocation.NotFoundError{Kind: "ticker", Name: ticker}
	}
	price, err := jget(jobj, "$.quoteResponse.result[0].regularMarketPrice")
	if err != nil {
		return allocation.Quote{}, &allocation.NotFoundError{Kind: "ticker", Name: ticker}
	}
	priceVal, ok := price.(float64)
	if !ok {
		return allocation.Quote{}, fmt.Errorf("cannot read price of %q: not a number (%v)", ticker, price)
	}
	return allocation.Quote{Name: nameStr, Price: priceVal}, nil
}

// jget extracts the value at path. jsonpath is never clear about whether it
// returns a list of one answer or a single answer, a single-element list is
// unwrapped.
func jget(jobj any, path string) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	return jval, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// data.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

var _ allocation.Quoter = (*Client)(nil)
