package allocation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are persisted as bare numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// This file persists portfolios and timelines in a human-readable,
// git-friendly form, so that the data can live on a private repo.
//
// A portfolio is one indented JSON document with a stable key order: the
// natural unit of change is the whole file. A timeline is a JSONL stream,
// one checkpoint per line: its natural unit of change is appending today's
// checkpoint, and a one-line diff is what a reviewer wants to see.

// EncodePortfolio writes the portfolio to w as an indented JSON document.
// Zero-valued optional fields (what-ifs, cash balances) are omitted, a saved
// file never mentions them.
func EncodePortfolio(w io.Writer, p *Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cannot encode portfolio: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("cannot encode portfolio: %w", err)
	}
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("cannot write portfolio: %w", err)
	}
	return nil
}

// DecodePortfolio reads a portfolio document from r. The asset class tree is
// validated and each account is checked against it, exactly as if the
// portfolio had been built in memory. Priced assets resolve their quotes
// through the given quote service.
func DecodePortfolio(r io.Reader, quotes *QuoteService) (*Portfolio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read portfolio document: %w", err)
	}
	var doc struct {
		AssetClasses *AssetClass       `json:"asset_classes"`
		Accounts     []json.RawMessage `json:"accounts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, validationErrorf("invalid portfolio document: %v", err)
	}
	if doc.AssetClasses == nil {
		return nil, validationErrorf("portfolio document is missing the asset_classes tree")
	}
	portfolio, err := NewPortfolio(doc.AssetClasses)
	if err != nil {
		return nil, err
	}
	for _, raw := range doc.Accounts {
		account, err := decodeAccount(raw, quotes)
		if err != nil {
			return nil, err
		}
		if err := portfolio.AddAccount(account); err != nil {
			return nil, err
		}
	}
	return portfolio, nil
}

// EncodeTimeline writes the timeline to w in JSONL format, one checkpoint
// per line in date order.
func EncodeTimeline(w io.Writer, t *Timeline) error {
	for _, checkpoint := range t.Checkpoints() {
		data, err := json.Marshal(checkpoint)
		if err != nil {
			return fmt.Errorf("cannot encode checkpoint %s: %w", checkpoint.Date(), err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write checkpoint %s: %w", checkpoint.Date(), err)
		}
	}
	return nil
}

// DecodeTimeline reads a JSONL stream of checkpoints from r, one per line in
// any date order, and returns the sorted timeline.
func DecodeTimeline(r io.Reader) (*Timeline, error) {
	var checkpoints []*Checkpoint
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		checkpoint := new(Checkpoint)
		if err := json.Unmarshal(line, checkpoint); err != nil {
			return nil, fmt.Errorf("parse error on line %d %q: %w", i, string(line), err)
		}
		checkpoints = append(checkpoints, checkpoint)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read checkpoints: %w", err)
	}
	return NewTimeline(checkpoints)
}

// SavePortfolio persists the portfolio to filename, replacing any previous
// content.
func SavePortfolio(filename string, p *Portfolio) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", filename, err)
	}
	defer f.Close()
	return EncodePortfolio(f, p)
}

// LoadPortfolio reads the portfolio saved at filename. A missing file
// surfaces as fs.ErrNotExist, callers decide whether that means an empty
// portfolio or a fatal error.
func LoadPortfolio(filename string, quotes *QuoteService) (*Portfolio, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", filename, err)
	}
	defer f.Close()
	return DecodePortfolio(f, quotes)
}

// SaveTimeline persists the timeline to filename, replacing any previous
// content.
func SaveTimeline(filename string, t *Timeline) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", filename, err)
	}
	defer f.Close()
	return EncodeTimeline(f, t)
}

// LoadTimeline reads the timeline saved at filename. A missing file surfaces
// as fs.ErrNotExist.
func LoadTimeline(filename string) (*Timeline, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", filename, err)
	}
	defer f.Close()
	return DecodeTimeline(f)
}
