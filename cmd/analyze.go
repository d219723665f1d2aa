package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
)

// analyzeCmd holds the flags for the 'analyze' subcommand.
type analyzeCmd struct {
	maxPercentage float64
	maxDollars    float64
	maxAbs        float64
	maxRelative   float64
	account       string
	exclude       string
	rebalance     bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyze the portfolio" }
func (*analyzeCmd) Usage() string {
	return `pal analyze [flags] <analysis>...

  Analyzes the portfolio. Analyses:
    tlh        tax lots that could be sold to harvest their loss
    rebalance  asset classes drifted outside the rebalance bands
    allocate   how to spread an account's unallocated cash over its assets

  allocate minimizes the relative drift from the desired asset allocation
  and applies the suggested deltas to the portfolio as what ifs, like the
  whatif command does. Sanity check the suggestions before acting on them.

Usage Examples:
# Which lots lost more than 15% or $3,000?
$ pal analyze -max-percentage 15 -max-dollars 3000 tlh

# Spread the cash deposited on Schwab over its assets, except the bonds.
$ pal whatif -account Schwab 10000
$ pal analyze -account Schwab -exclude-assets "I Bonds" allocate

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.maxPercentage, "max-percentage", 10, "Max percentage loss of a lot before harvesting it.")
	f.Float64Var(&c.maxDollars, "max-dollars", 0, "Max absolute loss of an asset across all its lots before harvesting them, 0 to disable.")
	f.Float64Var(&c.maxAbs, "max-abs", 5, "Max absolute percentage drift of an asset class before rebalancing.")
	f.Float64Var(&c.maxRelative, "max-relative", 25, "Max relative percentage drift of an asset class before rebalancing.")
	f.StringVar(&c.account, "account", "", "Substring matching the account whose cash to allocate.")
	f.StringVar(&c.exclude, "exclude-assets", "", "Comma separated short names of assets that get no cash allocated.")
	f.BoolVar(&c.rebalance, "rebalance", false, "Let allocate both add and remove money from assets to minimize drift.")
}

func (c *analyzeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(os.Stderr, "Error: no analysis given, expected tlh, rebalance or allocate\n", c.Usage())
		return subcommands.ExitUsageError
	}

	portfolio, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := portfolio.Prefetch(); err != nil {
		endFetchProgress()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	endFetchProgress()

	var sections []string
	for _, analysis := range f.Args() {
		doc, err := c.analysis(analysis, portfolio)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		sections = append(sections, doc)
	}
	printMarkdown(strings.Join(sections, "\n"))
	return subcommands.ExitSuccess
}

func (c *analyzeCmd) analysis(name string, portfolio *allocation.Portfolio) (string, error) {
	switch name {
	case "tlh":
		tlh, err := allocation.NewTLH(c.maxPercentage/100, c.maxDollars)
		if err != nil {
			return "", err
		}
		rows, err := tlh.Analyze(portfolio)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "No tax lots to harvest.\n", nil
		}
		return renderer.TLHMarkdown(rows), nil

	case "rebalance":
		band, err := allocation.NewBandRebalance(c.maxAbs/100, c.maxRelative/100)
		if err != nil {
			return "", err
		}
		entries, err := band.Analyze(portfolio)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "Portfolio asset allocation within bounds.\n", nil
		}
		return renderer.RebalanceMarkdown(entries), nil

	case "allocate":
		if c.account == "" {
			return "", fmt.Errorf("allocate requires -account")
		}
		account, err := portfolio.AccountBySubstring(c.account)
		if err != nil {
			return "", err
		}
		var exclude []string
		for _, shortName := range strings.Split(c.exclude, ",") {
			if shortName = strings.TrimSpace(shortName); shortName != "" {
				exclude = append(exclude, shortName)
			}
		}
		rows, err := allocation.NewAllocate(account.Name(), exclude, c.rebalance).Analyze(portfolio)
		if err != nil {
			return "", err
		}
		// Analyze applied the deltas to the portfolio, persist them.
		if err := SavePortfolio(portfolio); err != nil {
			return "", err
		}
		return renderer.AllocateMarkdown(rows), nil
	}
	return "", fmt.Errorf("unknown analysis %q", name)
}
