package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
)

// infoCmd holds the flags for the 'info' subcommand.
type infoCmd struct {
	account     string
	asset       string
	performance bool
	begin       string
	end         string
}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "display details about an account, an asset or the performance" }
func (*infoCmd) Usage() string {
	return `pal info -account <substr>
pal info -asset <substr> [-account <substr>]
pal info -performance [-begin <date>] [-end <date>]

  Displays details about a single account or asset, or the portfolio
  performance between two checkpoint dates.

Usage Examples:
# Details of the I Bonds held at TreasuryDirect, including every bond.
$ pal info -asset "I Bonds"

# Performance of the portfolio over this year.
$ pal info -performance -begin 2025-01-01

`
}

func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Substring matching the account to inspect, or to disambiguate -asset.")
	f.StringVar(&c.asset, "asset", "", "Substring matching the name, or exactly the short name, of the asset to inspect.")
	f.BoolVar(&c.performance, "performance", false, "Display performance between two checkpoint dates.")
	f.StringVar(&c.begin, "begin", "", "Begin date for -performance. Defaults to the first checkpoint.")
	f.StringVar(&c.end, "end", "", "End date for -performance. Defaults to the last checkpoint.")
}

func (c *infoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var doc string
	var err error
	switch {
	case c.performance:
		doc, err = c.performanceInfo()
	case c.asset != "":
		doc, err = c.assetInfo()
	case c.account != "":
		doc, err = c.accountInfo()
	default:
		fmt.Fprint(os.Stderr, "Error: one of -account, -asset or -performance is required\n", c.Usage())
		return subcommands.ExitUsageError
	}
	endFetchProgress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}

func (c *infoCmd) accountInfo() (string, error) {
	portfolio, err := LoadPortfolio()
	if err != nil {
		return "", err
	}
	account, err := portfolio.AccountBySubstring(c.account)
	if err != nil {
		return "", err
	}
	return renderer.AccountInfoMarkdown(account)
}

func (c *infoCmd) assetInfo() (string, error) {
	portfolio, err := LoadPortfolio()
	if err != nil {
		return "", err
	}
	_, asset, err := portfolio.AssetBySubstring(c.account, c.asset)
	if err != nil {
		return "", err
	}
	return renderer.AssetInfoMarkdown(asset)
}

func (c *infoCmd) performanceInfo() (string, error) {
	timeline, err := LoadTimeline()
	if err != nil {
		return "", err
	}
	var begin, end allocation.Date
	if c.begin != "" {
		if begin, err = allocation.ParseDate(c.begin); err != nil {
			return "", err
		}
	}
	if c.end != "" {
		if end, err = allocation.ParseDate(c.end); err != nil {
			return "", err
		}
	}
	info, err := allocation.NewPerformance(timeline).Info(begin, end)
	if err != nil {
		return "", err
	}
	return renderer.PerformanceInfoMarkdown(info), nil
}
