package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
)

// whatIfCmd holds the flags for the 'whatif' subcommand.
type whatIfCmd struct {
	account string
	asset   string
	reset   bool
}

func (*whatIfCmd) Name() string     { return "whatif" }
func (*whatIfCmd) Synopsis() string { return "run hypothetical what if scenarios" }
func (*whatIfCmd) Usage() string {
	return `pal whatif -asset <substr> [-account <substr>] <delta>
pal whatif -account <substr> <delta>
pal whatif -reset

  Hypothetically changes the value of an asset or the cash balance of an
  account by delta dollars, to see how the asset allocation or location
  would react. The changes are saved with the portfolio until -reset
  removes them all.

Usage Examples:
# What if I sold $10,000 of the S&P 500 fund and left the cash in the account?
$ pal whatif -asset "S&P 500" -10000

# What if I deposited $10,000 into Schwab?
$ pal whatif -account Schwab 10000

`
}

func (c *whatIfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Substring matching the account to change, or to disambiguate -asset.")
	f.StringVar(&c.asset, "asset", "", "Substring matching the name, or exactly the short name, of the asset to change.")
	f.BoolVar(&c.reset, "reset", false, "Remove all hypothetical what ifs.")
}

func (c *whatIfCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	portfolio, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.reset {
		portfolio.ResetWhatIfs()
		if err := SavePortfolio(portfolio); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("Cleared all hypothetical what ifs.")
		return subcommands.ExitSuccess
	}

	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, "Error: expected exactly one delta argument\n", c.Usage())
		return subcommands.ExitUsageError
	}
	delta, err := strconv.ParseFloat(f.Arg(0), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid delta %q: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}

	switch {
	case c.asset != "":
		account, asset, err := portfolio.AssetBySubstring(c.account, c.asset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		name, err := asset.Name()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := portfolio.WhatIf(account.Name(), name, allocation.Dollars(delta)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.account != "":
		account, err := portfolio.AccountBySubstring(c.account)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := portfolio.WhatIfAddCash(account.Name(), allocation.Dollars(delta)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	default:
		fmt.Fprint(os.Stderr, "Error: either -asset or -account is required\n", c.Usage())
		return subcommands.ExitUsageError
	}

	if err := SavePortfolio(portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	endFetchProgress()
	accounts, assets, err := portfolio.GetWhatIfs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.WhatIfsMarkdown(accounts, assets))
	return subcommands.ExitSuccess
}
