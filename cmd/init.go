package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

type initCmd struct {
	force bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new portfolio file" }
func (*initCmd) Usage() string {
	return `pal init [-force]

  Creates the portfolio file with a starter asset class tree and no
  accounts. Edit the file to declare your own asset classes, accounts and
  assets, see 'pal topic classes' for the document format.

Usage Examples:
# Creates ./portfolio.json.
$ pal init

`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Overwrite an existing portfolio file.")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := os.Stat(*portfolioFile); err == nil && !c.force {
		fmt.Fprintf(os.Stderr, "Error: portfolio file already exists: %s\n", *portfolioFile)
		return subcommands.ExitFailure
	}

	portfolio, err := allocation.NewPortfolio(starterClasses())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SavePortfolio(portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created %s. Edit it to declare your accounts and assets.\n", *portfolioFile)
	return subcommands.ExitSuccess
}

// starterClasses is the asset class tree written by init, a classic
// three-fund split meant to be edited.
func starterClasses() *allocation.AssetClass {
	equity := allocation.NewAssetClass("Equity").
		AddSubclass(0.6, allocation.NewAssetClass("US")).
		AddSubclass(0.4, allocation.NewAssetClass("Intl"))
	return allocation.NewAssetClass("All").
		AddSubclass(0.6, equity).
		AddSubclass(0.4, allocation.NewAssetClass("Bonds"))
}
