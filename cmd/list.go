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

// listCmd holds the flags for the 'list' subcommand.
type listCmd struct {
	tree     bool
	levels   int
	classes  string
	group    bool
	quantity bool
	begin    string
	end      string

	// portfolio state shared across the requested reports.
	p          *allocation.Portfolio
	prefetched bool
	warned     bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "display reports about the portfolio" }
func (*listCmd) Usage() string {
	return `pal list [flags] <report>...

  Displays one or more reports about the portfolio. Reports:
    total        total value of the portfolio
    aa           asset allocation, compact by default
    al           asset location, asset classes by account type
    assets       assets per account
    accounts     account values
    whatifs      hypothetical what ifs currently set
    lots         tax lots with unrealized gains
    checkpoints  performance checkpoints
    performance  performance summary over trailing periods

Usage Examples:
# Asset allocation as a tree, and the account values grouped by type.
$ pal list -tree aa -group accounts

`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.tree, "tree", false, "Print the asset allocation as a tree instead of the compact table.")
	f.IntVar(&c.levels, "levels", -1, "Depth of the asset allocation tree, -1 for all levels.")
	f.StringVar(&c.classes, "classes", "", "Comma separated asset classes to report the allocation across. They must cover the whole tree.")
	f.BoolVar(&c.group, "group", false, "Group accounts by account type.")
	f.BoolVar(&c.quantity, "quantity", false, "Also print the quantity held for each asset.")
	f.StringVar(&c.begin, "begin", "", "Only show checkpoints on or after this date.")
	f.StringVar(&c.end, "end", "", "Only show checkpoints on or before this date.")
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(os.Stderr, "Error: no report given\n", c.Usage())
		return subcommands.ExitUsageError
	}

	var sections []string
	for _, report := range f.Args() {
		doc, err := c.report(report)
		if err != nil {
			endFetchProgress()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if doc != "" {
			sections = append(sections, doc)
		}
	}
	endFetchProgress()
	printMarkdown(strings.Join(sections, "\n"))
	return subcommands.ExitSuccess
}

func (c *listCmd) report(name string) (string, error) {
	switch name {
	case "total":
		portfolio, err := c.priced()
		if err != nil {
			return "", err
		}
		total, err := portfolio.TotalValue()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("# Total\n\n- Total Assets: %s\n", total.Round()), nil

	case "aa":
		return c.allocationReport()

	case "al":
		portfolio, err := c.priced()
		if err != nil {
			return "", err
		}
		rows, err := portfolio.AssetLocation()
		if err != nil {
			return "", err
		}
		return renderer.LocationMarkdown(rows), nil

	case "assets":
		portfolio, err := c.priced()
		if err != nil {
			return "", err
		}
		rows, err := portfolio.ListAssets()
		if err != nil {
			return "", err
		}
		return renderer.AssetsMarkdown(rows, c.quantity), nil

	case "accounts":
		portfolio, err := c.priced()
		if err != nil {
			return "", err
		}
		rows, err := portfolio.ListAccounts(c.group)
		if err != nil {
			return "", err
		}
		return renderer.AccountsMarkdown(rows, c.group), nil

	case "whatifs":
		portfolio, err := c.portfolio()
		if err != nil {
			return "", err
		}
		accounts, assets, err := portfolio.GetWhatIfs()
		if err != nil {
			return "", err
		}
		return renderer.WhatIfsMarkdown(accounts, assets), nil

	case "lots":
		portfolio, err := c.priced()
		if err != nil {
			return "", err
		}
		rows, err := portfolio.ListLots(allocation.Today())
		if err != nil {
			return "", err
		}
		return renderer.LotsMarkdown(rows), nil

	case "checkpoints":
		return c.checkpointsReport()

	case "performance":
		timeline, err := LoadTimeline()
		if err != nil {
			return "", err
		}
		rows, err := allocation.NewPerformance(timeline).Summary()
		if err != nil {
			return "", err
		}
		return renderer.PerformanceMarkdown(rows), nil
	}
	return "", fmt.Errorf("unknown report %q", name)
}

func (c *listCmd) allocationReport() (string, error) {
	portfolio, err := c.priced()
	if err != nil {
		return "", err
	}
	if c.classes != "" {
		if c.tree {
			return "", fmt.Errorf("-tree is only supported when -classes is not given")
		}
		var names []string
		for _, name := range strings.Split(c.classes, ",") {
			names = append(names, strings.TrimSpace(name))
		}
		entries, err := portfolio.AssetAllocation(names)
		if err != nil {
			return "", err
		}
		return renderer.AllocationMarkdown(entries), nil
	}
	if c.tree {
		rows, err := portfolio.AssetAllocationTree(c.levels)
		if err != nil {
			return "", err
		}
		return renderer.AllocationTreeMarkdown(rows), nil
	}
	compact, err := portfolio.AssetAllocationCompact()
	if err != nil {
		return "", err
	}
	return renderer.AllocationCompactMarkdown(compact), nil
}

func (c *listCmd) checkpointsReport() (string, error) {
	timeline, err := LoadTimeline()
	if err != nil {
		return "", err
	}
	begin, end := timeline.Begin(), timeline.End()
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
	var kept []*allocation.Checkpoint
	for _, checkpoint := range timeline.Checkpoints() {
		if checkpoint.Date().Before(begin) || checkpoint.Date().After(end) {
			continue
		}
		kept = append(kept, checkpoint)
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("no checkpoints between %s and %s", begin, end)
	}
	trimmed, err := allocation.NewTimeline(kept)
	if err != nil {
		return "", err
	}
	return renderer.CheckpointsMarkdown(trimmed), nil
}

// portfolio loads the portfolio once for the whole run.
func (c *listCmd) portfolio() (*allocation.Portfolio, error) {
	if c.p != nil {
		return c.p, nil
	}
	portfolio, err := LoadPortfolio()
	if err != nil {
		return nil, err
	}
	c.p = portfolio
	c.warnWhatIfs()
	return c.p, nil
}

// priced returns the portfolio with all asset prices prefetched.
func (c *listCmd) priced() (*allocation.Portfolio, error) {
	portfolio, err := c.portfolio()
	if err != nil {
		return nil, err
	}
	if !c.prefetched {
		if err := portfolio.Prefetch(); err != nil {
			return nil, err
		}
		c.prefetched = true
	}
	return portfolio, nil
}

// warnWhatIfs reminds once per run that hypothetical what ifs skew the
// reported values.
func (c *listCmd) warnWhatIfs() {
	if c.warned {
		return
	}
	c.warned = true
	accounts, assets, err := c.p.GetWhatIfs()
	if err != nil || (len(accounts) == 0 && len(assets) == 0) {
		return
	}
	fmt.Fprintln(os.Stderr, "Warning: hypothetical what ifs are set, run 'pal list whatifs' to view them.")
}
