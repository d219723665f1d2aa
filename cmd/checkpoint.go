package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

// checkpointCmd holds the flags for the 'checkpoint' subcommand.
type checkpointCmd struct {
	date    string
	value   string
	inflow  float64
	outflow float64
	replace bool
}

func (*checkpointCmd) Name() string     { return "checkpoint" }
func (*checkpointCmd) Synopsis() string { return "checkpoint the portfolio value" }
func (*checkpointCmd) Usage() string {
	return `pal checkpoint [-date <date>] [-value <dollars>] [-inflow <dollars>] [-outflow <dollars>] [-replace]

  Records the portfolio value in the performance file, one checkpoint per
  day. Without -value the current total value of the portfolio is computed,
  excluding hypothetical what ifs. Cash flowing in or out of the portfolio
  around the checkpoint is recorded with -inflow and -outflow so that
  performance is not skewed by deposits and withdrawals.

Usage Examples:
# Checkpoint today's portfolio value.
$ pal checkpoint

# Rewrite today's checkpoint after a $2,000 deposit.
$ pal checkpoint -inflow 2000 -replace

`
}

func (c *checkpointCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", allocation.Today().String(), "Date of the checkpoint.")
	f.StringVar(&c.value, "value", "", "Portfolio value at that date. Defaults to the current total value, excluding what ifs.")
	f.Float64Var(&c.inflow, "inflow", 0, "Money that flowed into the portfolio on that date.")
	f.Float64Var(&c.outflow, "outflow", 0, "Money that flowed out of the portfolio on that date.")
	f.BoolVar(&c.replace, "replace", false, "Replace an existing checkpoint on the same date.")
}

func (c *checkpointCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := allocation.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	value, err := c.portfolioValue()
	endFetchProgress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	checkpoint, err := allocation.NewCheckpointWithFlows(date, value, allocation.Dollars(c.inflow), allocation.Dollars(c.outflow))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	timeline, err := LoadTimeline()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First checkpoint ever, start the timeline.
		if timeline, err = allocation.NewTimeline([]*allocation.Checkpoint{checkpoint}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	default:
		if err := timeline.InsertCheckpoint(checkpoint, c.replace); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if err := SaveTimeline(timeline); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Checkpointed portfolio value %s on %s\n", value.Round(), date)
	return subcommands.ExitSuccess
}

// portfolioValue resolves the checkpoint value, pricing the portfolio when
// no explicit -value was given.
func (c *checkpointCmd) portfolioValue() (allocation.Money, error) {
	if c.value != "" {
		value, err := strconv.ParseFloat(c.value, 64)
		if err != nil {
			return allocation.Money{}, fmt.Errorf("invalid value %q: %w", c.value, err)
		}
		return allocation.Dollars(value), nil
	}
	portfolio, err := LoadPortfolio()
	if err != nil {
		return allocation.Money{}, err
	}
	if err := portfolio.Prefetch(); err != nil {
		return allocation.Money{}, err
	}
	return portfolio.UnadjustedValue()
}
