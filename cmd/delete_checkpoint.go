package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

// deleteCheckpointCmd holds the flags for the 'delete-checkpoint' subcommand.
type deleteCheckpointCmd struct {
	date string
}

func (*deleteCheckpointCmd) Name() string     { return "delete-checkpoint" }
func (*deleteCheckpointCmd) Synopsis() string { return "delete the checkpoint of a given date" }
func (*deleteCheckpointCmd) Usage() string {
	return `pal delete-checkpoint -date <date>

  Deletes the checkpoint recorded on the given date from the performance
  file. This operation is not reversible.

`
}

func (c *deleteCheckpointCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "Date of the checkpoint to delete.")
}

func (c *deleteCheckpointCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.date == "" {
		fmt.Fprint(os.Stderr, "Error: -date is required\n", c.Usage())
		return subcommands.ExitUsageError
	}
	date, err := allocation.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	timeline, err := LoadTimeline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := timeline.DeleteCheckpoint(date); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveTimeline(timeline); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted checkpoint of %s\n", date)
	return subcommands.ExitSuccess
}
