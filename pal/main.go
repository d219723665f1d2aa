package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/allocation/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Install or answer shell completion before anything else, Complete
	// exits on its own when called by the shell.
	completion().Complete("pal")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion mirrors the command tree for shell completion.
func completion() *complete.Command {
	substr := predict.Something
	date := predict.Something
	dollars := predict.Something

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"portfolio-file":   predict.Files("*.json"),
			"performance-file": predict.Files("*.jsonl"),
			"cache-dir":        predict.Dirs("*"),
			"refresh":          predict.Nothing,
			"no-cache":         predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"init": {
				Flags: map[string]complete.Predictor{"force": predict.Nothing},
			},
			"list": {
				Args: predict.Set{"total", "aa", "al", "assets", "accounts", "whatifs", "lots", "checkpoints", "performance"},
				Flags: map[string]complete.Predictor{
					"tree":     predict.Nothing,
					"levels":   predict.Something,
					"classes":  predict.Something,
					"group":    predict.Nothing,
					"quantity": predict.Nothing,
					"begin":    date,
					"end":      date,
				},
			},
			"whatif": {
				Flags: map[string]complete.Predictor{
					"account": substr,
					"asset":   substr,
					"reset":   predict.Nothing,
				},
			},
			"info": {
				Flags: map[string]complete.Predictor{
					"account":     substr,
					"asset":       substr,
					"performance": predict.Nothing,
					"begin":       date,
					"end":         date,
				},
			},
			"checkpoint": {
				Flags: map[string]complete.Predictor{
					"date":    date,
					"value":   dollars,
					"inflow":  dollars,
					"outflow": dollars,
					"replace": predict.Nothing,
				},
			},
			"delete-checkpoint": {
				Flags: map[string]complete.Predictor{"date": date},
			},
			"analyze": {
				Args: predict.Set{"tlh", "rebalance", "allocate"},
				Flags: map[string]complete.Predictor{
					"max-percentage": predict.Something,
					"max-dollars":    dollars,
					"max-abs":        predict.Something,
					"max-relative":   predict.Something,
					"account":        substr,
					"exclude-assets": predict.Something,
					"rebalance":      predict.Nothing,
				},
			},
			"topic": {
				Args: predict.Set{"readme", "classes", "dates", "whatif", "checkpoints", "*"},
			},
			"assist": {
				Args: predict.Something,
			},
		},
	}
}
