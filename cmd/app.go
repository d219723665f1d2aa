// Package cmd implements the CLI application to manage a portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/treasury"
	"github.com/etnz/allocation/vanguard"
	"github.com/etnz/allocation/yfin"
	"github.com/google/subcommands"
)

// Commands are the subcommands of the application. A main package registers
// them all on a commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&initCmd{},
	&listCmd{},
	&whatIfCmd{},
	&infoCmd{},
	&checkpointCmd{},
	&deleteCheckpointCmd{},
	&analyzeCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var portfolioFile = flag.String("portfolio-file", "portfolio.json", "Path to the portfolio file (JSON format)")
var performanceFile = flag.String("performance-file", "performance.jsonl", "Path to the performance checkpoints file (JSONL format)")
var cacheDir = flag.String("cache-dir", "", "Directory for cached quotes. Defaults to the pal folder under the user cache directory.")
var noCache = flag.Bool("no-cache", false, "Disable the quote cache entirely")
var refresh = flag.Bool("refresh", false, "Re-fetch quotes instead of using previously cached data")

// quotes is built once per run, every command shares the same cache session
// so -refresh refetches each quote only once.
var quotes *allocation.QuoteService

// fetching reports whether the current run printed fetch progress dots.
var fetching bool

// QuoteService returns the shared quote service, wiring the pricing
// providers to a disk cache configured by the global flags.
func QuoteService() (*allocation.QuoteService, error) {
	if quotes != nil {
		return quotes, nil
	}
	dir := *cacheDir
	if dir == "" && !*noCache {
		userDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cannot locate the user cache directory: %w", err)
		}
		dir = filepath.Join(userDir, "pal")
	}
	if *noCache {
		dir = ""
	}
	cache, err := allocation.NewQuoteCache(allocation.CacheConfig{
		Dir:          dir,
		ForceRefresh: *refresh,
		// A dot per network fetch doubles as a progress indicator.
		OnMiss: func() { fetching = true; fmt.Fprint(os.Stderr, ".") },
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open the quote cache: %w", err)
	}
	quotes = allocation.NewQuoteService(yfin.New(), vanguard.New(), treasury.New(), cache)
	return quotes, nil
}

// LoadPortfolio loads the portfolio from the app portfolio file.
func LoadPortfolio() (*allocation.Portfolio, error) {
	quotes, err := QuoteService()
	if err != nil {
		return nil, err
	}
	p, err := allocation.LoadPortfolio(*portfolioFile, quotes)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("portfolio file %q not found, run 'pal init' to create one", *portfolioFile)
	}
	return p, err
}

// SavePortfolio saves the portfolio back to the app portfolio file.
func SavePortfolio(p *allocation.Portfolio) error {
	return allocation.SavePortfolio(*portfolioFile, p)
}

// LoadTimeline loads the checkpoint timeline from the app performance file.
// A missing file surfaces as fs.ErrNotExist, commands that can start a new
// timeline check for it.
func LoadTimeline() (*allocation.Timeline, error) {
	t, err := allocation.LoadTimeline(*performanceFile)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("performance file %q not found, run 'pal checkpoint' to create one: %w", *performanceFile, err)
	}
	return t, err
}

// SaveTimeline saves the timeline back to the app performance file.
func SaveTimeline(t *allocation.Timeline) error {
	return allocation.SaveTimeline(*performanceFile, t)
}

// endFetchProgress terminates the dotted progress line started by cache
// misses, if any. Commands call it between prefetching and printing.
func endFetchProgress() {
	if fetching {
		fmt.Fprintln(os.Stderr)
		fetching = false
	}
}
