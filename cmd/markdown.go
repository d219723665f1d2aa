package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// printMarkdown displays a markdown document on stdout. On a terminal the
// document is rendered with glamour, anywhere else the raw markdown is
// printed so the output stays pipeable.
func printMarkdown(doc string) {
	if doc == "" {
		return
	}
	if isTerminal(os.Stdout) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err == nil {
			if out, err := r.Render(doc); err == nil {
				fmt.Print(out)
				return
			}
		}
	}
	fmt.Print(doc)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
