package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const rootLong = `wordscraper crawls a website, collects every word on its pages and
builds a wordlist from the longest ones. Words can be expanded with case,
leetspeak, digit and symbol mutations, or looked up to see which pages
contain them.

Run summaries are kept in a local history database.`

// NewRootCmd creates the wordscraper command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wordscraper",
		Short:         "Build password wordlists from the words of a website",
		Long:          rootLong,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Log debug output to stderr")
	flags.Bool("log-json", false, "Write logs as JSON")

	root.AddCommand(
		NewCrawlCmd(),
		NewHistoryCmd(),
		NewInitCmd(),
		NewVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wordscraper: %v\n", err)
		os.Exit(1)
	}
}
