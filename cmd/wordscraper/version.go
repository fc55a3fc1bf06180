package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// versionInfo describes the running binary.
type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
}

// currentBuild prefers ldflags values, then the module and VCS data the Go
// toolchain embeds, then placeholders.
var currentBuild = sync.OnceValue(func() versionInfo {
	info := versionInfo{
		Version: version,
		Commit:  commit,
		Built:   date,
		Go:      runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && info.Built == "":
				info.Built = s.Value
			}
		}
	}

	if info.Version == "" {
		info.Version = "(devel)"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Built == "" {
		info.Built = "unknown"
	}
	return info
})

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// getVersion is the version shown by --version and stamped on JSON reports.
func getVersion() string {
	return currentBuild().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := currentBuild()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			_, err := fmt.Fprintf(out, "wordscraper %s\n  commit: %s\n  built:  %s\n  go:     %s\n",
				info.Version, info.Commit, info.Built, info.Go)
			return err
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Print version information as JSON")

	return cmd
}
