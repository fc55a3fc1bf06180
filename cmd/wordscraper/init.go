package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/wordscraper/internal/config"
)

//go:embed templates/wordscraper.yaml
var configTemplate []byte

// errConfigExists is returned by init when the target exists and -f is unset.
var errConfigExists = errors.New("configuration file already exists")

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .wordscraper configuration file",
		Long: `Write a commented configuration file with crawl defaults and
per-site overrides (depth, page limit, user agent, ignore and follow
patterns). crawl reads ./.wordscraper when it exists.

Examples:
  wordscraper init
  wordscraper init -o configs/example.yaml
  wordscraper init -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := writeConfigTemplate(output, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultConfigFile, "Path of the configuration file to write")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

// writeConfigTemplate writes the embedded template to path, creating its
// parent directories.
func writeConfigTemplate(path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s (use -f to overwrite)", errConfigExists, path)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, configTemplate, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
