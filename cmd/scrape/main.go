package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipebox/internal/config"
	"recipebox/internal/logger"
	"recipebox/internal/portion"
	"recipebox/internal/recipe"
	"recipebox/internal/scraper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "scrape",
		Short:        "Recipe import and scaling tool",
		Long:         `Import a recipe from a web page as JSON, or render a saved recipe's ingredients at a serving multiplier.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log extraction decisions")

	root.AddCommand(newImportCmd(opts), newScaleCmd(opts))
	return root
}

// setup loads configuration and a logger writing to stderr.
func (o *options) setup(stderr io.Writer) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Format: "console", Output: stderr})
	return cfg, log, nil
}

func newImportCmd(opts *options) *cobra.Command {
	var rawURL, out string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Extract a recipe from a URL",
		Long: `Fetch a recipe page and print the extracted recipe as JSON.
Example: scrape import --url https://example.com/pancakes --out pancakes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer log.Sync()

			partial, err := scraper.New(cfg.ScraperOptions(), log, nil).Ingest(cmd.Context(), rawURL)
			if err != nil {
				return errors.New(scraper.UserMessage)
			}
			return writeJSON(cmd.OutOrStdout(), out, partial)
		},
	}
	cmd.Flags().StringVarP(&rawURL, "url", "u", "", "Recipe page URL")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write JSON to this file instead of stdout")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newScaleCmd(opts *options) *cobra.Command {
	var file, multiplier string
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Render a saved recipe's ingredients at a multiplier",
		Long: `Read a recipe JSON file, in either the flat or the sectioned ingredient shape,
and print its ingredients scaled by the multiplier.
Example: scrape scale --file pancakes.json --multiplier 1/2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer log.Sync()

			m, err := portion.ParseMultiplier(multiplier)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			var saved struct {
				Title       string             `json:"title"`
				Ingredients recipe.Ingredients `json:"ingredients"`
			}
			if err := json.Unmarshal(data, &saved); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			log.Debug("scaling recipe", zap.String("title", saved.Title), zap.Float64("multiplier", m))

			sections := portion.NewScaler(cfg.Formatter()).Scale(saved.Ingredients, m)
			w := cmd.OutOrStdout()
			for i, sec := range sections {
				if sec.SectionName != "" {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "%s:\n", sec.SectionName)
				}
				for _, line := range sec.Lines {
					fmt.Fprintln(w, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Recipe JSON file")
	cmd.Flags().StringVarP(&multiplier, "multiplier", "m", "1", "Serving multiplier, e.g. 0.5, 1/2 or 2x")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeJSON(stdout io.Writer, path string, v any) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
