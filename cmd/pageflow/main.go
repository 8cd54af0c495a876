package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mizuki-h/pageflow/internal/book"
	"github.com/mizuki-h/pageflow/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageflow",
		Short: "Inspect and paginate EPUB books",
		Long: `pageflow parses EPUB containers and lays their chapters out as
fixed-size pages for a paginated reading experience.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to YAML config file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Shorthand for --log-level debug")

	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newPaginateCmd())
	cmd.AddCommand(newExtractCmd())
	return cmd
}

// globalOptions is resolved from persistent flags before any subcommand runs.
type globalOptions struct {
	Logger *slog.Logger
	Config *config.Config
}

func readGlobalOptions(cmd *cobra.Command) (*globalOptions, error) {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		level = "debug"
	}

	logger, err := buildLogger(os.Stderr, level, format)
	if err != nil {
		return nil, err
	}

	cfg := config.GetDefault()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	return &globalOptions{Logger: logger, Config: cfg}, nil
}

// bookOptions translates the resolved configuration into book.Load options.
func bookOptions(opts *globalOptions) []book.Option {
	return []book.Option{
		book.WithLogger(opts.Logger),
		book.WithImageOptions(opts.Config.Images.MaxWidth, opts.Config.Images.JPEGQuality),
	}
}

func buildLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid --log-level %q (debug, info, warn, error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q (text, json)", format)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
