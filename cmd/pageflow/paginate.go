package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mizuki-h/pageflow/internal/book"
	"github.com/mizuki-h/pageflow/internal/paginate"
)

func newPaginateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paginate <book.epub>",
		Short: "Paginate a book and report its page layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			rc, err := readRenderConfig(cmd, opts)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := book.Load(cmd.Context(), data,
				append(bookOptions(opts), book.WithChapterCache())...)
			if err != nil {
				return fmt.Errorf("failed to open book: %w", err)
			}

			engine := paginate.NewEngine(paginate.WithEngineLogger(opts.Logger))
			if err := engine.Calculate(cmd.Context(), d, rc); err != nil {
				return fmt.Errorf("pagination failed: %w", err)
			}

			out := cmd.OutOrStdout()
			total := engine.TotalPages()
			fmt.Fprintf(out, "%s: %d pages at %gx%g, %gpx font\n",
				d.Metadata().Title, total, rc.Viewport.Width, rc.Viewport.Height, rc.FontSize)
			for _, item := range d.Spine() {
				first, err := engine.FirstPageOfChapter(item.Order)
				if err != nil {
					continue
				}
				fmt.Fprintf(out, "  page %4d  %s\n", first, item.Path)
			}

			if page, _ := cmd.Flags().GetInt("page"); page > 0 {
				content, err := engine.PageContent(page)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, content)
			}
			return nil
		},
	}
	addRenderFlags(cmd)
	cmd.Flags().Int("page", 0, "Also print the content of the given page")
	return cmd
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("font-size", 0, "Font size in px (default from config)")
	cmd.Flags().Float64("line-height", 0, "Line height ratio (default from config)")
	cmd.Flags().Float64("width", 0, "Viewport width in px (default from config)")
	cmd.Flags().Float64("height", 0, "Viewport height in px (default from config)")
	cmd.Flags().Bool("no-css", false, "Exclude book CSS from page content")
}

// readRenderConfig layers command flags over the configured defaults.
func readRenderConfig(cmd *cobra.Command, opts *globalOptions) (paginate.RenderConfig, error) {
	rc := opts.Config.RenderConfig()
	if v, _ := cmd.Flags().GetFloat64("font-size"); v > 0 {
		rc.FontSize = v
	}
	if v, _ := cmd.Flags().GetFloat64("line-height"); v > 0 {
		rc.LineHeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("width"); v > 0 {
		rc.Viewport.Width = v
	}
	if v, _ := cmd.Flags().GetFloat64("height"); v > 0 {
		rc.Viewport.Height = v
	}
	if noCSS, _ := cmd.Flags().GetBool("no-css"); noCSS {
		rc.CSSEnabled = false
	}
	rc = rc.Normalize()
	if err := rc.Validate(); err != nil {
		return paginate.RenderConfig{}, err
	}
	return rc, nil
}
