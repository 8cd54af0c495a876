package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mizuki-h/pageflow/internal/book"
	"github.com/mizuki-h/pageflow/internal/render"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <book.epub>",
		Short: "Extract one chapter as a self-contained HTML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := book.Load(cmd.Context(), data, bookOptions(opts)...)
			if err != nil {
				return fmt.Errorf("failed to open book: %w", err)
			}

			index, _ := cmd.Flags().GetInt("chapter")
			ch, err := d.Chapter(cmd.Context(), index)
			if err != nil {
				return fmt.Errorf("failed to load chapter %d: %w", index, err)
			}
			doc := renderDocument(ch)

			if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
				if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
					return err
				}
				opts.Logger.Info("chapter written", "chapter", index, "path", outPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().IntP("chapter", "c", 0, "Spine index of the chapter to extract")
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	return cmd
}

// renderDocument wraps a chapter body as a standalone HTML page. Styles and
// images are already embedded, so the result needs no companion files.
func renderDocument(ch *render.Chapter) string {
	var css string
	if ch.CombinedCSS != "" {
		css = "<style>\n" + ch.CombinedCSS + "\n</style>\n"
	}
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n<title>" +
		ch.Title + "</title>\n" + css + "</head>\n<body>\n" + ch.HTMLBody + "\n</body>\n</html>\n"
}
