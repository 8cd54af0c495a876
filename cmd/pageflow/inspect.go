package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mizuki-h/pageflow/internal/book"
	"github.com/mizuki-h/pageflow/internal/epub"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <book.epub>",
		Short: "Print book metadata, spine and table of contents",
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

			out := cmd.OutOrStdout()
			md := d.Metadata()
			fmt.Fprintf(out, "Title:    %s\n", md.Title)
			fmt.Fprintf(out, "Author:   %s\n", md.Creator)
			fmt.Fprintf(out, "Language: %s\n", md.Language)
			if md.Publisher != "" {
				fmt.Fprintf(out, "Publisher: %s\n", md.Publisher)
			}
			if md.Identifier != "" {
				fmt.Fprintf(out, "Identifier: %s\n", md.Identifier)
			}
			if cover, mediaType, ok := d.Cover(); ok {
				fmt.Fprintf(out, "Cover:    %s (%d bytes)\n", mediaType, len(cover))
			}

			fmt.Fprintf(out, "\nSpine (%d items):\n", len(d.Spine()))
			for _, item := range d.Spine() {
				marker := " "
				if !item.Linear {
					marker = "*"
				}
				fmt.Fprintf(out, "  %3d%s %s\n", item.Order, marker, item.Path)
			}

			fmt.Fprintln(out, "\nContents:")
			printNav(out, d.Navigation(), 1)
			return nil
		},
	}
	return cmd
}

func printNav(out io.Writer, nodes []epub.NavNode, depth int) {
	for _, n := range nodes {
		target := n.Path
		if n.Fragment != "" {
			target += "#" + n.Fragment
		}
		fmt.Fprintf(out, "%s%s (%s)\n", strings.Repeat("  ", depth), n.Title, target)
		printNav(out, n.Children, depth+1)
	}
}
