package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagspan/pkg/tagspan/format"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan FILE...",
		Short: "List the annotations recorded in output files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOCUMENT\tTYPE\tSTART\tEND\tTEXT")
			for _, path := range args {
				if err := scanFile(tw, path); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}

func scanFile(tw *tabwriter.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	docs, err := format.Scan(f)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	for _, d := range docs {
		for _, a := range d.Annotations {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%q\n", d.ID, a.Type, a.Start, a.End, a.CoveredText)
		}
	}
	return nil
}
