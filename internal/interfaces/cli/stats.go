package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			resp, err := api.Stats(ctx)
			if err != nil {
				return err
			}

			return opts.printResult(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintf(w, "Records:   %d across %d documents\n", resp.TotalRecords, resp.TotalDocuments)
				fmt.Fprintf(w, "Vectors:   %d (dimension %d)\n", resp.VectorCount, resp.IndexDimension)
				fmt.Fprintf(w, "Threshold: overall %.2f\n", resp.Thresholds.Overall)

				if len(resp.ClassCounts) > 0 {
					classes := make([]string, 0, len(resp.ClassCounts))
					for class := range resp.ClassCounts {
						classes = append(classes, class)
					}
					sort.Strings(classes)

					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "CLASS\tRECORDS")
					for _, class := range classes {
						fmt.Fprintf(tw, "%s\t%d\n", class, resp.ClassCounts[class])
					}
					tw.Flush()
				}
			})
		},
	}
}
