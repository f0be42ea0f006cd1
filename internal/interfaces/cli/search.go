package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	commontypes "github.com/wirkancil/markintel/pkg/types/common"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		topK       int
		noPhonetic bool
		fromDate   string
		toDate     string
	)

	cmd := &cobra.Command{
		Use:   "search <trademark>",
		Short: "Find registered trademarks similar to a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			req := tmtypes.AnalysisRequest{Trademark: args[0]}
			req.Options.TopK = topK
			if noPhonetic {
				f := false
				req.Options.IncludePhonetic = &f
			}
			if fromDate != "" || toDate != "" {
				req.Options.DateRange = &commontypes.DateRange{From: fromDate, To: toDate}
			}

			resp, err := api.Analyze(ctx, req)
			if err != nil {
				return err
			}

			return opts.printResult(cmd.OutOrStdout(), resp, func(w io.Writer) {
				printAnalysis(w, resp)
			})
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "maximum number of matches (0 uses the server default)")
	cmd.Flags().BoolVar(&noPhonetic, "no-phonetic", false, "disable the phonetic scoring pass")
	cmd.Flags().StringVar(&fromDate, "from", "", "only match records received on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "only match records received on or before this date (YYYY-MM-DD)")
	return cmd
}

func printAnalysis(w io.Writer, resp *tmtypes.AnalysisResponse) {
	fmt.Fprintf(w, "Query: %s (compared %d records)\n", resp.TargetTrademark, resp.TotalCompared)
	if len(resp.SimilarTrademarks) == 0 {
		fmt.Fprintln(w, "No similar trademarks above the threshold.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MARK\tAPP NO\tCLASS\tAPPLICANT\tOVERALL\tBUCKET")
	for _, m := range resp.SimilarTrademarks {
		overall := ""
		if m.Overall != nil {
			overall = fmt.Sprintf("%.3f", *m.Overall)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Record.MarkName, m.Record.ApplicationNumber, m.Record.Class,
			m.Record.ApplicantName, overall, m.Bucket)
	}
	tw.Flush()
}
