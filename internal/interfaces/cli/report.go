package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	commontypes "github.com/wirkancil/markintel/pkg/types/common"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		targetsFile string
		topK        int
		maxAnalyze  int
		fromDate    string
		toDate      string
	)

	cmd := &cobra.Command{
		Use:   "report [trademark ...]",
		Short: "Generate a batch similarity report over a set of trademarks",
		Long:  "Targets come from the positional arguments, from --file (one name\nper line, blank lines and # comments skipped), or both.",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := append([]string{}, args...)
			if targetsFile != "" {
				fromFile, err := readTargets(targetsFile)
				if err != nil {
					return err
				}
				targets = append(targets, fromFile...)
			}
			if len(targets) == 0 {
				return fmt.Errorf("no target trademarks: pass them as arguments or via --file")
			}

			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			req := tmtypes.ReportRequest{
				TargetTrademarks: targets,
				Options:          tmtypes.ReportOptions{TopK: topK, MaxAnalyze: maxAnalyze},
			}
			if fromDate != "" || toDate != "" {
				req.DateRange = &commontypes.DateRange{From: fromDate, To: toDate}
			}

			resp, err := api.GenerateReport(ctx, req)
			if err != nil {
				return err
			}

			return opts.printResult(cmd.OutOrStdout(), resp, func(w io.Writer) {
				printReport(w, resp)
			})
		},
	}

	cmd.Flags().StringVar(&targetsFile, "file", "", "file with one target trademark per line")
	cmd.Flags().IntVar(&topK, "top-k", 0, "matches per target (0 uses the server default)")
	cmd.Flags().IntVar(&maxAnalyze, "max-analyze", 0, "cap on how many targets are analyzed (0 analyzes all)")
	cmd.Flags().StringVar(&fromDate, "from", "", "only match records received on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "only match records received on or before this date (YYYY-MM-DD)")
	return cmd
}

func readTargets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return targets, nil
}

func printReport(w io.Writer, resp *tmtypes.ReportResponse) {
	fmt.Fprintf(w, "Report generated %s: %d targets analyzed\n", resp.GeneratedAt, resp.TotalAnalyzed)
	fmt.Fprintf(w, "Summary: %d high, %d medium, %d low\n",
		resp.Summary.High, resp.Summary.Medium, resp.Summary.Low)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tMATCHES\tBUCKET\tBEST MATCH\tERROR")
	for _, f := range resp.Findings {
		best := ""
		if f.BestMatch != nil {
			best = f.BestMatch.Record.MarkName
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			f.TargetTrademark, f.MatchCount, f.Bucket, best, f.Error)
	}
	tw.Flush()
}
