package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

func newThresholdsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Inspect and tune similarity score thresholds",
	}
	cmd.AddCommand(newThresholdsGetCmd(opts), newThresholdsSetCmd(opts))
	return cmd
}

func newThresholdsGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the active thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			t, err := api.Thresholds(ctx)
			if err != nil {
				return err
			}
			return opts.printResult(cmd.OutOrStdout(), t, func(w io.Writer) {
				printThresholds(w, t)
			})
		},
	}
}

func newThresholdsSetCmd(opts *rootOptions) *cobra.Command {
	var lexical, phonetic, semantic, overall float64

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update one or more thresholds",
		Long:  "Only the flags you pass change; the rest keep their current values.\nValues must be between 0 and 1.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch tmtypes.ThresholdPatch
			changed := false
			if cmd.Flags().Changed("lexical") {
				patch.Lexical = &lexical
				changed = true
			}
			if cmd.Flags().Changed("phonetic") {
				patch.Phonetic = &phonetic
				changed = true
			}
			if cmd.Flags().Changed("semantic") {
				patch.Semantic = &semantic
				changed = true
			}
			if cmd.Flags().Changed("overall") {
				patch.Overall = &overall
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to update: pass at least one of --lexical, --phonetic, --semantic, --overall")
			}

			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			t, err := api.UpdateThresholds(ctx, patch)
			if err != nil {
				return err
			}
			return opts.printResult(cmd.OutOrStdout(), t, func(w io.Writer) {
				printThresholds(w, t)
			})
		},
	}

	cmd.Flags().Float64Var(&lexical, "lexical", 0, "lexical component threshold")
	cmd.Flags().Float64Var(&phonetic, "phonetic", 0, "phonetic component threshold")
	cmd.Flags().Float64Var(&semantic, "semantic", 0, "semantic component threshold")
	cmd.Flags().Float64Var(&overall, "overall", 0, "overall match threshold")
	return cmd
}

func printThresholds(w io.Writer, t *tmtypes.Thresholds) {
	fmt.Fprintf(w, "lexical:  %.2f\n", t.Lexical)
	fmt.Fprintf(w, "phonetic: %.2f\n", t.Phonetic)
	fmt.Fprintf(w, "semantic: %.2f\n", t.Semantic)
	fmt.Fprintf(w, "overall:  %.2f\n", t.Overall)
}
