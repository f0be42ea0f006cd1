package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUploadCmd(opts *rootOptions) *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a gazette text file for extraction and indexing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			resp, err := api.UploadDocument(ctx, documentID, f)
			if err != nil {
				return err
			}

			return opts.printResult(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintf(w, "Document %s: %d records extracted, %d indexed, %d chunks\n",
					resp.DocumentID, resp.RecordsExtracted, resp.RecordsIndexed, resp.ChunksIndexed)
			})
		},
	}

	cmd.Flags().StringVar(&documentID, "document-id", "", "pin the document identity (re-ingestion replaces it)")
	return cmd
}

func newDocumentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect and manage ingested gazette documents",
	}
	cmd.AddCommand(newDocumentRecordsCmd(opts), newDocumentDeleteCmd(opts))
	return cmd
}

func newDocumentRecordsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "records <documentID>",
		Short: "List the records extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			resp, err := api.DocumentRecords(ctx, args[0])
			if err != nil {
				return err
			}

			return opts.printResult(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintf(w, "Document %s: %d records\n", resp.DocumentID, resp.Total)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "APP NO\tMARK\tCLASS\tAPPLICANT")
				for _, r := range resp.Records {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						r.ApplicationNumber, r.MarkName, r.Class, r.ApplicantName)
				}
				tw.Flush()
			})
		},
	}
}

func newDocumentDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <documentID>",
		Short: "Delete a document and everything extracted from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			if err := api.DeleteDocument(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document %s deleted\n", args[0])
			return nil
		},
	}
}
