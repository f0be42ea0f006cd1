// Package cli implements the markctl command tree.  Every command talks
// to a running apiserver through the pkg/client SDK.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wirkancil/markintel/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	serverAddr string
	output     string
	timeout    time.Duration
}

// NewRootCommand builds the markctl root command with all subcommands
// attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "markctl",
		Short:   "markctl controls a markintel trademark similarity server",
		Long:    "markctl uploads DJKI gazette documents, runs trademark similarity\nanalyses and manages scoring thresholds against a markintel apiserver.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.serverAddr, "server", "http://localhost:8080", "API server address")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.timeout, "timeout", 60*time.Second, "request timeout")

	cmd.AddCommand(
		newSearchCmd(opts),
		newUploadCmd(opts),
		newDocumentsCmd(opts),
		newReportCmd(opts),
		newThresholdsCmd(opts),
		newStatsCmd(opts),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// newAPIClient builds the SDK client from the global flags.
func (o *rootOptions) newAPIClient() (*client.Client, error) {
	return client.NewClient(o.serverAddr)
}

// commandContext returns a context bounded by the global timeout.
func (o *rootOptions) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

// printResult renders v as indented JSON when --output=json, otherwise
// calls text to print the human representation.
func (o *rootOptions) printResult(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
