// Package crawl implements the crawl command, which runs one listing crawl and
// prints its summary.
package crawl

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdcommon "github.com/jonesrussell/north-cloud/procrawler/cmd/common"
	"github.com/spf13/cobra"
)

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var (
		inputFlags cmdcommon.InputFlags
		backend    string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl professional listings into the configured store",
		Long: `Crawl one or more professional directory listings, following pagination until
results-wanted professionals are saved, max-pages is reached for a start URL, or a
listing page comes back short.

Without --start-url the listing URL is built from --profession and --location.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			if cmd.Flags().Changed("store") {
				deps.Config.Storage.Backend = backend
				if validateErr := deps.Config.Storage.Validate(); validateErr != nil {
					return validateErr
				}
			}

			in, err := inputFlags.Resolve(cmd, deps.Config.Input)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := cmdcommon.NewRuntime(ctx, deps)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := rt.Close(); closeErr != nil {
					deps.Logger.Error("Failed to close store", "error", closeErr)
				}
			}()

			summary, runErr := rt.Crawler.Run(ctx, in)
			if !quiet && summary != nil {
				RenderSummary(cmd.OutOrStdout(), summary)
			}
			// Only an aborted run or a run that never started is an error;
			// an empty run is a valid outcome.
			return runErr
		},
	}

	inputFlags.Register(cmd)
	cmd.Flags().StringVar(&backend, "store", "", "record store backend: jsonl, memory, elasticsearch or postgres")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not print the run summary")

	return cmd
}
