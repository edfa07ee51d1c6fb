// Package schedule implements the schedule command, which repeats a crawl on a
// cron expression.
package schedule

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdcommon "github.com/jonesrussell/north-cloud/procrawler/cmd/common"
	"github.com/jonesrussell/north-cloud/procrawler/internal/scheduler"
	"github.com/spf13/cobra"
)

const (
	defaultCronSpec        = "0 */6 * * *"
	defaultShutdownTimeout = 30 * time.Second
)

// Command returns the schedule command for use in the root command.
func Command() *cobra.Command {
	var (
		inputFlags cmdcommon.InputFlags
		spec       string
		runNow     bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the crawl repeatedly on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
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

			log := deps.Logger
			sched, err := scheduler.New(spec, func(jobCtx context.Context) {
				summary, runErr := rt.Crawler.Run(jobCtx, in)
				if runErr != nil {
					log.Error("Scheduled crawl failed", "error", runErr)
					return
				}
				log.Info("Scheduled crawl finished",
					"run_id", summary.RunID,
					"status", string(summary.Status),
					"saved", summary.Stats.Saved,
				)
			}, log)
			if err != nil {
				return err
			}

			sched.Start()
			if runNow {
				go sched.RunOnce()
			}

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			return sched.Stop(shutdownCtx)
		},
	}

	inputFlags.Register(cmd)
	cmd.Flags().StringVar(&spec, "cron", defaultCronSpec, "five-field cron expression or @every/@daily descriptor")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "also run once immediately")

	return cmd
}
