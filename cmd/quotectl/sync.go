package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

func newSyncCmd(e *env) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass against the remote source",
		Long: `Sync fetches a batch of remote records and merges them into the local
repository, the remote version winning for records that share an id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batchSize <= 0 {
				batchSize = e.cfg.Sync.BatchSize
			}

			reconciler := app.NewReconciler(app.ReconcilerConfig{
				Source:    e.client,
				Service:   e.service,
				Observers: []ports.SyncObserver{app.NewLogObserver()},
				Logger:    e.logger,
				BatchSize: batchSize,
			})

			report, err := reconciler.SyncOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintf(e.out, "%s: fetched %d, %d quotes total (%s)\n",
				report.Outcome, report.Fetched, report.Total, report.Duration.Round(time.Millisecond))

			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "records to fetch (default: sync.batch_size)")

	return cmd
}
