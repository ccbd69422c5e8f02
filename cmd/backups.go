package cmd

import (
	"context"
	"fmt"

	"roster-sync/core/config"
	"roster-sync/core/logger"
	"roster-sync/feature/roster"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// backupsCmd is the parent command for ledger backup operations.
var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Inspect and restore ledger backups in object storage",
}

var listBackupsCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, l, err := newBackupService(ctx)
		if err != nil {
			return err
		}
		defer l.Sync()

		keys, err := svc.Backups(ctx)
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		for _, key := range keys {
			l.Info("Backup", zap.String("object", key))
		}
		l.Info("Ledger backups", zap.Int("count", len(keys)), zap.String("ledger", svc.LedgerPath()))
		return nil
	},
}

var restoreBackupCmd = &cobra.Command{
	Use:   "restore [object]",
	Short: "Replace the ledger with a backup (newest when no object is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, l, err := newBackupService(ctx)
		if err != nil {
			return err
		}
		defer l.Sync()

		object := ""
		if len(args) == 1 {
			object = args[0]
		}

		restored, set, err := svc.Restore(ctx, object)
		if err != nil {
			return fmt.Errorf("failed to restore ledger: %w", err)
		}
		l.Info("Ledger restored",
			zap.String("object", restored),
			zap.String("ledger", svc.LedgerPath()),
			zap.Int("records", set.Len()),
		)
		return nil
	},
}

// newBackupService builds a roster service that only talks to object storage.
func newBackupService(ctx context.Context) (*roster.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if ledgerPath != "" {
		cfg.Ledger.Path = ledgerPath
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := newBackupStorage(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare backup storage: %w", err)
	}
	return roster.NewService(nil, nil, client, cfg.Storage.Bucket, cfg.Ledger, l), l, nil
}

func init() {
	backupsCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "Ledger file (overrides LEDGER_PATH)")
	backupsCmd.AddCommand(listBackupsCmd, restoreBackupCmd)
	RootCmd.AddCommand(backupsCmd)
}
