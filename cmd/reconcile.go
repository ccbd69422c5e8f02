package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"roster-sync/core/config"
	"roster-sync/core/logger"
	"roster-sync/core/reconcile"
	"roster-sync/feature/roster"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ledgerPath     string
	dryRunRoster   bool
	backupRoster   bool
	allowMissing   bool
	maxShowActions = 20
)

// reconcileCmd runs a single reconciliation and exits.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the member database against the roster ledger",
	Long: `Reconcile reads every member from the database, looks up members missing from
the ledger in the VRChat directory, repairs renamed accounts and appends new ones.

Examples:
  # Report what would change
  reconcile --dry-run

  # Reconcile a specific ledger and keep a backup of the previous file
  reconcile --ledger /data/triskel.csv --backup`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&ledgerPath, "ledger", "", "Ledger file (overrides LEDGER_PATH)")
	reconcileCmd.Flags().BoolVar(&dryRunRoster, "dry-run", false, "Reconcile without writing the ledger")
	reconcileCmd.Flags().BoolVar(&backupRoster, "backup", false, "Upload the previous ledger to object storage before saving (defaults to LEDGER_BACKUP_ENABLED)")
	reconcileCmd.Flags().BoolVar(&allowMissing, "allow-missing", false, "Seed a new ledger when the file does not exist")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("ledger") {
		cfg.Ledger.Path = ledgerPath
	}
	if cmd.Flags().Changed("allow-missing") {
		cfg.Ledger.AllowMissing = allowMissing
	}
	backup := cfg.Ledger.BackupEnabled
	if cmd.Flags().Changed("backup") {
		backup = backupRoster
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	svc, err := newRosterService(ctx, cfg, l, backup && !dryRunRoster)
	if err != nil {
		return err
	}

	result, err := svc.Run(ctx, roster.RunOptions{DryRun: dryRunRoster, Backup: backup})
	if err != nil {
		return fmt.Errorf("reconciliation of %s failed: %w", cfg.Ledger.Path, err)
	}

	printRunReport(l, result)
	if result.DryRun {
		l.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

// printRunReport prints a reconciliation result using logger.
func printRunReport(l *zap.Logger, result *roster.RunResult) {
	l = logger.WithRunID(l, result.RunID)
	s := result.Report.Summary

	l.Info("Reconciliation report",
		zap.Int("total", s.Total),
		zap.Int("matched", s.Matched),
		zap.Int("resolved", s.Resolved),
		zap.Int("repaired", s.Repaired),
		zap.Int("created", s.Created),
		zap.Bool("saved", result.Saved),
		zap.String("backup", result.BackupObject),
	)

	actions := result.Report.Actions
	shown := min(len(actions), maxShowActions)
	for _, action := range actions[:shown] {
		fields := []zap.Field{
			zap.String("type", string(action.Type)),
			zap.String("username", action.Username),
			zap.String("discord_id", action.ExternalID),
		}
		if action.Type == reconcile.ActionRepair {
			fields = append(fields, zap.String("previous_id", action.PreviousID))
		}
		l.Info("Ledger change", fields...)
	}
	if len(actions) > shown {
		l.Info("Additional changes not shown", zap.Int("count", len(actions)-shown))
	}
}
