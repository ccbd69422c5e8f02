package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roster-sync/core/ledger"
	"roster-sync/core/logger"
	"roster-sync/core/reconcile"
	"roster-sync/core/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrRunInProgress is returned when a run is requested while another one holds the lock.
	ErrRunInProgress = errors.New("a reconciliation run is already in progress")
	// ErrLedgerMissing is returned when the ledger file does not exist and seeding is disabled.
	ErrLedgerMissing = errors.New("ledger file does not exist")
	// ErrBackupUnavailable is returned when a backup is requested without a storage client.
	ErrBackupUnavailable = errors.New("ledger backup requested but object storage is not configured")
	// ErrNoBackups is returned when a restore finds no stored backup.
	ErrNoBackups = errors.New("no ledger backups found")
)

// RunOptions controls a single run.
type RunOptions struct {
	// DryRun reconciles without touching the ledger file or the backups.
	DryRun bool
	// Backup uploads the previous ledger before it is overwritten.
	Backup bool
}

// RunResult describes a finished run.
type RunResult struct {
	RunID        string            `json:"run_id"`
	DryRun       bool              `json:"dry_run"`
	Saved        bool              `json:"saved"`
	Seeded       bool              `json:"seeded"`
	BackupObject string            `json:"backup_object,omitempty"`
	Pruned       []string          `json:"pruned,omitempty"`
	Report       *reconcile.Report `json:"report"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

// Service runs reconciliations against one ledger file.
type Service struct {
	source   reconcile.Source
	resolver reconcile.Resolver
	client   storage.Client
	bucket   string
	cfg      ledger.Config
	logger   *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewService creates a roster service. client may be nil when backups are not used.
func NewService(source reconcile.Source, resolver reconcile.Resolver, client storage.Client, bucket string, cfg ledger.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		resolver: resolver,
		client:   client,
		bucket:   bucket,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// LedgerPath returns the ledger file the service reconciles.
func (s *Service) LedgerPath() string {
	return s.cfg.Path
}

// Run executes one reconciliation: fetch, load, reconcile, then backup and save.
// Only one run may execute at a time; concurrent callers get ErrRunInProgress.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	result := &RunResult{
		RunID:     uuid.NewString(),
		DryRun:    opts.DryRun,
		StartedAt: s.now(),
	}
	l := logger.WithRunID(s.logger, result.RunID)
	l.Info("Starting reconciliation",
		zap.String("ledger", s.cfg.Path),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("backup", opts.Backup),
	)

	records, err := s.source.Fetch(ctx)
	if err != nil {
		var srcErr *reconcile.SourceError
		if !errors.As(err, &srcErr) {
			err = &reconcile.SourceError{Err: err}
		}
		return nil, err
	}
	l.Info("Fetched authoritative records", zap.Int("count", len(records)))

	set, seeded, err := s.load()
	if err != nil {
		return nil, err
	}
	result.Seeded = seeded

	updated, report, err := reconcile.Reconcile(ctx, records, set, s.resolver, reconcile.Options{
		TrueValue:  s.cfg.TrueValue,
		FalseValue: s.cfg.FalseValue,
		Logger:     l,
	})
	if err != nil {
		return nil, err
	}
	result.Report = report

	if opts.DryRun {
		result.FinishedAt = s.now()
		l.Info("Dry run finished", zap.Any("summary", report.Summary))
		return result, nil
	}

	if opts.Backup && report.Changed() {
		object, pruned, err := s.backup(ctx, l)
		if err != nil {
			return nil, err
		}
		result.BackupObject = object
		result.Pruned = pruned
	}

	if err := ledger.Save(updated, s.cfg.Path); err != nil {
		return nil, err
	}
	result.Saved = true
	result.FinishedAt = s.now()

	l.Info("Reconciliation finished",
		zap.Any("summary", report.Summary),
		zap.Duration("took", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// load reads the ledger, seeding an empty one when allowed.
func (s *Service) load() (*ledger.Set, bool, error) {
	set, err := ledger.Load(s.cfg.Path)
	if err != nil {
		return nil, false, err
	}
	if !set.Empty() {
		return set, false, nil
	}
	if !s.cfg.AllowMissing {
		return nil, false, fmt.Errorf("%w: %s", ErrLedgerMissing, s.cfg.Path)
	}
	s.logger.Warn("Ledger not found, seeding a new one",
		zap.String("ledger", s.cfg.Path),
		zap.Strings("header", s.cfg.Columns()),
	)
	return ledger.NewSet(s.cfg.Columns()), true, nil
}

func (s *Service) backup(ctx context.Context, l *zap.Logger) (string, []string, error) {
	if s.client == nil {
		return "", nil, ErrBackupUnavailable
	}

	object, err := ledger.Backup(ctx, s.client, s.bucket, s.cfg.BackupPrefix, s.cfg.Path, s.now())
	if err != nil {
		return "", nil, err
	}
	if object == "" {
		return "", nil, nil
	}
	l.Info("Uploaded ledger backup", zap.String("object", object))

	pruned, err := ledger.PruneBackups(ctx, s.client, s.bucket, s.cfg.BackupPrefix, s.cfg.Path, s.cfg.BackupKeep)
	if err != nil {
		l.Warn("Failed to prune ledger backups", zap.Error(err))
		return object, nil, nil
	}
	if len(pruned) > 0 {
		l.Info("Pruned ledger backups", zap.Strings("objects", pruned))
	}
	return object, pruned, nil
}

// Snapshot returns the ledger as it currently is on disk.
func (s *Service) Snapshot() (*ledger.Set, error) {
	set, err := ledger.Load(s.cfg.Path)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrLedgerMissing, s.cfg.Path)
	}
	return set, nil
}

// Member returns the ledger record holding the given external id.
func (s *Service) Member(externalID string) (ledger.Record, bool, error) {
	set, err := s.Snapshot()
	if err != nil {
		return nil, false, err
	}
	for _, r := range set.Records {
		if r.Get(ledger.ColumnExternalID) == externalID {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// Backups lists the stored backups of the ledger, newest first.
func (s *Service) Backups(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrBackupUnavailable
	}
	return ledger.ListBackups(ctx, s.client, s.bucket, s.cfg.BackupPrefix, s.cfg.Path)
}

// Restore replaces the ledger with a stored backup. An empty object restores the newest one.
// It holds the run lock so it never races a reconciliation.
func (s *Service) Restore(ctx context.Context, object string) (string, *ledger.Set, error) {
	if s.client == nil {
		return "", nil, ErrBackupUnavailable
	}
	if !s.mu.TryLock() {
		return "", nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	if object == "" {
		keys, err := ledger.ListBackups(ctx, s.client, s.bucket, s.cfg.BackupPrefix, s.cfg.Path)
		if err != nil {
			return "", nil, err
		}
		if len(keys) == 0 {
			return "", nil, ErrNoBackups
		}
		object = keys[0]
	}

	set, err := ledger.Restore(ctx, s.client, s.bucket, object, s.cfg.Path)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Restored ledger from backup",
		zap.String("object", object),
		zap.String("ledger", s.cfg.Path),
		zap.Int("records", set.Len()),
	)
	return object, set, nil
}
