package members

import (
	"context"
	"fmt"
	"strings"

	"roster-sync/core/database"
	"roster-sync/core/reconcile"
	"roster-sync/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Source reads authoritative member records from a SQL table.
type Source struct {
	db     *gorm.DB
	cfg    Config
	logger *zap.Logger
}

// NewSource creates a member source.
func NewSource(db *gorm.DB, cfg Config, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{db: db, cfg: cfg, logger: logger}
}

// Validate checks that the configured table exposes both identity columns.
func (s *Source) Validate(ctx context.Context) error {
	missing, err := database.HasColumns(s.db.WithContext(ctx), s.cfg.Table, s.cfg.IDColumn, s.cfg.KeyColumn)
	if err != nil {
		return &reconcile.SourceError{Err: err}
	}
	if len(missing) > 0 {
		return &reconcile.SourceError{Err: fmt.Errorf("table %s is missing columns: %s", s.cfg.Table, strings.Join(missing, ", "))}
	}
	return nil
}

// Fetch returns every member in table order (or OrderBy when configured).
// Rows without an account id are skipped.
func (s *Source) Fetch(ctx context.Context) ([]reconcile.AuthoritativeRecord, error) {
	query := s.db.WithContext(ctx).
		Table(s.cfg.Table).
		Select([]string{s.cfg.IDColumn, s.cfg.KeyColumn})
	if s.cfg.OrderBy != "" {
		query = query.Order(s.cfg.OrderBy)
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, &reconcile.SourceError{Err: fmt.Errorf("failed to query %s: %w", s.cfg.Table, err)}
	}
	defer rows.Close()

	var records []reconcile.AuthoritativeRecord
	skipped := 0
	for rows.Next() {
		var id, key any
		if err := rows.Scan(&id, &key); err != nil {
			return nil, &reconcile.SourceError{Err: fmt.Errorf("failed to scan %s row: %w", s.cfg.Table, err)}
		}

		rec := reconcile.AuthoritativeRecord{
			ExternalID:    strings.TrimSpace(utils.ToString(id)),
			ResolutionKey: strings.TrimSpace(utils.ToString(key)),
		}
		if rec.ExternalID == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &reconcile.SourceError{Err: fmt.Errorf("failed to read %s: %w", s.cfg.Table, err)}
	}

	if skipped > 0 {
		s.logger.Warn("Skipped member rows without an account id",
			zap.String("table", s.cfg.Table),
			zap.Int("count", skipped),
		)
	}

	return records, nil
}
