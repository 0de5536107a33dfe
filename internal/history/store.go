package history

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"tabtrack/internal/event"
)

// Store is the long-term archive. It is never read by the tracking engine itself.
type Store struct {
	db *gorm.DB
}

// Open connects to the archive database and migrates its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, errors.Wrapf(err, "failed to create history directory %s", dir)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history database")
	}
	if err := db.AutoMigrate(&DaySummary{}, &ArchivedSwitch{}); err != nil {
		return nil, errors.Wrap(err, "failed to initialize history schema")
	}
	return &Store{db: db}, nil
}

// SaveDay inserts or replaces the summary for s.Day.
func (s *Store) SaveDay(ctx context.Context, d DaySummary) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"tracked_seconds", "switches", "session_id", "updated_at"}),
	}).Create(&d)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to save day summary")
	}
	return nil
}

// ArchiveSwitches stores events pruned from the switch log.
func (s *Store) ArchiveSwitches(ctx context.Context, events []event.SwitchEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]ArchivedSwitch, len(events))
	for i, e := range events {
		rows[i] = ArchivedSwitch{
			Type:      string(e.Type),
			FromID:    e.FromID,
			ToID:      e.ToID,
			Domain:    e.Domain,
			SessionID: e.SessionID,
			Timestamp: e.Timestamp,
		}
	}
	if result := s.db.WithContext(ctx).Create(&rows); result.Error != nil {
		return errors.Wrap(result.Error, "failed to archive switch events")
	}
	return nil
}

// Days returns summaries for days on or after since (YYYY-MM-DD), oldest first.
func (s *Store) Days(ctx context.Context, since string) ([]DaySummary, error) {
	var days []DaySummary
	result := s.db.WithContext(ctx).Where("day >= ?", since).Order("day ASC").Find(&days)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query day summaries")
	}
	return days, nil
}

// Clear removes all archived rows.
func (s *Store) Clear(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if result := db.Exec("DELETE FROM day_summaries"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear day summaries")
	}
	if result := db.Exec("DELETE FROM archived_switches"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear archived switches")
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
