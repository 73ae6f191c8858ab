package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS village_snapshots (
	village_id INTEGER NOT NULL,
	taken_at   INTEGER NOT NULL,
	points     INTEGER NOT NULL,
	PRIMARY KEY (village_id, taken_at) ON CONFLICT REPLACE
);

CREATE INDEX IF NOT EXISTS idx_snapshots_village_time
	ON village_snapshots (village_id, taken_at);

CREATE TABLE IF NOT EXISTS tracked_villages (
	village_id INTEGER PRIMARY KEY,
	added_at   INTEGER NOT NULL
);
`

// Store persists per-village point samples in SQLite. The series is
// append-only from the engine's point of view: Record inserts and prunes, the
// readers only select. The composite primary key makes a repeated identical
// sample a no-op, so recording is idempotent in effect.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	insertSnapshot *sql.Stmt
	pruneSnapshots *sql.Stmt
	selectSeries   *sql.Stmt
}

func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewStorageError("failed to open snapshot database", "open", path, err)
	}
	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY between the sampler and command queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to apply snapshot schema", "migrate", path, err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to prepare statements", "prepare", path, err)
	}

	return s, nil
}

func (s *Store) prepareStatements() error {
	var err error

	s.insertSnapshot, err = s.db.Prepare(`
		INSERT INTO village_snapshots (village_id, taken_at, points)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.pruneSnapshots, err = s.db.Prepare(`
		DELETE FROM village_snapshots WHERE taken_at < ?
	`)
	if err != nil {
		return err
	}

	s.selectSeries, err = s.db.Prepare(`
		SELECT village_id, taken_at, points
		FROM village_snapshots
		WHERE village_id = ? AND taken_at >= ?
		ORDER BY taken_at ASC
	`)
	return err
}

// Record appends one sample and prunes entries outside the retention window.
func (s *Store) Record(ctx context.Context, villageID, points int, takenAt int64) error {
	if takenAt == 0 {
		takenAt = time.Now().Unix()
	}

	if _, err := s.insertSnapshot.ExecContext(ctx, villageID, takenAt, points); err != nil {
		return errors.NewStorageError("failed to record snapshot", "insert", fmt.Sprintf("village %d", villageID), err)
	}

	cutoff := time.Now().Add(-constants.SnapshotConfig.Retention).Unix()
	if _, err := s.pruneSnapshots.ExecContext(ctx, cutoff); err != nil {
		s.logger.Warn("Snapshot prune failed", zap.Error(err))
	}

	return nil
}

// Series returns one village's samples at or after since, sorted ascending.
func (s *Store) Series(ctx context.Context, villageID int, since int64) ([]domain.VillageSnapshot, error) {
	rows, err := s.selectSeries.QueryContext(ctx, villageID, since)
	if err != nil {
		return nil, errors.NewStorageError("failed to read snapshot series", "select", fmt.Sprintf("village %d", villageID), err)
	}
	defer rows.Close()

	var series []domain.VillageSnapshot
	for rows.Next() {
		var snap domain.VillageSnapshot
		if err := rows.Scan(&snap.VillageID, &snap.Timestamp, &snap.Points); err != nil {
			return nil, errors.NewStorageError("failed to scan snapshot row", "scan", "", err)
		}
		series = append(series, snap)
	}
	return series, rows.Err()
}

// Track adds a village to the explicit sampling set.
func (s *Store) Track(ctx context.Context, villageID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tracked_villages (village_id, added_at) VALUES (?, ?)`,
		villageID, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewStorageError("failed to track village", "insert", fmt.Sprintf("village %d", villageID), err)
	}
	return nil
}

// Untrack removes a village from the sampling set and reports whether it was
// present.
func (s *Store) Untrack(ctx context.Context, villageID int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracked_villages WHERE village_id = ?`, villageID)
	if err != nil {
		return false, errors.NewStorageError("failed to untrack village", "delete", fmt.Sprintf("village %d", villageID), err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// Tracked lists the explicit sampling set.
func (s *Store) Tracked(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT village_id FROM tracked_villages ORDER BY village_id`)
	if err != nil {
		return nil, errors.NewStorageError("failed to list tracked villages", "select", "", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewStorageError("failed to scan tracked village", "scan", "", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
