package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("storage")

// ErrRunNotFound signals that the requested run is not stored
var ErrRunNotFound = errors.New("run not found")

// sqliteStorage is the sqlite implementation for the run reports storage
type sqliteStorage struct {
	db            *sql.DB
	maxStoredRuns int
}

// NewSQLiteStorage creates the database and the schema. A positive maxStoredRuns keeps only the newest runs.
func NewSQLiteStorage(dbPath string, maxStoredRuns int) (*sqliteStorage, error) {
	if maxStoredRuns < 0 {
		return nil, errors.New("negative number of stored runs")
	}

	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes the writers
	db.SetMaxOpenConns(1)

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteStorage{
		db:            db,
		maxStoredRuns: maxStoredRuns,
	}, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT    NOT NULL PRIMARY KEY,
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id  TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq     INTEGER NOT NULL,
		site    TEXT    NOT NULL,
		device  TEXT    NOT NULL,
		score   INTEGER,
		fcp     REAL,
		lcp     REAL,
		si      REAL,
		tbt     INTEGER,
		cls     REAL,
		ttfb    REAL,
		inp     REAL
	);

	CREATE TABLE IF NOT EXISTS averages (
		run_id      TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		site        TEXT    NOT NULL,
		device      TEXT    NOT NULL,
		num_samples INTEGER NOT NULL,
		score       INTEGER,
		fcp         REAL,
		lcp         REAL,
		si          REAL,
		tbt         INTEGER,
		cls         REAL,
		ttfb        REAL,
		inp         REAL
	);

	CREATE TABLE IF NOT EXISTS faults (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		site    TEXT NOT NULL,
		device  TEXT NOT NULL,
		error   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run_id ON samples(run_id);
	CREATE INDEX IF NOT EXISTS idx_averages_run_id ON averages(run_id);
	CREATE INDEX IF NOT EXISTS idx_faults_run_id ON faults(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Report stores the run report, making the storage usable as a report sink
func (s *sqliteStorage) Report(ctx context.Context, report *common.RunReport) error {
	return s.SaveReport(ctx, report)
}

// SaveReport inserts the run with all its records and prunes the runs over the retention limit
func (s *sqliteStorage) SaveReport(ctx context.Context, report *common.RunReport) error {
	if report == nil {
		return errors.New("nil run report")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (id, started_at, finished_at) VALUES (?, ?, ?)`,
		report.ID, report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, sample := range report.Raw {
		r := sample.Record
		_, err = tx.ExecContext(ctx, `
			INSERT INTO samples (run_id, seq, site, device, score, fcp, lcp, si, tbt, cls, ttfb, inp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.ID, i, sample.Site, string(sample.Device), r.Score, r.FCP, r.LCP, r.SI, r.TBT, r.CLS, r.TTFB, r.INP)
		if err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	for i, avg := range report.Averaged {
		r := avg.Record
		_, err = tx.ExecContext(ctx, `
			INSERT INTO averages (run_id, seq, site, device, num_samples, score, fcp, lcp, si, tbt, cls, ttfb, inp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.ID, i, avg.Site, string(avg.Device), avg.NumSamples, r.Score, r.FCP, r.LCP, r.SI, r.TBT, r.CLS, r.TTFB, r.INP)
		if err != nil {
			return fmt.Errorf("failed to insert average: %w", err)
		}
	}

	for _, fault := range report.Faults {
		_, err = tx.ExecContext(ctx, `INSERT INTO faults (run_id, site, device, error) VALUES (?, ?, ?, ?)`,
			report.ID, fault.Site, string(fault.Device), fault.Err)
		if err != nil {
			return fmt.Errorf("failed to insert fault: %w", err)
		}
	}

	if s.maxStoredRuns > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM runs
			WHERE id NOT IN (
				SELECT id FROM runs
				ORDER BY started_at DESC
				LIMIT ?
			)
		`, s.maxStoredRuns)
		if err != nil {
			return fmt.Errorf("failed to trim stored runs: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	log.Debug("run report stored", "run", report.ID, "samples", len(report.Raw), "averaged", len(report.Averaged))

	return nil
}

const runSummaryQuery = `
	SELECT r.id, r.started_at, r.finished_at,
		(SELECT COUNT(*) FROM samples s WHERE s.run_id = r.id),
		(SELECT COUNT(*) FROM averages a WHERE a.run_id = r.id),
		(SELECT COUNT(*) FROM faults f WHERE f.run_id = r.id)
	FROM runs r
`

// GetRuns returns all the stored runs, newest first
func (s *sqliteStorage) GetRuns(ctx context.Context) ([]common.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, runSummaryQuery+" ORDER BY r.started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.RunSummary, 0)
	for rows.Next() {
		summary, errScan := scanRunSummary(rows)
		if errScan != nil {
			return nil, errScan
		}

		results = append(results, *summary)
	}

	return results, rows.Err()
}

// GetLatestRun returns the newest stored run
func (s *sqliteStorage) GetLatestRun(ctx context.Context) (*common.RunSummary, error) {
	row := s.db.QueryRowContext(ctx, runSummaryQuery+" ORDER BY r.started_at DESC LIMIT 1")
	summary, err := scanRunSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}

	return summary, err
}

// GetRun returns the stored run with the provided ID
func (s *sqliteStorage) GetRun(ctx context.Context, id string) (*common.RunSummary, error) {
	row := s.db.QueryRowContext(ctx, runSummaryQuery+" WHERE r.id = ?", id)
	summary, err := scanRunSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}

	return summary, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRunSummary(row scanner) (*common.RunSummary, error) {
	var summary common.RunSummary
	var startedAt, finishedAt int64

	err := row.Scan(&summary.ID, &startedAt, &finishedAt, &summary.NumSamples, &summary.NumAveraged, &summary.NumFaults)
	if err != nil {
		return nil, err
	}

	summary.StartedAt = time.UnixMilli(startedAt)
	summary.FinishedAt = time.UnixMilli(finishedAt)

	return &summary, nil
}

// GetRunAverages returns the averaged records of a run, in the order they were reported
func (s *sqliteStorage) GetRunAverages(ctx context.Context, id string) ([]common.TaggedAverage, error) {
	_, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT site, device, num_samples, score, fcp, lcp, si, tbt, cls, ttfb, inp
		FROM averages
		WHERE run_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.TaggedAverage, 0)
	for rows.Next() {
		var avg common.TaggedAverage
		var device string
		var m nullableMetrics

		err = rows.Scan(&avg.Site, &device, &avg.NumSamples, &m.score, &m.fcp, &m.lcp, &m.si, &m.tbt, &m.cls, &m.ttfb, &m.inp)
		if err != nil {
			return nil, err
		}

		avg.Device = common.Device(device)
		avg.Record = common.AveragedRecord(m.toRecord())
		results = append(results, avg)
	}

	return results, rows.Err()
}

// GetRunSamples returns the raw samples of a run, in the order they were reported
func (s *sqliteStorage) GetRunSamples(ctx context.Context, id string) ([]common.TaggedSample, error) {
	_, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT site, device, score, fcp, lcp, si, tbt, cls, ttfb, inp
		FROM samples
		WHERE run_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.TaggedSample, 0)
	for rows.Next() {
		var sample common.TaggedSample
		var device string
		var m nullableMetrics

		err = rows.Scan(&sample.Site, &device, &m.score, &m.fcp, &m.lcp, &m.si, &m.tbt, &m.cls, &m.ttfb, &m.inp)
		if err != nil {
			return nil, err
		}

		sample.Device = common.Device(device)
		sample.Record = m.toRecord()
		results = append(results, sample)
	}

	return results, rows.Err()
}

// DeleteRun removes a run and all its records
func (s *sqliteStorage) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRunNotFound
	}

	return nil
}

type nullableMetrics struct {
	score sql.NullInt64
	fcp   sql.NullFloat64
	lcp   sql.NullFloat64
	si    sql.NullFloat64
	tbt   sql.NullInt64
	cls   sql.NullFloat64
	ttfb  sql.NullFloat64
	inp   sql.NullFloat64
}

func (m nullableMetrics) toRecord() common.MetricRecord {
	return common.MetricRecord{
		Score: nullInt(m.score),
		FCP:   nullFloat(m.fcp),
		LCP:   nullFloat(m.lcp),
		SI:    nullFloat(m.si),
		TBT:   nullInt(m.tbt),
		CLS:   nullFloat(m.cls),
		TTFB:  nullFloat(m.ttfb),
		INP:   nullFloat(m.inp),
	}
}

func nullInt(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}

	return common.IntPtr(int(value.Int64))
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}

	return common.FloatPtr(value.Float64)
}

// Close closes the database
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
