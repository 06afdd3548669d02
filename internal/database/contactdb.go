package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/contactscan/internal/model"
)

// DBFileName is the name of the SQLite file inside the database directory.
const DBFileName = "contactscan.db"

// timeLayout stores times in UTC with fixed-width fractions so that text
// ordering matches chronological ordering.
const timeLayout = "2006-01-02 15:04:05.000000000"

// ContactDB stores finished runs and the contacts they produced.
// A run is stored twice: as a JSON document for exact retrieval, and as one
// row per contact so that an address can be followed across runs.
type ContactDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ContactDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ContactDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*ContactDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &ContactDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *ContactDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *ContactDB) Close() error {
	return cdb.db.Close()
}

func (cdb *ContactDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		site TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		min_confidence REAL NOT NULL,
		contact_count INTEGER NOT NULL,
		total_contacts INTEGER NOT NULL,
		pages_processed INTEGER NOT NULL,
		failed_pages INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL,
		verdict TEXT NOT NULL,
		methods TEXT NOT NULL,
		UNIQUE(run_id, email)
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a finished run and its contacts in one transaction.
// Saving a run with an ID that already exists returns ErrDuplicateRun.
func (cdb *ContactDB) SaveRun(ctx context.Context, run *model.RunResult) (err error) {
	if run == nil || run.RunID == "" {
		return ErrInvalidRun
	}

	resultJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.RunID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check run: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRun, run.RunID)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, site, started_at, finished_at, min_confidence, contact_count,
		total_contacts, pages_processed, failed_pages, interrupted, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.Site,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.MinConfidence,
		len(run.Contacts),
		run.TotalContacts,
		run.PagesProcessed,
		run.FailedPages,
		run.Interrupted,
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO contacts (run_id, email, name, company, confidence, verdict, methods)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare contact insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range run.Contacts {
		methods := make([]string, len(c.Methods))
		for i, m := range c.Methods {
			methods[i] = m.String()
		}
		if _, err = stmt.ExecContext(ctx,
			run.RunID,
			c.Email,
			c.Name,
			c.Company,
			c.Confidence,
			c.Verdict.String(),
			strings.Join(methods, ","),
		); err != nil {
			return fmt.Errorf("failed to insert contact: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a stored run by ID. It returns nil when no run has that ID.
func (cdb *ContactDB) GetRun(ctx context.Context, id string) (*model.RunResult, error) {
	var resultJSON string
	err := cdb.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeRun(resultJSON)
}

// GetLatestRuns returns up to n runs for site, newest first.
// An empty site matches runs stored without a site label.
func (cdb *ContactDB) GetLatestRuns(ctx context.Context, site string, n int) ([]*model.RunResult, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT result_json FROM runs
	WHERE site = ?
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`, site, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := decodeRun(resultJSON)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunMetadata summarizes a stored run without loading its contacts.
type RunMetadata struct {
	// ID is the run identifier.
	ID string

	// Site is the site label the run was stored with.
	Site string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Contacts counts the contacts at or above the run's threshold.
	Contacts int

	// TotalContacts counts every aggregated contact.
	TotalContacts int

	// PagesProcessed counts the pages the run went through.
	PagesProcessed int

	// FailedPages counts pages whose pipeline failed.
	FailedPages int

	// Interrupted is set when the run was cancelled.
	Interrupted bool
}

// ListRuns returns metadata for the stored runs of site, newest first.
// An empty site lists every run.
func (cdb *ContactDB) ListRuns(ctx context.Context, site string) ([]RunMetadata, error) {
	query := `
	SELECT id, site, started_at, contact_count, total_contacts, pages_processed, failed_pages, interrupted
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if site != "" {
		query += " AND site = ?"
		args = append(args, site)
	}
	query += " ORDER BY started_at DESC, rowid DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		if err := rows.Scan(
			&meta.ID,
			&meta.Site,
			&startedAt,
			&meta.Contacts,
			&meta.TotalContacts,
			&meta.PagesProcessed,
			&meta.FailedPages,
			&meta.Interrupted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListSites returns the distinct site labels of stored runs.
func (cdb *ContactDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT site FROM runs ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Sighting is one appearance of an address in a stored run.
type Sighting struct {
	RunID      string
	Site       string
	StartedAt  time.Time
	Confidence float64
	Verdict    model.Verdict
	Methods    []model.Method
}

// ContactHistory returns every stored appearance of email, newest first.
func (cdb *ContactDB) ContactHistory(ctx context.Context, email string) ([]Sighting, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT c.run_id, r.site, r.started_at, c.confidence, c.verdict, c.methods
	FROM contacts c JOIN runs r ON r.id = c.run_id
	WHERE c.email = ?
	ORDER BY r.started_at DESC, r.rowid DESC
	`, model.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to query contact history: %w", err)
	}
	defer rows.Close()

	var results []Sighting
	for rows.Next() {
		var s Sighting
		var startedAt, verdict, methods string
		if err := rows.Scan(&s.RunID, &s.Site, &startedAt, &s.Confidence, &verdict, &methods); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		if err := s.Verdict.UnmarshalText([]byte(verdict)); err != nil {
			return nil, fmt.Errorf("failed to parse verdict: %w", err)
		}
		for _, name := range strings.Split(methods, ",") {
			if name == "" {
				continue
			}
			m, ok := model.ParseMethod(name)
			if !ok {
				return nil, fmt.Errorf("failed to parse method %q", name)
			}
			s.Methods = append(s.Methods, m)
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// DeleteRun removes a run and its contacts. Deleting an unknown ID is not an error.
func (cdb *ContactDB) DeleteRun(ctx context.Context, id string) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE run_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete contacts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return tx.Commit()
}

func decodeRun(resultJSON string) (*model.RunResult, error) {
	var run model.RunResult
	if err := json.Unmarshal([]byte(resultJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	return &run, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats parseTimestamp accepts.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp returns the zero time when s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
