package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite database connection for extraction results
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New creates a new database connection and initializes tables
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) timestamp() string {
	return db.now().UTC().Format(time.RFC3339)
}

// createTables creates the required tables if they don't exist
func (db *DB) createTables() error {
	// One row per extraction run
	runsSQL := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL DEFAULT '',
			documents INTEGER NOT NULL,
			data BLOB
		);
	`
	if _, err := db.conn.Exec(runsSQL); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	// One draft per filing unit; re-extraction replaces it
	draftsSQL := `
		CREATE TABLE IF NOT EXISTS drafts (
			company TEXT NOT NULL,
			fiscal_year INTEGER NOT NULL,
			quarter INTEGER NOT NULL,
			kind TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (company, fiscal_year, quarter, kind)
		);
	`
	if _, err := db.conn.Exec(draftsSQL); err != nil {
		return fmt.Errorf("failed to create drafts table: %w", err)
	}

	companiesSQL := `
		CREATE TABLE IF NOT EXISTS companies (
			company TEXT PRIMARY KEY,
			currency TEXT NOT NULL,
			scale TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := db.conn.Exec(companiesSQL); err != nil {
		return fmt.Errorf("failed to create companies table: %w", err)
	}

	recordsSQL := `
		CREATE TABLE IF NOT EXISTS records (
			company TEXT NOT NULL,
			fiscal_year INTEGER NOT NULL,
			quarter INTEGER NOT NULL,
			run_id TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (company, fiscal_year, quarter)
		);
	`
	if _, err := db.conn.Exec(recordsSQL); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	return nil
}

// Run is the metadata of one extraction run
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Documents  int       `json:"documents"`
	Failures   []string  `json:"failures,omitempty"`
}

// StartRun records the start of a run with a fresh id
func (db *DB) StartRun(documents int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: db.now().UTC().Truncate(time.Second),
		Documents: documents,
	}
	query := `INSERT INTO runs (id, started_at, documents) VALUES (?, ?, ?)`
	if _, err := db.conn.Exec(query, run.ID, run.StartedAt.Format(time.RFC3339), documents); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the end of a run along with its failures
func (db *DB) FinishRun(run *Run) error {
	run.FinishedAt = db.now().UTC().Truncate(time.Second)
	data, err := json.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("failed to marshal run failures: %w", err)
	}
	query := `UPDATE runs SET finished_at = ?, data = ? WHERE id = ?`
	res, err := db.conn.Exec(query, run.FinishedAt.Format(time.RFC3339), data, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// GetRun retrieves run metadata by id
func (db *DB) GetRun(id string) (*Run, error) {
	query := "SELECT started_at, finished_at, documents, data FROM runs WHERE id = ?"

	var startedAt, finishedAt string
	var data []byte
	run := &Run{ID: id}
	err := db.conn.QueryRow(query, id).Scan(&startedAt, &finishedAt, &run.Documents, &data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	if finishedAt != "" {
		if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &run.Failures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run failures: %w", err)
		}
	}
	return run, nil
}

// StoreDraft stores the draft of one filing unit, replacing an earlier
// extraction of the same unit
func (db *DB) StoreDraft(runID, source string, d *record.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO drafts (company, fiscal_year, quarter, kind, source, run_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	u := d.Unit
	_, err = db.conn.Exec(query, strings.ToUpper(u.Company), u.FiscalYear, u.Quarter, string(u.Kind), source, runID, data, db.timestamp())
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}

	return nil
}

// GetDraft retrieves the stored draft of a filing unit
func (db *DB) GetDraft(u filing.Unit) (*record.Draft, error) {
	query := `
		SELECT data
		FROM drafts
		WHERE company = ? AND fiscal_year = ? AND quarter = ? AND kind = ?
	`

	var data []byte
	err := db.conn.QueryRow(query, strings.ToUpper(u.Company), u.FiscalYear, u.Quarter, string(u.Kind)).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("draft %s: %w", u, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}

	var d record.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

// ListDrafts returns every stored draft of a company in period order, so
// that a series can be reassembled from documents extracted in earlier runs
func (db *DB) ListDrafts(company string) ([]*record.Draft, error) {
	query := `
		SELECT data
		FROM drafts
		WHERE company = ?
		ORDER BY fiscal_year, CASE quarter WHEN 0 THEN 5 ELSE quarter END, kind
	`

	rows, err := db.conn.Query(query, strings.ToUpper(company))
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*record.Draft
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}
		var d record.Draft
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
		}
		drafts = append(drafts, &d)
	}
	return drafts, rows.Err()
}

// IsDraftStale checks if the draft of a unit is missing or older than the
// specified duration
func (db *DB) IsDraftStale(u filing.Unit, maxAge time.Duration) (bool, error) {
	query := `
		SELECT updated_at
		FROM drafts
		WHERE company = ? AND fiscal_year = ? AND quarter = ? AND kind = ?
	`

	var updatedAt string
	err := db.conn.QueryRow(query, strings.ToUpper(u.Company), u.FiscalYear, u.Quarter, string(u.Kind)).Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return true, nil // No draft exists, consider stale
		}
		return false, fmt.Errorf("failed to query draft timestamp: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	return db.now().Sub(timestamp) > maxAge, nil
}

// StoreSeries stores a company's series, one row per record, in a single
// transaction
func (db *DB) StoreSeries(runID string, s *record.Series) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := db.timestamp()
	company := strings.ToUpper(s.Company)
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO companies (company, currency, scale, updated_at)
		VALUES (?, ?, ?, ?)
	`, company, s.Currency, s.Scale, now); err != nil {
		return fmt.Errorf("failed to store company: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO records (company, fiscal_year, quarter, run_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range s.Records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err := stmt.Exec(company, r.FiscalYear, r.Quarter, runID, data, now); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSeries retrieves the stored series of a company
func (db *DB) GetSeries(company string) (*record.Series, error) {
	company = strings.ToUpper(company)
	s := &record.Series{}
	err := db.conn.QueryRow(`SELECT company, currency, scale FROM companies WHERE company = ?`, company).
		Scan(&s.Company, &s.Currency, &s.Scale)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("series %s: %w", company, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query company: %w", err)
	}

	query := `
		SELECT data
		FROM records
		WHERE company = ?
		ORDER BY fiscal_year, CASE quarter WHEN 0 THEN 5 ELSE quarter END
	`
	rows, err := db.conn.Query(query, company)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		var q record.Quarterly
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		s.Records = append(s.Records, &q)
	}
	return s, rows.Err()
}

// ListCompanies returns every company with a stored series
func (db *DB) ListCompanies() ([]string, error) {
	query := `SELECT company FROM companies ORDER BY company`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []string
	for rows.Next() {
		var company string
		if err := rows.Scan(&company); err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}
