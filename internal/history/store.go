// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records submitted jobs in a local SQLite database so the
// CLI can list past conversions and where their results were saved.
package history

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

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

const defaultMaxResults = 20

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("job not found")

// Job is one recorded submission.
type Job struct {
	ID         string               `json:"id" yaml:"id"`
	Tool       types.ToolID         `json:"tool" yaml:"tool"`
	Inputs     []string             `json:"inputs" yaml:"inputs"`
	State      types.LifecycleState `json:"state" yaml:"state"`
	Code       *int                 `json:"code,omitempty" yaml:"code,omitempty"`
	Message    string               `json:"message,omitempty" yaml:"message,omitempty"`
	Output     string               `json:"output,omitempty" yaml:"output,omitempty"`
	StartedAt  time.Time            `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Store manages the history database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the database at cfg.Path and creates the
// schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("history path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			tool TEXT NOT NULL,
			inputs TEXT NOT NULL,
			state TEXT NOT NULL,
			code INTEGER,
			message TEXT,
			output TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_tool ON jobs(tool)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Begin records a job entering the submitting state and returns its id.
func (s *Store) Begin(ctx context.Context, tool types.ToolID, inputs []string) (string, error) {
	id := uuid.NewString()
	encoded, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("encoding inputs: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, tool, inputs, state, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(tool), string(encoded), string(types.StateSubmitting), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting job: %w", err)
	}
	return id, nil
}

// Finish records the terminal state of job id. failure is nil on success.
func (s *Store) Finish(ctx context.Context, id string, state types.LifecycleState, failure *types.ClassifiedError, output string) error {
	var code sql.NullInt64
	var message sql.NullString
	if failure != nil {
		code = sql.NullInt64{Int64: int64(failure.Code), Valid: true}
		message = sql.NullString{String: failure.Message, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET state = ?, code = ?, message = ?, output = ?, finished_at = ? WHERE id = ?`,
		string(state), code, message, output, s.now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get returns a single job.
func (s *Store) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx, selectJobs+` WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j, err
}

// Query filters List results. Zero values match everything.
type Query struct {
	Tool  types.ToolID
	State types.LifecycleState
	// Input matches jobs with an input name containing this substring.
	Input string
	Limit int
}

// List returns matching jobs, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Job, error) {
	var where []string
	var args []any
	if q.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, string(q.Tool))
	}
	if q.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(q.State))
	}
	if q.Input != "" {
		where = append(where, "inputs LIKE ?")
		args = append(args, "%"+q.Input+"%")
	}

	query := selectJobs
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.maxResults
	}
	query += " ORDER BY rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

const selectJobs = `SELECT id, tool, inputs, state, code, message, output, started_at, finished_at FROM jobs`

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (Job, error) {
	var (
		j               Job
		tool, inputs    string
		st, started     string
		code            sql.NullInt64
		message, output sql.NullString
		finished        sql.NullString
	)
	if err := sc.Scan(&j.ID, &tool, &inputs, &st, &code, &message, &output, &started, &finished); err != nil {
		return Job{}, err
	}
	j.Tool = types.ToolID(tool)
	j.State = types.LifecycleState(st)
	if err := json.Unmarshal([]byte(inputs), &j.Inputs); err != nil {
		return Job{}, fmt.Errorf("decoding inputs of job %s: %w", j.ID, err)
	}
	if code.Valid {
		c := int(code.Int64)
		j.Code = &c
	}
	j.Message = message.String
	j.Output = output.String

	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Job{}, fmt.Errorf("parsing started_at of job %s: %w", j.ID, err)
	}
	j.StartedAt = t
	if finished.Valid {
		t, err := time.Parse(time.RFC3339Nano, finished.String)
		if err != nil {
			return Job{}, fmt.Errorf("parsing finished_at of job %s: %w", j.ID, err)
		}
		j.FinishedAt = &t
	}
	return j, nil
}
