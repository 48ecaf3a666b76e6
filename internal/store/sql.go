// internal/store/sql.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/domain/filter"
	"github.com/wrongbook/backend/internal/domain/problem"
	"github.com/wrongbook/backend/internal/domain/problemset"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// schema is shared by both dialects; only the result id column differs.
// Timestamps are unix milliseconds and booleans are 0/1 integers.
const schema = `
CREATE TABLE IF NOT EXISTS problems (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    title TEXT NOT NULL,
    problem_type TEXT NOT NULL,
    status TEXT NOT NULL,
    last_reviewed_at BIGINT,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_problems_owner_subject ON problems (owner_id, subject_id);

CREATE TABLE IF NOT EXISTS problem_tags (
    problem_id TEXT NOT NULL REFERENCES problems (id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL,
    PRIMARY KEY (problem_id, tag_id)
);

CREATE TABLE IF NOT EXISTS problem_sets (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    filter_config TEXT,
    session_config TEXT NOT NULL,
    sharing_level TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS problem_set_members (
    set_id TEXT NOT NULL REFERENCES problem_sets (id) ON DELETE CASCADE,
    problem_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (set_id, problem_id)
);

CREATE TABLE IF NOT EXISTS problem_set_shares (
    set_id TEXT NOT NULL REFERENCES problem_sets (id) ON DELETE CASCADE,
    email TEXT NOT NULL,
    PRIMARY KEY (set_id, email)
);

CREATE TABLE IF NOT EXISTS review_sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    problem_set_id TEXT NOT NULL,
    session_state TEXT NOT NULL,
    is_active INTEGER NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    completed_at BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_review_sessions_one_active
    ON review_sessions (user_id, problem_set_id) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS session_results (
    id %s,
    session_id TEXT NOT NULL REFERENCES review_sessions (id),
    problem_id TEXT NOT NULL,
    was_correct INTEGER,
    was_skipped INTEGER NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_results_session ON session_results (session_id, created_at);
`

var resultIDColumn = map[string]string{
	DriverSQLite:   "INTEGER PRIMARY KEY AUTOINCREMENT",
	DriverPostgres: "BIGSERIAL PRIMARY KEY",
}

// SQLStore implements Store on SQLite or PostgreSQL.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database and applies the schema.
func Open(driver, dsn string) (*SQLStore, error) {
	idColumn, ok := resultIDColumn[driver]
	if !ok {
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if driver == DriverSQLite {
		// One connection serializes writers and keeps in-memory databases alive.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(fmt.Sprintf(schema, idColumn)); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrap(err, p)
		}
	}
	return nil
}

// lockClause locks the selected session row until the transaction ends.
// SQLite needs none: the single connection already serializes writers.
func (s *SQLStore) lockClause() string {
	if s.driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// Problems
// ============================================================================

type problemRow struct {
	ID             string        `db:"id"`
	OwnerID        string        `db:"owner_id"`
	SubjectID      string        `db:"subject_id"`
	Title          string        `db:"title"`
	ProblemType    string        `db:"problem_type"`
	Status         string        `db:"status"`
	LastReviewedAt sql.NullInt64 `db:"last_reviewed_at"`
	CreatedAt      int64         `db:"created_at"`
}

const problemColumns = "id, owner_id, subject_id, title, problem_type, status, last_reviewed_at, created_at"

func (r problemRow) toProblem() problem.Problem {
	return problem.Problem{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		SubjectID:      r.SubjectID,
		Title:          r.Title,
		ProblemType:    problem.Type(r.ProblemType),
		Status:         problem.Status(r.Status),
		LastReviewedAt: timeFromNull(r.LastReviewedAt),
		CreatedAt:      fromMillis(r.CreatedAt),
	}
}

func (s *SQLStore) SaveProblem(ctx context.Context, p *problem.Problem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO problems ("+problemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		p.ID, p.OwnerID, p.SubjectID, p.Title, string(p.ProblemType), string(p.Status),
		nullMillis(p.LastReviewedAt), toMillis(p.CreatedAt),
	)
	if err != nil {
		return errors.Wrap(err, "insert problem")
	}

	for _, tag := range p.TagIDs {
		_, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO problem_tags (problem_id, tag_id) VALUES (?, ?)"), p.ID, tag)
		if err != nil {
			return errors.Wrapf(err, "insert tag %s", tag)
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

func (s *SQLStore) GetProblems(ctx context.Context, ids []string) ([]problem.Problem, error) {
	if len(ids) == 0 {
		return []problem.Problem{}, nil
	}

	query, args, err := sqlx.In("SELECT "+problemColumns+" FROM problems WHERE id IN (?)", ids)
	if err != nil {
		return nil, errors.Wrap(err, "build problems query")
	}
	var rows []problemRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "select problems")
	}

	byID := make(map[string]problem.Problem, len(rows))
	for _, r := range rows {
		byID[r.ID] = r.toProblem()
	}

	problems := make([]problem.Problem, 0, len(rows))
	for _, pid := range ids {
		if p, ok := byID[pid]; ok {
			problems = append(problems, p)
			delete(byID, pid)
		}
	}
	return problems, s.loadTags(ctx, problems)
}

func (s *SQLStore) ListProblemsBySubject(ctx context.Context, ownerID, subjectID string) ([]problem.Problem, error) {
	var rows []problemRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		"SELECT "+problemColumns+" FROM problems WHERE owner_id = ? AND subject_id = ? ORDER BY created_at, id"),
		ownerID, subjectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select problems by subject")
	}

	problems := make([]problem.Problem, len(rows))
	for i, r := range rows {
		problems[i] = r.toProblem()
	}
	return problems, s.loadTags(ctx, problems)
}

func (s *SQLStore) loadTags(ctx context.Context, problems []problem.Problem) error {
	if len(problems) == 0 {
		return nil
	}

	ids := make([]string, len(problems))
	index := make(map[string]int, len(problems))
	for i, p := range problems {
		ids[i] = p.ID
		index[p.ID] = i
	}

	query, args, err := sqlx.In("SELECT problem_id, tag_id FROM problem_tags WHERE problem_id IN (?) ORDER BY tag_id", ids)
	if err != nil {
		return errors.Wrap(err, "build tags query")
	}
	var tags []struct {
		ProblemID string `db:"problem_id"`
		TagID     string `db:"tag_id"`
	}
	if err := s.db.SelectContext(ctx, &tags, s.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "select tags")
	}

	for _, t := range tags {
		i := index[t.ProblemID]
		problems[i].TagIDs = append(problems[i].TagIDs, t.TagID)
	}
	return nil
}

func (s *SQLStore) UpdateProblemStatus(ctx context.Context, problemID string, status problem.Status) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE problems SET status = ? WHERE id = ?"), string(status), problemID)
	if err != nil {
		return errors.Wrap(err, "update problem status")
	}
	return checkAffected(res)
}

func (s *SQLStore) TouchProblemReviewed(ctx context.Context, problemID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE problems SET last_reviewed_at = ? WHERE id = ?"), toMillis(at), problemID)
	if err != nil {
		return errors.Wrap(err, "touch problem")
	}
	return checkAffected(res)
}

// ============================================================================
// Problem sets
// ============================================================================

type problemSetRow struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	Name          string         `db:"name"`
	SubjectID     string         `db:"subject_id"`
	Kind          string         `db:"kind"`
	FilterConfig  sql.NullString `db:"filter_config"`
	SessionConfig string         `db:"session_config"`
	SharingLevel  string         `db:"sharing_level"`
	CreatedAt     int64          `db:"created_at"`
}

func (s *SQLStore) SaveProblemSet(ctx context.Context, ps *problemset.ProblemSet) error {
	sessionConfig, err := json.Marshal(ps.SessionConfig)
	if err != nil {
		return errors.Wrap(err, "encode session config")
	}
	var filterConfig sql.NullString
	if ps.Filter != nil {
		raw, err := json.Marshal(ps.Filter)
		if err != nil {
			return errors.Wrap(err, "encode filter config")
		}
		filterConfig = sql.NullString{String: string(raw), Valid: true}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO problem_sets (id, owner_id, name, subject_id, kind, filter_config, session_config, sharing_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		ps.ID, ps.OwnerID, ps.Name, ps.SubjectID, string(ps.Kind), filterConfig, string(sessionConfig),
		string(ps.Sharing), toMillis(ps.CreatedAt),
	)
	if err != nil {
		return errors.Wrap(err, "insert problem set")
	}

	for i, pid := range ps.ProblemIDs {
		_, err = tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO problem_set_members (set_id, problem_id, position) VALUES (?, ?, ?)"), ps.ID, pid, i)
		if err != nil {
			return errors.Wrapf(err, "insert member %s", pid)
		}
	}

	for _, email := range ps.SharedWith {
		_, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO problem_set_shares (set_id, email) VALUES (?, ?)"), ps.ID, email)
		if err != nil {
			return errors.Wrap(err, "insert share")
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

func (s *SQLStore) GetProblemSet(ctx context.Context, id string) (*problemset.ProblemSet, error) {
	var row problemSetRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, owner_id, name, subject_id, kind, filter_config, session_config, sharing_level, created_at
		FROM problem_sets WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select problem set")
	}

	ps := &problemset.ProblemSet{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		SubjectID: row.SubjectID,
		Kind:      problemset.Kind(row.Kind),
		Sharing:   access.SharingLevel(row.SharingLevel),
		CreatedAt: fromMillis(row.CreatedAt),
	}
	if err := json.Unmarshal([]byte(row.SessionConfig), &ps.SessionConfig); err != nil {
		return nil, errors.Wrap(err, "decode session config")
	}
	if row.FilterConfig.Valid {
		var cfg filter.Config
		if err := json.Unmarshal([]byte(row.FilterConfig.String), &cfg); err != nil {
			return nil, errors.Wrap(err, "decode filter config")
		}
		ps.Filter = &cfg
	}

	if err := s.db.SelectContext(ctx, &ps.ProblemIDs, s.db.Rebind(
		"SELECT problem_id FROM problem_set_members WHERE set_id = ? ORDER BY position"), id); err != nil {
		return nil, errors.Wrap(err, "select members")
	}
	if err := s.db.SelectContext(ctx, &ps.SharedWith, s.db.Rebind(
		"SELECT email FROM problem_set_shares WHERE set_id = ? ORDER BY email"), id); err != nil {
		return nil, errors.Wrap(err, "select shares")
	}

	return ps, nil
}
