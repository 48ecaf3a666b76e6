// internal/store/sql_sessions.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
)

// ============================================================================
// Review sessions
// ============================================================================

type sessionRow struct {
	ID           string        `db:"id"`
	UserID       string        `db:"user_id"`
	ProblemSetID string        `db:"problem_set_id"`
	State        string        `db:"session_state"`
	IsActive     int           `db:"is_active"`
	CreatedAt    int64         `db:"created_at"`
	UpdatedAt    int64         `db:"updated_at"`
	CompletedAt  sql.NullInt64 `db:"completed_at"`
}

const sessionColumns = "id, user_id, problem_set_id, session_state, is_active, created_at, updated_at, completed_at"

func (r sessionRow) toSession() (*reviewsession.Session, error) {
	s := &reviewsession.Session{
		ID:           r.ID,
		UserID:       r.UserID,
		ProblemSetID: r.ProblemSetID,
		IsActive:     r.IsActive != 0,
		CreatedAt:    fromMillis(r.CreatedAt),
		UpdatedAt:    fromMillis(r.UpdatedAt),
		CompletedAt:  timeFromNull(r.CompletedAt),
	}
	if err := json.Unmarshal([]byte(r.State), &s.State); err != nil {
		return nil, errors.Wrapf(err, "decode state of session %s", r.ID)
	}
	return s, nil
}

func encodeState(s *reviewsession.Session) (string, error) {
	raw, err := json.Marshal(s.State)
	if err != nil {
		return "", errors.Wrapf(err, "encode state of session %s", s.ID)
	}
	return string(raw), nil
}

func (s *SQLStore) CreateSession(ctx context.Context, sess *reviewsession.Session) error {
	state, err := encodeState(sess)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		"INSERT INTO review_sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		sess.ID, sess.UserID, sess.ProblemSetID, state, boolToInt(sess.IsActive),
		toMillis(sess.CreatedAt), toMillis(sess.UpdatedAt), nullMillis(sess.CompletedAt),
	)
	if isUniqueViolation(err) {
		return ErrActiveSessionExists
	}
	return errors.Wrap(err, "insert session")
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (*reviewsession.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT "+sessionColumns+" FROM review_sessions WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select session")
	}
	return row.toSession()
}

func (s *SQLStore) FindActiveSession(ctx context.Context, userID, problemSetID string) (*reviewsession.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		"SELECT "+sessionColumns+" FROM review_sessions WHERE user_id = ? AND problem_set_id = ? AND is_active = 1 "+
			"ORDER BY created_at DESC LIMIT 1"),
		userID, problemSetID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select active session")
	}
	return row.toSession()
}

// UpdateSession loads the session, runs mutate on it and persists the new
// state together with the result mutate returns, all in one transaction.
// Concurrent updates of the same session are applied one after the other.
func (s *SQLStore) UpdateSession(ctx context.Context, id string, mutate SessionMutation) (*reviewsession.Session, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	var row sessionRow
	err = tx.GetContext(ctx, &row, tx.Rebind("SELECT "+sessionColumns+" FROM review_sessions WHERE id = ?"+s.lockClause()), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select session for update")
	}

	sess, err := row.toSession()
	if err != nil {
		return nil, err
	}

	result, err := mutate(sess)
	if err != nil {
		return nil, err
	}

	state, err := encodeState(sess)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE review_sessions
		SET session_state = ?, is_active = ?, updated_at = ?, completed_at = ?
		WHERE id = ?`),
		state, boolToInt(sess.IsActive), toMillis(sess.UpdatedAt), nullMillis(sess.CompletedAt), sess.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "update session")
	}

	if result != nil {
		if err := insertResult(ctx, tx, result); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return sess, nil
}

func insertResult(ctx context.Context, tx *sqlx.Tx, r *reviewsession.Result) error {
	var wasCorrect sql.NullInt64
	if r.WasCorrect != nil {
		wasCorrect = sql.NullInt64{Int64: int64(boolToInt(*r.WasCorrect)), Valid: true}
	}

	err := tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO session_results (session_id, problem_id, was_correct, was_skipped, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		r.SessionID, r.ProblemID, wasCorrect, boolToInt(r.WasSkipped), toMillis(r.CreatedAt),
	).Scan(&r.ID)
	return errors.Wrap(err, "insert result")
}

type resultRow struct {
	ID         int64         `db:"id"`
	SessionID  string        `db:"session_id"`
	ProblemID  string        `db:"problem_id"`
	WasCorrect sql.NullInt64 `db:"was_correct"`
	WasSkipped int           `db:"was_skipped"`
	CreatedAt  int64         `db:"created_at"`
}

func (s *SQLStore) ListResults(ctx context.Context, sessionID string) ([]reviewsession.Result, error) {
	var rows []resultRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, session_id, problem_id, was_correct, was_skipped, created_at
		FROM session_results WHERE session_id = ? ORDER BY created_at, id`), sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "select results")
	}

	results := make([]reviewsession.Result, len(rows))
	for i, r := range rows {
		results[i] = reviewsession.Result{
			ID:         r.ID,
			SessionID:  r.SessionID,
			ProblemID:  r.ProblemID,
			WasSkipped: r.WasSkipped != 0,
			CreatedAt:  fromMillis(r.CreatedAt),
		}
		if r.WasCorrect.Valid {
			correct := r.WasCorrect.Int64 != 0
			results[i].WasCorrect = &correct
		}
	}
	return results, nil
}
