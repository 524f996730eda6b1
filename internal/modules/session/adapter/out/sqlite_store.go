package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stint/internal/modules/session/domain"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/tx"
)

// timeLayout keeps a fixed fractional width so lexicographic order of the
// stored strings is chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sessionsDDL = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	project TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	stopped_at TEXT,
	pauses TEXT NOT NULL DEFAULT '[]',
	state TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
CREATE INDEX IF NOT EXISTS idx_sessions_state ON sessions(state);
CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project);
`

const sessionColumns = "id, description, tags, project, started_at, stopped_at, pauses, state"

// SQLiteStore persists sessions in the shared database. Every method runs
// on the transaction carried by ctx when one is present, so a state check
// and the write depending on it are atomic under the same Within call.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sessionsDDL); err != nil {
		return fmt.Errorf("ensure sessions schema: %w", err)
	}
	return nil
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) q(ctx context.Context) queryer {
	if txn := tx.From(ctx); txn != nil {
		return txn
	}
	return s.db
}

func (s *SQLiteStore) Create(ctx context.Context, session domain.Session) error {
	tags, pauses, err := encodeSessionLists(session)
	if err != nil {
		return err
	}
	_, err = s.q(ctx).ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Description,
		tags,
		session.Project,
		session.StartedAt.UTC().Format(timeLayout),
		encodeStoppedAt(session.StoppedAt),
		pauses,
		string(session.State),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Update rewrites every mutable column. StartedAt is deliberately not in
// the SET list; it is immutable after Create.
func (s *SQLiteStore) Update(ctx context.Context, session domain.Session) error {
	tags, pauses, err := encodeSessionLists(session)
	if err != nil {
		return err
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE sessions SET description = ?, tags = ?, project = ?, stopped_at = ?, pauses = ?, state = ? WHERE id = ?`,
		session.Description,
		tags,
		session.Project,
		encodeStoppedAt(session.StoppedAt),
		pauses,
		string(session.State),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetActive(ctx context.Context) (domain.Session, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE state != ? LIMIT 1`,
		string(domain.StateStopped),
	)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load active session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return session, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter domain.Filter) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var conds []string
	var args []any
	if filter.From != nil {
		conds = append(conds, "started_at >= ?")
		args = append(args, filter.From.UTC().Format(timeLayout))
	}
	if filter.To != nil {
		conds = append(conds, "started_at <= ?")
		args = append(args, filter.To.UTC().Format(timeLayout))
	}
	if filter.Project != "" {
		conds = append(conds, "project = ?")
		args = append(args, filter.Project)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY started_at ASC"

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if !filter.Matches(session) {
			continue
		}
		sessions = append(sessions, session)
		if filter.Limit > 0 && len(sessions) == filter.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (domain.Session, error) {
	var (
		session    domain.Session
		tagsRaw    string
		pausesRaw  string
		startedRaw string
		stoppedRaw sql.NullString
		state      string
	)
	if err := r.Scan(&session.ID, &session.Description, &tagsRaw, &session.Project, &startedRaw, &stoppedRaw, &pausesRaw, &state); err != nil {
		return domain.Session{}, err
	}
	started, err := time.Parse(timeLayout, startedRaw)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	session.StartedAt = started
	if stoppedRaw.Valid {
		stopped, err := time.Parse(timeLayout, stoppedRaw.String)
		if err != nil {
			return domain.Session{}, fmt.Errorf("parse stopped_at: %w", err)
		}
		session.StoppedAt = &stopped
	}
	if err := json.Unmarshal([]byte(tagsRaw), &session.Tags); err != nil {
		return domain.Session{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(pausesRaw), &session.Pauses); err != nil {
		return domain.Session{}, fmt.Errorf("decode pauses: %w", err)
	}
	session.State = domain.State(state)
	return session, nil
}

func encodeSessionLists(session domain.Session) (tags, pauses string, err error) {
	tagsRaw, err := json.Marshal(session.Tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	pausesRaw, err := json.Marshal(session.Pauses)
	if err != nil {
		return "", "", fmt.Errorf("encode pauses: %w", err)
	}
	return string(tagsRaw), string(pausesRaw), nil
}

func encodeStoppedAt(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
