package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	queries
	db *sql.DB
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries carries every Repository method over a dbtx, so the same code
// serves the root connection and open transactions.
type queries struct {
	q dbtx
}

// NewSQLite creates a new SQLite-backed store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{queries: queries{q: db}, db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		hashed_phone_number TEXT PRIMARY KEY,
		first_interaction INTEGER NOT NULL,
		race_ethnicity TEXT,
		multiracial1 TEXT,
		multiracial2 TEXT,
		gender TEXT,
		gender_other TEXT,
		age_group TEXT,
		opt_in INTEGER NOT NULL DEFAULT 0,
		opt_in_time INTEGER
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		hashed_phone_number TEXT NOT NULL REFERENCES users(hashed_phone_number),
		state TEXT NOT NULL,
		last_interaction INTEGER NOT NULL,
		resource_category TEXT,
		page_number INTEGER NOT NULL DEFAULT 0,
		helpline_program TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_last ON sessions(hashed_phone_number, last_interaction DESC);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		hashed_phone_number TEXT NOT NULL,
		type TEXT NOT NULL,
		chatbot_service TEXT,
		resource_category TEXT,
		helpline_program TEXT,
		page_number INTEGER,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_user_time ON events(hashed_phone_number, timestamp);

	CREATE TABLE IF NOT EXISTS alert_subscribers (
		id TEXT PRIMARY KEY,
		phone_number TEXT NOT NULL UNIQUE,
		total_alerts INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		number_of_users_sent INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InTx runs fn inside a single transaction.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(Repository) error) error {
	// The busy_timeout in the DSN absorbs most lock contention; commits that
	// still lose the race are retried a few times before giving up.
	var err error
	for attempt := 0; attempt < txRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	return err
}

const txRetries = 3

func (s *SQLiteStore) runTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetUser retrieves a user by hashed phone number.
func (r *queries) GetUser(ctx context.Context, hashedPhoneNumber string) (*domain.User, error) {
	query := `
		SELECT hashed_phone_number, first_interaction, race_ethnicity, multiracial1,
		       multiracial2, gender, gender_other, age_group, opt_in, opt_in_time
		FROM users WHERE hashed_phone_number = ?`

	row := r.q.QueryRowContext(ctx, query, hashedPhoneNumber)

	var user domain.User
	var race, multi1, multi2, gender, genderOther, ageGroup sql.NullString
	var firstInteraction int64
	var optInTime sql.NullInt64

	err := row.Scan(
		&user.HashedPhoneNumber, &firstInteraction, &race, &multi1,
		&multi2, &gender, &genderOther, &ageGroup, &user.OptIn, &optInTime,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.FirstInteraction = time.Unix(firstInteraction, 0)
	user.RaceEthnicity = race.String
	user.Multiracial1 = multi1.String
	user.Multiracial2 = multi2.String
	user.Gender = gender.String
	user.GenderOther = genderOther.String
	user.AgeGroup = ageGroup.String
	if optInTime.Valid {
		user.OptInTime = time.Unix(optInTime.Int64, 0)
	}

	return &user, nil
}

// CreateUser inserts a new user record.
func (r *queries) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (hashed_phone_number, first_interaction, opt_in)
		VALUES (?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		user.HashedPhoneNumber, user.FirstInteraction.Unix(), user.OptIn)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateUser persists the mutable demographic and opt-in fields.
func (r *queries) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			race_ethnicity = ?, multiracial1 = ?, multiracial2 = ?,
			gender = ?, gender_other = ?, age_group = ?, opt_in = ?, opt_in_time = ?
		WHERE hashed_phone_number = ?`

	var optInTime any
	if !user.OptInTime.IsZero() {
		optInTime = user.OptInTime.Unix()
	}

	result, err := r.q.ExecContext(ctx, query,
		nullable(user.RaceEthnicity), nullable(user.Multiracial1), nullable(user.Multiracial2),
		nullable(user.Gender), nullable(user.GenderOther), nullable(user.AgeGroup),
		user.OptIn, optInTime, user.HashedPhoneNumber)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s not found", user.HashedPhoneNumber)
	}
	return nil
}

// LatestSession returns the user's most recent session.
func (r *queries) LatestSession(ctx context.Context, hashedPhoneNumber string) (*domain.Session, error) {
	query := `
		SELECT id, hashed_phone_number, state, last_interaction,
		       resource_category, page_number, helpline_program
		FROM sessions WHERE hashed_phone_number = ?
		ORDER BY last_interaction DESC, rowid DESC LIMIT 1`

	return scanSession(r.q.QueryRowContext(ctx, query, hashedPhoneNumber))
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var session domain.Session
	var state string
	var lastInteraction int64
	var category, helpline sql.NullString

	err := row.Scan(
		&session.ID, &session.HashedPhoneNumber, &state, &lastInteraction,
		&category, &session.PageNumber, &helpline,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.State = domain.State(state)
	session.LastInteraction = time.Unix(lastInteraction, 0)
	session.ResourceCategory = category.String
	session.HelplineProgram = helpline.String
	return &session, nil
}

// CreateSession inserts a new session row.
func (r *queries) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, hashed_phone_number, state, last_interaction,
		                      resource_category, page_number, helpline_program)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		session.ID, session.HashedPhoneNumber, string(session.State),
		session.LastInteraction.Unix(), nullable(session.ResourceCategory),
		session.PageNumber, nullable(session.HelplineProgram))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateSession persists the session's state and scratch fields.
func (r *queries) UpdateSession(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE sessions SET
			state = ?, last_interaction = ?, resource_category = ?,
			page_number = ?, helpline_program = ?
		WHERE id = ?`

	result, err := r.q.ExecContext(ctx, query,
		string(session.State), session.LastInteraction.Unix(),
		nullable(session.ResourceCategory), session.PageNumber,
		nullable(session.HelplineProgram), session.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %s not found", session.ID)
	}
	return nil
}

// TouchSession refreshes a session's last_interaction timestamp.
func (r *queries) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	query := `UPDATE sessions SET last_interaction = ? WHERE id = ?`
	if _, err := r.q.ExecContext(ctx, query, at.Unix(), sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// AppendEvent inserts one immutable audit event.
func (r *queries) AppendEvent(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, session_id, hashed_phone_number, type, chatbot_service,
		                    resource_category, helpline_program, page_number, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var pageNumber any
	if event.PageNumber != nil {
		pageNumber = *event.PageNumber
	}

	_, err := r.q.ExecContext(ctx, query,
		event.ID, nullable(event.SessionID), event.HashedPhoneNumber, string(event.Type),
		nullable(event.ChatbotService), nullable(event.ResourceCategory),
		nullable(event.HelplineProgram), pageNumber, event.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetAlertSubscriber looks up a subscriber by raw phone number.
func (r *queries) GetAlertSubscriber(ctx context.Context, phoneNumber string) (*domain.AlertSubscriber, error) {
	query := `
		SELECT id, phone_number, total_alerts, created_at
		FROM alert_subscribers WHERE phone_number = ?`

	row := r.q.QueryRowContext(ctx, query, phoneNumber)

	var sub domain.AlertSubscriber
	var createdAt int64
	err := row.Scan(&sub.ID, &sub.PhoneNumber, &sub.TotalAlerts, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert subscriber row: %w", err)
	}

	sub.CreatedAt = time.Unix(createdAt, 0)
	return &sub, nil
}

// CreateAlertSubscriber subscribes a raw phone number.
func (r *queries) CreateAlertSubscriber(ctx context.Context, subscriber *domain.AlertSubscriber) error {
	query := `
		INSERT INTO alert_subscribers (id, phone_number, total_alerts, created_at)
		VALUES (?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		subscriber.ID, subscriber.PhoneNumber, subscriber.TotalAlerts,
		subscriber.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert alert subscriber: %w", err)
	}
	return nil
}

// DeleteAlertSubscriber unsubscribes a raw phone number.
func (r *queries) DeleteAlertSubscriber(ctx context.Context, phoneNumber string) error {
	query := `DELETE FROM alert_subscribers WHERE phone_number = ?`
	if _, err := r.q.ExecContext(ctx, query, phoneNumber); err != nil {
		return fmt.Errorf("delete alert subscriber: %w", err)
	}
	return nil
}

// ListAlertSubscribers returns every current subscriber.
func (r *queries) ListAlertSubscribers(ctx context.Context) ([]*domain.AlertSubscriber, error) {
	query := `SELECT id, phone_number, total_alerts, created_at FROM alert_subscribers ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query alert subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []*domain.AlertSubscriber
	for rows.Next() {
		var sub domain.AlertSubscriber
		var createdAt int64
		if err := rows.Scan(&sub.ID, &sub.PhoneNumber, &sub.TotalAlerts, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert subscriber row: %w", err)
		}
		sub.CreatedAt = time.Unix(createdAt, 0)
		subscribers = append(subscribers, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert subscribers: %w", err)
	}
	return subscribers, nil
}

// IncrementAlertCount bumps a subscriber's received-alert counter.
func (r *queries) IncrementAlertCount(ctx context.Context, subscriberID string) error {
	query := `UPDATE alert_subscribers SET total_alerts = total_alerts + 1 WHERE id = ?`
	result, err := r.q.ExecContext(ctx, query, subscriberID)
	if err != nil {
		return fmt.Errorf("increment alert count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert subscriber %s not found", subscriberID)
	}
	return nil
}

// CreateAlert records one broadcast.
func (r *queries) CreateAlert(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (id, message, timestamp, number_of_users_sent)
		VALUES (?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		alert.ID, alert.Message, alert.Timestamp.Unix(), alert.NumberOfUsersSent)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// LatestAlert returns the most recent broadcast by timestamp.
func (r *queries) LatestAlert(ctx context.Context) (*domain.Alert, error) {
	query := `
		SELECT id, message, timestamp, number_of_users_sent
		FROM alerts ORDER BY timestamp DESC, rowid DESC LIMIT 1`

	row := r.q.QueryRowContext(ctx, query)

	var alert domain.Alert
	var timestamp int64
	err := row.Scan(&alert.ID, &alert.Message, &timestamp, &alert.NumberOfUsersSent)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert row: %w", err)
	}

	alert.Timestamp = time.Unix(timestamp, 0)
	return &alert, nil
}

// nullable maps empty strings onto NULL columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
