package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"plenum/internal/config"
)

// Store manages session catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.CacheDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

// NewSession inserts a record for a newly discovered session.
func (s *Store) NewSession(ctx context.Context, key string, period, number int, mediaFile, proceedingsFile string) (*Session, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            session_key, period, number, status, media_file, proceedings_file,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		period,
		number,
		StatusPending,
		nullableString(mediaFile),
		nullableString(proceedingsFile),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a session record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	record, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return record, nil
}

// GetByKey fetches a session record by its session key.
func (s *Store) GetByKey(ctx context.Context, key string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_key = ?`, key)
	record, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by key: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing session record.
func (s *Store) Update(ctx context.Context, record *Session) error {
	if record == nil {
		return errors.New("session is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions
         SET session_key = ?, period = ?, number = ?, status = ?,
             media_file = ?, proceedings_file = ?, merged_file = ?, linked_file = ?,
             aligned_file = ?, extracted_file = ?, final_file = ?, error_message = ?,
             progress_stage = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		record.SessionKey,
		record.Period,
		record.Number,
		record.Status,
		nullableString(record.MediaFile),
		nullableString(record.ProceedingsFile),
		nullableString(record.MergedFile),
		nullableString(record.LinkedFile),
		nullableString(record.AlignedFile),
		nullableString(record.ExtractedFile),
		nullableString(record.FinalFile),
		nullableString(record.ErrorMessage),
		nullableString(record.ProgressStage),
		nullableString(record.ProgressMessage),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// List returns sessions filtered by status set (or all sessions when no
// status is provided), ordered by session key.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Session, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + sessionColumns + ` FROM sessions`
	orderClause := ` ORDER BY session_key`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []*Session
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// NextForStatuses returns the lowest-keyed session matching any of the
// provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Session, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE status IN (` + placeholders + `) ORDER BY session_key LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	record, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ResetStuckProcessing returns sessions abandoned mid-stage to the state
// the preceding stage left them in.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	rollbacks := []struct {
		from Status
		to   Status
	}{
		{from: StatusMerging, to: StatusPending},
		{from: StatusLinking, to: StatusMerged},
		{from: StatusAligning, to: StatusLinked},
		{from: StatusExtracting, to: StatusAligned},
		{from: StatusPublishing, to: StatusExtracted},
	}

	var total int64
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for _, rollback := range rollbacks {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE sessions
             SET status = ?, progress_stage = 'Reset from stuck processing',
                 progress_message = NULL, updated_at = ?
             WHERE status = ?`,
			rollback.to,
			timestamp,
			rollback.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset stuck sessions: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// RetryFailed moves failed sessions back to pending for reprocessing.
func (s *Store) RetryFailed(ctx context.Context, keys ...string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if len(keys) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE sessions
            SET status = ?, progress_stage = 'Retry requested',
                progress_message = NULL, error_message = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			timestamp,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed sessions: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(keys))
	args := make([]any, 0, len(keys)+2)
	args = append(args, StatusPending, timestamp)
	for _, key := range keys {
		args = append(args, key)
	}
	query := `UPDATE sessions
        SET status = ?, progress_stage = 'Retry requested',
            progress_message = NULL, error_message = NULL, updated_at = ?
        WHERE session_key IN (` + placeholders + `) AND status = '` + string(StatusFailed) + `'`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected sessions: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of sessions grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates catalog state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusFailed:
			health.Failed += count
		case StatusCompleted:
			health.Completed += count
		default:
			if status.IsProcessing() {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// Remove deletes a session record by key.
func (s *Store) Remove(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all session records.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	return res.RowsAffected()
}

const sessionColumns = "id, session_key, period, number, status, media_file, proceedings_file, merged_file, linked_file, aligned_file, extracted_file, final_file, error_message, progress_stage, progress_message, created_at, updated_at"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id              int64
		sessionKey      string
		period          int
		number          int
		statusStr       string
		mediaFile       sql.NullString
		proceedings     sql.NullString
		mergedFile      sql.NullString
		linkedFile      sql.NullString
		alignedFile     sql.NullString
		extractedFile   sql.NullString
		finalFile       sql.NullString
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sessionKey,
		&period,
		&number,
		&statusStr,
		&mediaFile,
		&proceedings,
		&mergedFile,
		&linkedFile,
		&alignedFile,
		&extractedFile,
		&finalFile,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Session{
		ID:              id,
		SessionKey:      sessionKey,
		Period:          period,
		Number:          number,
		Status:          Status(statusStr),
		MediaFile:       mediaFile.String,
		ProceedingsFile: proceedings.String,
		MergedFile:      mergedFile.String,
		LinkedFile:      linkedFile.String,
		AlignedFile:     alignedFile.String,
		ExtractedFile:   extractedFile.String,
		FinalFile:       finalFile.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
