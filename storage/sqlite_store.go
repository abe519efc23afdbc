package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUploadNotFound = errors.New("upload not found")
)

// User is an account that can sign in to the upload UI.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	IsActive     bool
}

// Upload records one processed timesheet file and where its outputs live.
type Upload struct {
	ID               string
	UserID           int64
	OriginalFilename string
	UploadPath       string
	DailyPath        string
	SummaryPath      string
	ProviderDatePath string
	AuditPath        string
	Processed        bool
	TotalRecords     int
	TotalProviders   int
	RejectedRows     int
	DateRange        string
	AuditIssues      int
	CreatedAt        time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	original_filename TEXT NOT NULL,
	upload_path TEXT NOT NULL,
	daily_path TEXT NOT NULL DEFAULT '',
	summary_path TEXT NOT NULL DEFAULT '',
	provider_date_path TEXT NOT NULL DEFAULT '',
	audit_path TEXT NOT NULL DEFAULT '',
	processed INTEGER NOT NULL DEFAULT 0,
	total_records INTEGER NOT NULL DEFAULT 0,
	total_providers INTEGER NOT NULL DEFAULT 0,
	rejected_rows INTEGER NOT NULL DEFAULT 0,
	date_range TEXT NOT NULL DEFAULT '',
	audit_issues INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// CreateUser inserts a new account and returns it with its assigned ID.
func (s *SQLiteStore) CreateUser(username, email, passwordHash, fullName string) (User, error) {
	const insertStmt = `
INSERT INTO users (username, email, password_hash, full_name, created_at, is_active)
VALUES (?, ?, ?, ?, ?, 1);`

	now := time.Now().UTC()
	res, err := s.db.Exec(insertStmt, username, email, passwordHash, fullName, now.Format(time.RFC3339))
	if err != nil {
		return User{}, fmt.Errorf("insert user %q: %w", username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("read inserted user id: %w", err)
	}

	return User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		CreatedAt:    now,
		IsActive:     true,
	}, nil
}

func (s *SQLiteStore) GetUserByUsername(username string) (User, error) {
	const query = `
SELECT id, username, email, password_hash, full_name, created_at, is_active
FROM users
WHERE username = ?;`

	return s.scanUser(s.db.QueryRow(query, username))
}

func (s *SQLiteStore) GetUserByID(id int64) (User, error) {
	const query = `
SELECT id, username, email, password_hash, full_name, created_at, is_active
FROM users
WHERE id = ?;`

	return s.scanUser(s.db.QueryRow(query, id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (User, error) {
	var (
		user      User
		createdAt string
		isActive  int
	)

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName, &createdAt, &isActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return User{}, fmt.Errorf("parse user created_at %q: %w", createdAt, err)
	}
	user.IsActive = isActive != 0

	return user, nil
}

// CreateUpload records a received file before processing starts.
func (s *SQLiteStore) CreateUpload(id string, userID int64, originalFilename, uploadPath string) (Upload, error) {
	const insertStmt = `
INSERT INTO uploads (id, user_id, original_filename, upload_path, created_at)
VALUES (?, ?, ?, ?, ?);`

	now := time.Now().UTC()
	if _, err := s.db.Exec(insertStmt, id, userID, originalFilename, uploadPath, now.Format(time.RFC3339)); err != nil {
		return Upload{}, fmt.Errorf("insert upload %q: %w", id, err)
	}

	return Upload{
		ID:               id,
		UserID:           userID,
		OriginalFilename: originalFilename,
		UploadPath:       uploadPath,
		CreatedAt:        now,
	}, nil
}

// UpdateUploadResults marks an upload processed and stores its output paths
// and run summary figures.
func (s *SQLiteStore) UpdateUploadResults(upload Upload) error {
	const updateStmt = `
UPDATE uploads
SET daily_path = ?,
	summary_path = ?,
	provider_date_path = ?,
	audit_path = ?,
	processed = 1,
	total_records = ?,
	total_providers = ?,
	rejected_rows = ?,
	date_range = ?,
	audit_issues = ?
WHERE id = ?;`

	res, err := s.db.Exec(
		updateStmt,
		upload.DailyPath,
		upload.SummaryPath,
		upload.ProviderDatePath,
		upload.AuditPath,
		upload.TotalRecords,
		upload.TotalProviders,
		upload.RejectedRows,
		upload.DateRange,
		upload.AuditIssues,
		upload.ID,
	)
	if err != nil {
		return fmt.Errorf("update upload %q: %w", upload.ID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUploadNotFound
	}

	return nil
}

// GetUpload returns one upload by its ID.
func (s *SQLiteStore) GetUpload(id string) (Upload, error) {
	const query = uploadColumns + `
WHERE id = ?;`

	rows, err := s.db.Query(query, id)
	if err != nil {
		return Upload{}, fmt.Errorf("query upload %q: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Upload{}, fmt.Errorf("query upload %q: %w", id, err)
		}
		return Upload{}, ErrUploadNotFound
	}

	return scanUpload(rows)
}

// ListUploads returns a user's uploads, newest first.
func (s *SQLiteStore) ListUploads(userID int64) ([]Upload, error) {
	const query = uploadColumns + `
WHERE user_id = ?
ORDER BY created_at DESC, id;`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("query uploads for user %d: %w", userID, err)
	}
	defer rows.Close()

	uploads := make([]Upload, 0, 16)
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}

	return uploads, nil
}

// ListAllUploads returns every recorded upload, newest first.
func (s *SQLiteStore) ListAllUploads() ([]Upload, error) {
	const query = uploadColumns + `
ORDER BY created_at DESC, id;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]Upload, 0, 16)
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}

	return uploads, nil
}

const uploadColumns = `
SELECT
	id,
	user_id,
	original_filename,
	upload_path,
	daily_path,
	summary_path,
	provider_date_path,
	audit_path,
	processed,
	total_records,
	total_providers,
	rejected_rows,
	date_range,
	audit_issues,
	created_at
FROM uploads`

func scanUpload(rows *sql.Rows) (Upload, error) {
	var (
		upload    Upload
		processed int
		createdAt string
	)

	if err := rows.Scan(
		&upload.ID,
		&upload.UserID,
		&upload.OriginalFilename,
		&upload.UploadPath,
		&upload.DailyPath,
		&upload.SummaryPath,
		&upload.ProviderDatePath,
		&upload.AuditPath,
		&processed,
		&upload.TotalRecords,
		&upload.TotalProviders,
		&upload.RejectedRows,
		&upload.DateRange,
		&upload.AuditIssues,
		&createdAt,
	); err != nil {
		return Upload{}, fmt.Errorf("scan upload: %w", err)
	}

	upload.Processed = processed != 0

	var err error
	upload.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return Upload{}, fmt.Errorf("parse upload created_at %q: %w", createdAt, err)
	}

	return upload, nil
}

// parseStoredTime accepts both our RFC3339 writes and SQLite's
// CURRENT_TIMESTAMP default format.
func parseStoredTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
