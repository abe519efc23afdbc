package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "breakaudit_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_UserRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	created, err := store.CreateUser("dana", "dana@example.com", "hashed", "Dana Reyes")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected assigned user id, got %d", created.ID)
	}

	byName, err := store.GetUserByUsername("dana")
	if err != nil {
		t.Fatalf("get user by username: %v", err)
	}
	if byName.ID != created.ID || byName.Email != "dana@example.com" || !byName.IsActive {
		t.Fatalf("unexpected user: %+v", byName)
	}

	byID, err := store.GetUserByID(created.ID)
	if err != nil {
		t.Fatalf("get user by id: %v", err)
	}
	if byID.Username != "dana" || byID.PasswordHash != "hashed" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	if _, err := store.GetUserByUsername("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSQLiteStore_DuplicateUsernameRejected(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, err := store.CreateUser("dana", "dana@example.com", "h", "Dana Reyes"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateUser("dana", "other@example.com", "h", "Other Dana"); err == nil {
		t.Fatal("expected unique constraint violation for duplicate username")
	}
}

func TestSQLiteStore_UploadLifecycle(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	user, err := store.CreateUser("omar", "omar@example.com", "h", "Omar Khan")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	created, err := store.CreateUpload("u-001", user.ID, "march.csv", "/data/uploads/u-001.csv")
	if err != nil {
		t.Fatalf("create upload: %v", err)
	}
	if created.Processed {
		t.Fatal("new upload must start unprocessed")
	}

	created.DailyPath = "/data/outputs/u-001-daily.csv"
	created.SummaryPath = "/data/outputs/u-001-summary.csv"
	created.ProviderDatePath = "/data/outputs/u-001-provider-date.csv"
	created.AuditPath = "/data/outputs/u-001-audit.csv"
	created.TotalRecords = 42
	created.TotalProviders = 3
	created.RejectedRows = 1
	created.DateRange = "03/01/2026 to 03/31/2026"
	created.AuditIssues = 4

	if err := store.UpdateUploadResults(created); err != nil {
		t.Fatalf("update upload results: %v", err)
	}

	fetched, err := store.GetUpload("u-001")
	if err != nil {
		t.Fatalf("get upload: %v", err)
	}
	if !fetched.Processed {
		t.Fatal("expected upload marked processed")
	}
	if fetched.TotalRecords != 42 || fetched.AuditIssues != 4 || fetched.DateRange != "03/01/2026 to 03/31/2026" {
		t.Fatalf("unexpected upload: %+v", fetched)
	}
	if fetched.DailyPath != created.DailyPath || fetched.AuditPath != created.AuditPath {
		t.Fatalf("output paths not stored: %+v", fetched)
	}

	listed, err := store.ListUploads(user.ID)
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "u-001" {
		t.Fatalf("unexpected upload list: %+v", listed)
	}
}

func TestSQLiteStore_UploadNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, err := store.GetUpload("missing"); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
	if err := store.UpdateUploadResults(Upload{ID: "missing"}); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound on update, got %v", err)
	}
}
