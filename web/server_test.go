package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"breakaudit/config"
	"breakaudit/storage"
)

const uploadCSV = `ProviderId,ProviderFirstName,ProviderLastName,DateOfService,TimeWorkedInHours,ProcedureCode,DateTimeFrom,DateTimeTo
P001,Dana,Reyes,03/05/2026,8,Regular Time,03/05/2026 08:00,03/05/2026 16:00
P001,Dana,Reyes,03/05/2026,0.1667,10 Minute Break,,
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := config.ValidateYAMLContent([]byte(config.ExampleYAML()))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	dir := t.TempDir()
	cfg.Storage.DBPath = filepath.Join(dir, "test.db")
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	cfg.Storage.OutputDir = filepath.Join(dir, "output")

	store, err := storage.OpenSQLite(cfg.Storage.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	server := httptest.NewServer(NewServer(store, *cfg, zap.NewNop()))
	t.Cleanup(server.Close)
	return server
}

func registerAndLogin(t *testing.T, server *httptest.Server, username string) *http.Cookie {
	t.Helper()

	registerBody := fmt.Sprintf(
		`{"username":%q,"email":%q,"password":"hunter2secure","fullName":"Test User"}`,
		username, username+"@example.com",
	)
	resp, err := http.Post(server.URL+"/api/register", "application/json", strings.NewReader(registerBody))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}

	loginBody := fmt.Sprintf(`{"username":%q,"password":"hunter2secure"}`, username)
	resp, err = http.Post(server.URL+"/api/login", "application/json", strings.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatal("login response has no session cookie")
	return nil
}

func uploadFile(t *testing.T, server *httptest.Server, cookie *http.Cookie, filename, content string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/upload", &body)
	if err != nil {
		t.Fatalf("build upload request: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resp
}

func TestServer_UploadAndDownloadFlow(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	cookie := registerAndLogin(t, server, "dana")

	resp := uploadFile(t, server, cookie, "march.csv", uploadCSV)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status %d", resp.StatusCode)
	}

	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if upload.TotalRecords != 2 || upload.TotalProviders != 1 {
		t.Fatalf("unexpected upload response: %+v", upload)
	}
	if upload.DateRange != "03/05/2026 to 03/05/2026" {
		t.Fatalf("unexpected date range %q", upload.DateRange)
	}

	// History shows the processed upload.
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/uploads", nil)
	req.AddCookie(cookie)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	defer listResp.Body.Close()

	var items []uploadListItem
	if err := json.NewDecoder(listResp.Body).Decode(&items); err != nil {
		t.Fatalf("decode upload list: %v", err)
	}
	if len(items) != 1 || !items[0].Processed || items[0].ID != upload.ID {
		t.Fatalf("unexpected upload list: %+v", items)
	}

	// The daily view downloads as CSV with the expected header.
	req, _ = http.NewRequest(http.MethodGet, server.URL+"/api/download/daily/"+upload.ID, nil)
	req.AddCookie(cookie)
	dlResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("download daily view: %v", err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != http.StatusOK {
		t.Fatalf("download status %d", dlResp.StatusCode)
	}

	rows, err := csv.NewReader(dlResp.Body).ReadAll()
	if err != nil {
		t.Fatalf("read downloaded csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 daily row, got %d rows", len(rows))
	}
	if rows[0][0] != "ProviderId" {
		t.Fatalf("unexpected download header: %v", rows[0])
	}
}

func TestServer_UploadRequiresSession(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/upload", "multipart/form-data", strings.NewReader(""))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestServer_UploadRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	cookie := registerAndLogin(t, server, "omar")

	resp := uploadFile(t, server, cookie, "notes.txt", "not a timesheet")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for .txt upload, got %d", resp.StatusCode)
	}
}

func TestServer_LoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	registerAndLogin(t, server, "lee")

	resp, err := http.Post(server.URL+"/api/login", "application/json",
		strings.NewReader(`{"username":"lee","password":"wrong-password"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestServer_UploadsAreScopedToOwner(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	owner := registerAndLogin(t, server, "owner")
	other := registerAndLogin(t, server, "other")

	resp := uploadFile(t, server, owner, "march.csv", uploadCSV)
	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/uploads/"+upload.ID, nil)
	req.AddCookie(other)
	otherResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get upload as other user: %v", err)
	}
	otherResp.Body.Close()
	if otherResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign upload, got %d", otherResp.StatusCode)
	}
}

func TestServer_TemplateDownload(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/template")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("template status %d", resp.StatusCode)
	}

	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if rows[0][0] != "ProviderId" || rows[0][5] != "ProcedureCode" {
		t.Fatalf("unexpected template header: %v", rows[0])
	}
}
