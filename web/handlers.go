package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"breakaudit/process"
	"breakaudit/report"
	"breakaudit/storage"
)

const maxUploadBytes = 32 << 20

type uploadResponse struct {
	ID              string `json:"id"`
	OriginalFile    string `json:"originalFile"`
	TotalRecords    int    `json:"totalRecords"`
	TotalProviders  int    `json:"totalProviders"`
	RejectedRows    int    `json:"rejectedRows"`
	DateRange       string `json:"dateRange"`
	AuditIssueCount int    `json:"auditIssueCount"`
}

type uploadListItem struct {
	ID              string `json:"id"`
	OriginalFile    string `json:"originalFile"`
	Processed       bool   `json:"processed"`
	TotalRecords    int    `json:"totalRecords"`
	TotalProviders  int    `json:"totalProviders"`
	RejectedRows    int    `json:"rejectedRows"`
	DateRange       string `json:"dateRange"`
	AuditIssueCount int    `json:"auditIssueCount"`
	CreatedAt       string `json:"createdAt"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		http.Error(w, "unsupported file type (expected .csv or .xlsx)", http.StatusBadRequest)
		return
	}

	uploadID := uuid.NewString()
	uploadPath := filepath.Join(s.cfg.Storage.UploadDir, uploadID+ext)
	if err := saveUpload(uploadPath, file); err != nil {
		http.Error(w, fmt.Sprintf("save upload: %v", err), http.StatusInternalServerError)
		return
	}

	record, err := s.store.CreateUpload(uploadID, userID, header.Filename, uploadPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("record upload: %v", err), http.StatusInternalServerError)
		return
	}

	result, err := process.RunFile(uploadPath, "", s.cfg)
	if err != nil {
		s.logger.Warn("upload processing failed",
			zap.String("upload", uploadID),
			zap.Error(err),
		)
		http.Error(w, fmt.Sprintf("process timesheet: %v", err), http.StatusUnprocessableEntity)
		return
	}

	if err := os.MkdirAll(s.cfg.Storage.OutputDir, 0o755); err != nil {
		http.Error(w, fmt.Sprintf("create output dir: %v", err), http.StatusInternalServerError)
		return
	}

	outputPaths := make(map[string]string, 4)
	for _, table := range result.Tables() {
		path := filepath.Join(s.cfg.Storage.OutputDir, uploadID+"-"+table.Name+".csv")
		if err := report.WriteCSV(path, table); err != nil {
			http.Error(w, fmt.Sprintf("write %s view: %v", table.Name, err), http.StatusInternalServerError)
			return
		}
		outputPaths[table.Name] = path
	}

	record.DailyPath = outputPaths[report.ViewDaily]
	record.SummaryPath = outputPaths[report.ViewProviderSummary]
	record.ProviderDatePath = outputPaths[report.ViewProviderDate]
	record.AuditPath = outputPaths[report.ViewAudit]
	record.TotalRecords = result.Summary.TotalRecords
	record.TotalProviders = result.Summary.TotalProviders
	record.RejectedRows = result.Summary.RejectedRows
	record.DateRange = result.Summary.DateRange
	record.AuditIssues = result.Summary.AuditIssueCount

	if err := s.store.UpdateUploadResults(record); err != nil {
		http.Error(w, fmt.Sprintf("store upload results: %v", err), http.StatusInternalServerError)
		return
	}

	s.logger.Info("upload processed",
		zap.String("upload", uploadID),
		zap.Int("records", result.Summary.TotalRecords),
		zap.Int("auditIssues", result.Summary.AuditIssueCount),
	)

	writeJSON(w, http.StatusOK, uploadResponse{
		ID:              uploadID,
		OriginalFile:    header.Filename,
		TotalRecords:    result.Summary.TotalRecords,
		TotalProviders:  result.Summary.TotalProviders,
		RejectedRows:    result.Summary.RejectedRows,
		DateRange:       result.Summary.DateRange,
		AuditIssueCount: result.Summary.AuditIssueCount,
	})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	uploads, err := s.store.ListUploads(userID)
	if err != nil {
		http.Error(w, fmt.Sprintf("list uploads: %v", err), http.StatusInternalServerError)
		return
	}

	items := make([]uploadListItem, 0, len(uploads))
	for _, upload := range uploads {
		items = append(items, uploadToListItem(upload))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.ownedUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, uploadToListItem(upload))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.ownedUpload(w, r)
	if !ok {
		return
	}
	if !upload.Processed {
		http.Error(w, "upload has not finished processing", http.StatusConflict)
		return
	}

	var path string
	view := chi.URLParam(r, "view")
	switch view {
	case report.ViewDaily:
		path = upload.DailyPath
	case report.ViewProviderSummary:
		path = upload.SummaryPath
	case report.ViewProviderDate:
		path = upload.ProviderDatePath
	case report.ViewAudit:
		path = upload.AuditPath
	default:
		http.Error(w, "unknown report view", http.StatusNotFound)
		return
	}

	filename := strings.TrimSuffix(upload.OriginalFilename, filepath.Ext(upload.OriginalFilename)) + "-" + view + ".csv"
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "text/csv")
	http.ServeFile(w, r, path)
}

// handleTemplate serves a blank input file with the expected column headers
// and one sample row.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	const template = `ProviderId,ProviderFirstName,ProviderLastName,DateOfService,TimeWorkedInHours,ProcedureCode,DateTimeFrom,DateTimeTo
P001,Jane,Doe,03/05/2026,8,Regular Time,03/05/2026 08:00,03/05/2026 16:00
`
	w.Header().Set("Content-Disposition", `attachment; filename="timesheet-template.csv"`)
	w.Header().Set("Content-Type", "text/csv")
	_, _ = io.WriteString(w, template)
}

func (s *Server) ownedUpload(w http.ResponseWriter, r *http.Request) (storage.Upload, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return storage.Upload{}, false
	}

	upload, err := s.store.GetUpload(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrUploadNotFound) {
			http.Error(w, "upload not found", http.StatusNotFound)
			return storage.Upload{}, false
		}
		http.Error(w, fmt.Sprintf("get upload: %v", err), http.StatusInternalServerError)
		return storage.Upload{}, false
	}
	if upload.UserID != userID {
		http.Error(w, "upload not found", http.StatusNotFound)
		return storage.Upload{}, false
	}

	return upload, true
}

func uploadToListItem(upload storage.Upload) uploadListItem {
	return uploadListItem{
		ID:              upload.ID,
		OriginalFile:    upload.OriginalFilename,
		Processed:       upload.Processed,
		TotalRecords:    upload.TotalRecords,
		TotalProviders:  upload.TotalProviders,
		RejectedRows:    upload.RejectedRows,
		DateRange:       upload.DateRange,
		AuditIssueCount: upload.AuditIssues,
		CreatedAt:       upload.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("write upload file: %w", err)
	}
	return dst.Close()
}
