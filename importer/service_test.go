package importer

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `ProviderId,ProviderFirstName,ProviderLastName,DateOfService,TimeWorkedInHours,ProcedureCode,DateTimeFrom,DateTimeTo
P001,Dana,Reyes,03/05/2026,8,Regular Time,03/05/2026 08:00,03/05/2026 16:00
P001,Dana,Reyes,03/05/2026,0.1667,10 Minute Break,,
P002,Omar,Khan,03/05/2026,bad-hours,Regular Time,,
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timesheet.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestRun_ReadsAndNormalizesCSV(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, sampleCSV)

	result, err := Run([]string{path}, "", testMarkers)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.RowsRead != 3 {
		t.Fatalf("expected 3 rows read, got %d", result.RowsRead)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if len(result.Rejects) != 1 {
		t.Fatalf("expected 1 reject, got %d", len(result.Rejects))
	}
	if result.Rejects[0].RowNumber != 4 {
		t.Fatalf("expected reject on row 4, got %d", result.Rejects[0].RowNumber)
	}
}

func TestRun_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	if _, err := Run([]string{"timesheet.pdf"}, "", testMarkers); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestRun_NoInputs(t *testing.T) {
	t.Parallel()

	if _, err := Run(nil, "csv", testMarkers); err == nil {
		t.Fatal("expected error for empty input list")
	}
}

func TestReaderForFormat(t *testing.T) {
	t.Parallel()

	if _, err := ReaderForFormat("csv"); err != nil {
		t.Fatalf("csv reader: %v", err)
	}
	if _, err := ReaderForFormat("xlsx"); err != nil {
		t.Fatalf("excel reader: %v", err)
	}
	if _, err := ReaderForFormat("parquet"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
