package importer

import (
	"fmt"
	"strings"
)

// Reader loads raw rows from one timesheet export file. Implementations
// normalize headers so downstream lookups are spacing- and case-insensitive.
type Reader interface {
	Read(path string) ([]Record, error)
}

// ReaderForFormat returns the reader for a timesheet export format.
// Accepted values: "csv", "excel", or an Excel extension alias.
func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm", "xls":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}
