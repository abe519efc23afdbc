package report

import (
	"fmt"
	"strings"
)

// Write renders a table in the requested output format.
func Write(path, format string, table Table) error {
	switch normalizeFormat(format) {
	case "csv":
		return WriteCSV(path, table)
	case "excel", "xlsx":
		return WriteExcel(path, table)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
