package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"breakaudit/timesheet"
)

// Run reads and normalizes one or more timesheet files. When format is
// empty it is inferred per file from the extension.
func Run(paths []string, format string, markers timesheet.Markers) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	merged := &Result{Entries: make([]timesheet.Entry, 0, 256)}
	for _, path := range paths {
		sourceFormat, err := inferFormat(path, format)
		if err != nil {
			return nil, err
		}

		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		result, err := Normalize(records, markers)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", path, err)
		}

		merged.RowsRead += result.RowsRead
		merged.Entries = append(merged.Entries, result.Entries...)
		merged.Rejects = append(merged.Rejects, result.Rejects...)
	}

	return merged, nil
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm", "xls":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}
