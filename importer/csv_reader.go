package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

type CSVReader struct{}

func (r *CSVReader) Read(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(headers) > 0 {
		// Spreadsheet tools commonly prepend a UTF-8 BOM when exporting.
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	normalizedHeaders := make([]string, len(headers))
	for i, header := range headers {
		normalizedHeaders[i] = normalizeHeader(header)
	}

	records := make([]Record, 0, 128)
	rowNumber := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber, err)
		}
		// Blank filler rows from hand-edited exports are dropped here; row
		// numbers still count them so audit findings match the source file.
		if isBlankRow(row) {
			continue
		}

		records = append(records, Record{RowNumber: rowNumber, Values: rowValues(normalizedHeaders, row)})
	}

	return records, nil
}

func rowValues(normalizedHeaders, row []string) map[string]string {
	values := make(map[string]string, len(normalizedHeaders))
	for i, header := range normalizedHeaders {
		if i < len(row) {
			values[header] = row[i]
		} else {
			values[header] = ""
		}
	}
	return values
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
