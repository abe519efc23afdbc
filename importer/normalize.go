package importer

import (
	"errors"
	"fmt"
	"strings"

	"breakaudit/internal/timeutil"
	"breakaudit/timesheet"
)

// Required input columns. DateTimeFrom/DateTimeTo are optional; when present
// they enable interval-based audit rules.
var requiredColumns = []string{
	"ProviderId",
	"ProviderFirstName",
	"ProviderLastName",
	"DateOfService",
	"TimeWorkedInHours",
	"ProcedureCode",
}

// ErrNoValidRows is returned when the input has no rows at all, or when
// every row was rejected.
var ErrNoValidRows = errors.New("no valid rows in input")

// MissingColumnError is the batch-level fatal error for absent required
// columns, raised before any per-row processing.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Reject records one row excluded from aggregation, with the reason. Rejects
// are surfaced as audit findings, not fatal errors.
type Reject struct {
	RowNumber int
	Reason    string
}

// Result is the outcome of normalizing one batch of raw records.
type Result struct {
	Entries  []timesheet.Entry
	Rejects  []Reject
	RowsRead int
}

// Normalize validates the batch column set, then coerces each raw record
// into a typed timesheet entry. Rows with unparsable values are rejected
// individually; the batch fails only when no row survives.
func Normalize(records []Record, markers timesheet.Markers) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("input is empty: %w", ErrNoValidRows)
	}

	if err := checkColumns(records[0]); err != nil {
		return nil, err
	}

	result := &Result{
		Entries:  make([]timesheet.Entry, 0, len(records)),
		RowsRead: len(records),
	}

	for _, record := range records {
		entry, err := normalizeRecord(record, markers)
		if err != nil {
			result.Rejects = append(result.Rejects, Reject{
				RowNumber: record.RowNumber,
				Reason:    err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("all %d rows were rejected: %w", len(records), ErrNoValidRows)
	}

	return result, nil
}

func checkColumns(first Record) error {
	missing := make([]string, 0, len(requiredColumns))
	for _, column := range requiredColumns {
		if !first.Has(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

func normalizeRecord(record Record, markers timesheet.Markers) (timesheet.Entry, error) {
	providerID := record.Get("ProviderId")
	if providerID == "" {
		return timesheet.Entry{}, fmt.Errorf("missing provider id")
	}

	serviceDate, err := parseServiceDate(record.Get("DateOfService"))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("date of service: %w", err)
	}

	hours, err := parseHours(record.Get("TimeWorkedInHours"))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("time worked: %w", err)
	}

	start, err := parseIntervalTime(record.Get("DateTimeFrom"))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("datetime from: %w", err)
	}

	end, err := parseIntervalTime(record.Get("DateTimeTo"))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("datetime to: %w", err)
	}

	procedureCode := record.Get("ProcedureCode")

	return timesheet.Entry{
		RowNumber:     record.RowNumber,
		ProviderID:    providerID,
		FirstName:     record.Get("ProviderFirstName"),
		LastName:      record.Get("ProviderLastName"),
		DateOfService: timeutil.DateOnly(serviceDate),
		Start:         start,
		End:           end,
		HoursWorked:   hours,
		ProcedureCode: procedureCode,
		Kind:          timesheet.Classify(procedureCode, markers),
	}, nil
}
