// Package report projects compliance records and audit findings into the
// four tabular output views. No new computation happens here beyond
// formatting and sorting.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"breakaudit/audit"
	"breakaudit/compliance"
	"breakaudit/internal/timeutil"
	"breakaudit/timesheet"
)

// View names, used as file-name stems and download keys.
const (
	ViewDaily           = "daily"
	ViewProviderSummary = "summary"
	ViewProviderDate    = "provider-date"
	ViewAudit           = "audit"
)

// Table is one report view: a fixed header row plus data rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// BuildDaily renders the per-day breakdown, sorted by provider then date.
func BuildDaily(records []compliance.Record) Table {
	sorted := sortRecords(records)

	table := Table{
		Name: ViewDaily,
		Headers: []string{
			"ProviderId", "ProviderFullName", "DateOfService", "TimeWorkedInHours",
			"RequiredBreakMinutes", "RequiredBreakHours", "ActualBreakMinutes", "BreakCompliance",
		},
	}
	for _, record := range sorted {
		table.Rows = append(table.Rows, []string{
			record.ProviderID,
			record.FullName,
			timeutil.FormatDate(record.Date),
			record.WorkHours.StringFixed(2),
			strconv.Itoa(record.RequiredBreakMinutes),
			fmt.Sprintf("%.2f", record.RequiredBreakHours()),
			strconv.FormatInt(record.ActualBreakMinutes, 10),
			record.Status(),
		})
	}
	return table
}

// BuildProviderSummary renders provider totals, sorted by deficit
// descending (worst offenders first) with provider id as tie-break.
func BuildProviderSummary(summaries []compliance.ProviderSummary) Table {
	table := Table{
		Name: ViewProviderSummary,
		Headers: []string{
			"ProviderId", "ProviderFullName", "TimeWorkedInHours",
			"RequiredBreakMinutes", "ActualBreakMinutes", "BreakDeficitMinutes", "OverallCompliance",
		},
	}
	for _, summary := range summaries {
		table.Rows = append(table.Rows, []string{
			summary.ProviderID,
			summary.FullName,
			summary.WorkHours.StringFixed(2),
			strconv.Itoa(summary.RequiredBreakMinutes),
			strconv.FormatInt(summary.ActualBreakMinutes, 10),
			strconv.FormatInt(summary.DeficitMinutes, 10),
			summary.Status(),
		})
	}
	return table
}

// BuildProviderDate renders the provider-date totals view.
func BuildProviderDate(records []compliance.Record) Table {
	sorted := sortRecords(records)

	table := Table{
		Name: ViewProviderDate,
		Headers: []string{
			"ProviderId", "ProviderFullName", "DateOfService", "TimeWorkedInHours",
			"RequiredBreakMinutes", "ActualBreakMinutes", "BreakCompliance",
		},
	}
	for _, record := range sorted {
		table.Rows = append(table.Rows, []string{
			record.ProviderID,
			record.FullName,
			timeutil.FormatDate(record.Date),
			record.WorkHours.StringFixed(2),
			strconv.Itoa(record.RequiredBreakMinutes),
			strconv.FormatInt(record.ActualBreakMinutes, 10),
			record.Status(),
		})
	}
	return table
}

// BuildAudit renders the findings view sorted by provider, date, then type.
func BuildAudit(findings []audit.Finding) Table {
	sorted := make([]audit.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ProviderID != sorted[j].ProviderID {
			return sorted[i].ProviderID < sorted[j].ProviderID
		}
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Type < sorted[j].Type
	})

	table := Table{
		Name:    ViewAudit,
		Headers: []string{"Type", "ProviderId", "ProviderName", "DateOfService", "Issue", "Severity"},
	}
	for _, finding := range sorted {
		table.Rows = append(table.Rows, []string{
			finding.Type,
			finding.ProviderID,
			finding.ProviderName,
			finding.Date,
			finding.Issue,
			string(finding.Severity),
		})
	}
	return table
}

// Summary is the run-level rollup shown alongside the tables.
type Summary struct {
	TotalRecords    int
	TotalProviders  int
	RejectedRows    int
	DateRange       string
	AuditIssueCount int
}

// BuildSummary derives run totals from the normalized entries.
func BuildSummary(entries []timesheet.Entry, rowsRead, rejectedRows int, findings []audit.Finding) Summary {
	providers := make(map[string]struct{})
	var minDate, maxDate time.Time
	for _, entry := range entries {
		providers[entry.ProviderID] = struct{}{}
		if minDate.IsZero() || entry.DateOfService.Before(minDate) {
			minDate = entry.DateOfService
		}
		if maxDate.IsZero() || entry.DateOfService.After(maxDate) {
			maxDate = entry.DateOfService
		}
	}

	dateRange := ""
	if !minDate.IsZero() {
		dateRange = fmt.Sprintf("%s to %s", timeutil.FormatDate(minDate), timeutil.FormatDate(maxDate))
	}

	return Summary{
		TotalRecords:    rowsRead,
		TotalProviders:  len(providers),
		RejectedRows:    rejectedRows,
		DateRange:       dateRange,
		AuditIssueCount: len(findings),
	}
}

func sortRecords(records []compliance.Record) []compliance.Record {
	sorted := make([]compliance.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ProviderID == sorted[j].ProviderID {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ProviderID < sorted[j].ProviderID
	})
	return sorted
}
