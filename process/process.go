// Package process runs the whole batch pipeline over one normalized input:
// aggregate, evaluate compliance, audit, and build the report views. Each
// call constructs its own state, so concurrent runs on different inputs need
// no locking.
package process

import (
	"fmt"

	"breakaudit/audit"
	"breakaudit/breakrule"
	"breakaudit/compliance"
	"breakaudit/config"
	"breakaudit/importer"
	"breakaudit/report"
	"breakaudit/timesheet"
)

// Result holds everything one run produces: the four report tables, the run
// summary, and the intermediate records for callers that need them.
type Result struct {
	Daily           report.Table
	ProviderSummary report.Table
	ProviderDate    report.Table
	Audit           report.Table
	Summary         report.Summary

	DayRecords        []compliance.Record
	ProviderSummaries []compliance.ProviderSummary
	Findings          []audit.Finding
}

// Run executes the pipeline over an already-normalized import result.
func Run(input *importer.Result, cfg config.Config) (*Result, error) {
	if input == nil || len(input.Entries) == 0 {
		return nil, importer.ErrNoValidRows
	}

	table, err := breakrule.NewTable(cfg.Rules.BreakTiers)
	if err != nil {
		return nil, fmt.Errorf("build break rule table: %w", err)
	}

	aggregates := compliance.AggregateByDay(input.Entries)
	dayRecords := compliance.Evaluate(aggregates, table)
	providerSummaries := compliance.SummarizeByProvider(dayRecords)

	rejects := make([]audit.RejectedRow, 0, len(input.Rejects))
	for _, reject := range input.Rejects {
		rejects = append(rejects, audit.RejectedRow{RowNumber: reject.RowNumber, Reason: reject.Reason})
	}
	findings := audit.NewEngine(cfg.Audit).Run(input.Entries, dayRecords, rejects)

	return &Result{
		Daily:             report.BuildDaily(dayRecords),
		ProviderSummary:   report.BuildProviderSummary(providerSummaries),
		ProviderDate:      report.BuildProviderDate(dayRecords),
		Audit:             report.BuildAudit(findings),
		Summary:           report.BuildSummary(input.Entries, input.RowsRead, len(input.Rejects), findings),
		DayRecords:        dayRecords,
		ProviderSummaries: providerSummaries,
		Findings:          findings,
	}, nil
}

// RunFile reads, normalizes, and processes one timesheet file.
func RunFile(path, format string, cfg config.Config) (*Result, error) {
	markers := timesheet.Markers{
		Break: cfg.Rules.BreakMarkers,
		Lunch: cfg.Rules.LunchMarkers,
	}

	input, err := importer.Run([]string{path}, format, markers)
	if err != nil {
		return nil, err
	}
	return Run(input, cfg)
}

// Tables returns the four views in a stable order.
func (r *Result) Tables() []report.Table {
	return []report.Table{r.Daily, r.ProviderSummary, r.ProviderDate, r.Audit}
}
