package audit

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"breakaudit/compliance"
	"breakaudit/config"
	"breakaudit/internal/timeutil"
	"breakaudit/timesheet"
)

// Engine runs the audit rule set with configured tolerances. A zero Engine
// is not usable; construct with NewEngine.
type Engine struct {
	tol config.AuditConfig
}

func NewEngine(tol config.AuditConfig) *Engine {
	return &Engine{tol: tol}
}

type dayGroup struct {
	providerID   string
	providerName string
	date         time.Time
	entries      []timesheet.Entry
}

// Run executes every audit rule over the normalized entries, the per-day
// compliance records, and the rows rejected during normalization. Output
// order is deterministic: rejects first, then day groups sorted by provider
// and date with a fixed rule order inside each group, then deficit findings
// in compliance-record order.
func (e *Engine) Run(entries []timesheet.Entry, days []compliance.Record, rejects []RejectedRow) []Finding {
	findings := make([]Finding, 0)

	for _, reject := range rejects {
		findings = append(findings, Finding{
			Type:         TypeUnparsableRow,
			ProviderID:   "N/A",
			ProviderName: "System",
			Issue:        fmt.Sprintf("row %d excluded from processing: %s", reject.RowNumber, reject.Reason),
			Severity:     SeverityMedium,
		})
	}

	for _, group := range groupByDay(entries) {
		findings = append(findings, e.auditEntries(group)...)
		findings = append(findings, e.auditOverlaps(group)...)
		findings = append(findings, e.auditShiftGaps(group)...)
		findings = append(findings, e.auditDayTotals(group)...)
		findings = append(findings, e.auditBreakPlacement(group)...)
	}

	for _, record := range days {
		if record.DeficitMinutes <= 0 {
			continue
		}
		severity := SeverityMedium
		if record.DeficitMinutes >= int64(e.tol.DeficitHighMinutes) {
			severity = SeverityHigh
		}
		findings = append(findings, Finding{
			Type:         TypeMissingBreak,
			ProviderID:   record.ProviderID,
			ProviderName: record.FullName,
			Date:         timeutil.FormatDate(record.Date),
			Issue: fmt.Sprintf("required %d break minutes for %s work hours, recorded %d (%d short)",
				record.RequiredBreakMinutes, record.WorkHours.StringFixed(2), record.ActualBreakMinutes, record.DeficitMinutes),
			Severity: severity,
		})
	}

	return findings
}

func groupByDay(entries []timesheet.Entry) []dayGroup {
	type dayKey struct {
		providerID string
		date       string
	}

	groups := make(map[dayKey]*dayGroup)
	keys := make([]dayKey, 0)

	for _, entry := range entries {
		key := dayKey{providerID: entry.ProviderID, date: entry.DateOfService.Format("2006-01-02")}
		group, ok := groups[key]
		if !ok {
			group = &dayGroup{
				providerID: entry.ProviderID,
				date:       entry.DateOfService,
			}
			groups[key] = group
			keys = append(keys, key)
		}
		if group.providerName == "" {
			group.providerName = entry.FullName()
		}
		group.entries = append(group.entries, entry)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].providerID == keys[j].providerID {
			return keys[i].date < keys[j].date
		}
		return keys[i].providerID < keys[j].providerID
	})

	ordered := make([]dayGroup, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group.entries, func(i, j int) bool {
			left, right := group.entries[i], group.entries[j]
			if left.Start == nil || right.Start == nil {
				if (left.Start == nil) != (right.Start == nil) {
					return right.Start == nil
				}
				return left.RowNumber < right.RowNumber
			}
			if left.Start.Equal(*right.Start) {
				return left.RowNumber < right.RowNumber
			}
			return left.Start.Before(*right.Start)
		})
		ordered = append(ordered, *group)
	}
	return ordered
}

func (e *Engine) finding(group dayGroup, findingType, issue string, severity Severity) Finding {
	return Finding{
		Type:         findingType,
		ProviderID:   group.providerID,
		ProviderName: group.providerName,
		Date:         timeutil.FormatDate(group.date),
		Issue:        issue,
		Severity:     severity,
	}
}

// auditEntries applies the single-entry rules: interval inversion, declared
// vs interval duration mismatch, unclassified zero-duration entries, and
// implausible break/lunch durations.
func (e *Engine) auditEntries(group dayGroup) []Finding {
	findings := make([]Finding, 0)

	for _, entry := range group.entries {
		if entry.IntervalInverted() {
			findings = append(findings, e.finding(group, TypeIntervalInversion,
				fmt.Sprintf("%s interval ends at %s before it starts at %s",
					entry.ProcedureCode, entry.End.Format("15:04"), entry.Start.Format("15:04")),
				SeverityHigh))
		}

		if intervalMinutes, ok := entry.IntervalMinutes(); ok && entry.HoursWorked.IsPositive() {
			declared := entry.DeclaredMinutes()
			difference := declared - intervalMinutes
			if difference < 0 {
				difference = -difference
			}
			if difference > int64(e.tol.DurationToleranceMinutes) {
				findings = append(findings, e.finding(group, TypeDurationMismatch,
					fmt.Sprintf("%s declares %d minutes but its interval spans %d minutes",
						entry.ProcedureCode, declared, intervalMinutes),
					SeverityMedium))
			}
		}

		switch entry.Kind {
		case timesheet.KindWork:
			_, hasInterval := entry.IntervalMinutes()
			if entry.HoursWorked.IsZero() && !hasInterval && !entry.IntervalInverted() {
				findings = append(findings, e.finding(group, TypeUnclassifiedEntry,
					fmt.Sprintf("%q has no declared duration and no interval; possible miscoded break", entry.ProcedureCode),
					SeverityLow))
			}
		case timesheet.KindBreak:
			minutes := entry.BreakMinutes()
			if minutes > int64(e.tol.LongBreakMinutes) {
				findings = append(findings, e.finding(group, TypeSuspiciousBreak,
					fmt.Sprintf("%s recorded as %d minutes", entry.ProcedureCode, minutes),
					SeverityMedium))
			} else if minutes > 0 && minutes < int64(e.tol.ShortBreakMinutes) {
				findings = append(findings, e.finding(group, TypeShortBreak,
					fmt.Sprintf("%s recorded as only %d minutes", entry.ProcedureCode, minutes),
					SeverityLow))
			}
		case timesheet.KindLunch:
			minutes := entry.BreakMinutes()
			if minutes > int64(e.tol.LongLunchMinutes) {
				findings = append(findings, e.finding(group, TypeLongLunch,
					fmt.Sprintf("%s recorded as %d minutes", entry.ProcedureCode, minutes),
					SeverityMedium))
			} else if minutes > 0 && minutes < int64(e.tol.ShortLunchMinutes) {
				findings = append(findings, e.finding(group, TypeShortLunch,
					fmt.Sprintf("%s recorded as only %d minutes", entry.ProcedureCode, minutes),
					SeverityLow))
			}
		}
	}

	return findings
}

// auditOverlaps reports pairs of same-day entries whose intervals overlap.
// Overlap is a data-quality flag: both rows still count toward aggregation.
func (e *Engine) auditOverlaps(group dayGroup) []Finding {
	withIntervals := make([]timesheet.Entry, 0, len(group.entries))
	for _, entry := range group.entries {
		if _, ok := entry.IntervalMinutes(); ok {
			withIntervals = append(withIntervals, entry)
		}
	}

	findings := make([]Finding, 0)
	for i := 0; i < len(withIntervals); i++ {
		for j := i + 1; j < len(withIntervals); j++ {
			// Entries are sorted by start; once the next start clears this
			// end there is nothing further to compare against entry i.
			if !withIntervals[j].Start.Before(*withIntervals[i].End) {
				break
			}
			findings = append(findings, e.finding(group, TypeOverlappingEntries,
				fmt.Sprintf("%s (%s-%s) overlaps %s (%s-%s)",
					withIntervals[i].ProcedureCode,
					withIntervals[i].Start.Format("15:04"), withIntervals[i].End.Format("15:04"),
					withIntervals[j].ProcedureCode,
					withIntervals[j].Start.Format("15:04"), withIntervals[j].End.Format("15:04")),
				SeverityHigh))
		}
	}
	return findings
}

// auditShiftGaps flags large idle gaps between consecutive work intervals
// that no break or lunch entry accounts for.
func (e *Engine) auditShiftGaps(group dayGroup) []Finding {
	work := make([]timesheet.Entry, 0, len(group.entries))
	breaks := make([]timesheet.Entry, 0)
	for _, entry := range group.entries {
		if _, ok := entry.IntervalMinutes(); !ok {
			continue
		}
		if entry.Kind == timesheet.KindWork {
			work = append(work, entry)
		} else {
			breaks = append(breaks, entry)
		}
	}

	findings := make([]Finding, 0)
	for i := 1; i < len(work); i++ {
		gapStart := *work[i-1].End
		gapEnd := *work[i].Start
		gap := timeutil.MinutesBetween(gapStart, gapEnd)
		if gap <= e.tol.ShiftGapMinutes {
			continue
		}
		if gapCovered(gapStart, gapEnd, breaks) {
			continue
		}
		findings = append(findings, e.finding(group, TypeShiftGap,
			fmt.Sprintf("%d minute gap between work intervals (%s to %s) with no recorded break",
				gap, gapStart.Format("15:04"), gapEnd.Format("15:04")),
			SeverityLow))
	}
	return findings
}

func gapCovered(gapStart, gapEnd time.Time, breaks []timesheet.Entry) bool {
	for _, entry := range breaks {
		if entry.Start.Before(gapEnd) && entry.End.After(gapStart) {
			return true
		}
	}
	return false
}

// auditDayTotals applies whole-day sanity checks on the work/break balance.
func (e *Engine) auditDayTotals(group dayGroup) []Finding {
	workHours := decimal.Zero
	breakMinutes := int64(0)
	for _, entry := range group.entries {
		switch entry.Kind {
		case timesheet.KindBreak, timesheet.KindLunch:
			breakMinutes += entry.BreakMinutes()
		default:
			if !entry.IntervalInverted() {
				workHours = workHours.Add(entry.HoursWorked)
			}
		}
	}

	findings := make([]Finding, 0)
	breakHours := decimal.NewFromInt(breakMinutes).Div(decimal.NewFromInt(60))

	if workHours.IsPositive() {
		ratio := decimal.NewFromFloat(e.tol.MaxBreakRatio)
		if breakHours.GreaterThan(workHours.Mul(ratio)) {
			percent := breakHours.Div(workHours).Mul(decimal.NewFromInt(100))
			findings = append(findings, e.finding(group, TypeExcessiveBreaks,
				fmt.Sprintf("break time (%sh) is %s%% of work time (%sh)",
					breakHours.StringFixed(2), percent.StringFixed(1), workHours.StringFixed(2)),
				SeverityHigh))
		}
	}

	if breakMinutes > 0 && workHours.LessThan(decimal.NewFromFloat(e.tol.MinWorkHoursWithBreaks)) {
		findings = append(findings, e.finding(group, TypeLowWorkWithBreaks,
			fmt.Sprintf("only %s work hours but %d break minutes recorded",
				workHours.StringFixed(2), breakMinutes),
			SeverityMedium))
	}

	return findings
}

// auditBreakPlacement flags breaks positioned after the day's last work
// interval, where they no longer interrupt any work.
func (e *Engine) auditBreakPlacement(group dayGroup) []Finding {
	var lastWorkEnd *time.Time
	hasWorkBefore := func(t time.Time) bool {
		for _, entry := range group.entries {
			if entry.Kind != timesheet.KindWork {
				continue
			}
			if _, ok := entry.IntervalMinutes(); !ok {
				continue
			}
			if !entry.End.After(t) {
				return true
			}
		}
		return false
	}
	for _, entry := range group.entries {
		if entry.Kind != timesheet.KindWork {
			continue
		}
		if _, ok := entry.IntervalMinutes(); !ok {
			continue
		}
		if lastWorkEnd == nil || entry.End.After(*lastWorkEnd) {
			lastWorkEnd = entry.End
		}
	}
	if lastWorkEnd == nil {
		return nil
	}

	findings := make([]Finding, 0)
	for _, entry := range group.entries {
		if entry.Kind != timesheet.KindBreak && entry.Kind != timesheet.KindLunch {
			continue
		}
		if _, ok := entry.IntervalMinutes(); !ok {
			continue
		}
		if !entry.Start.Before(*lastWorkEnd) && hasWorkBefore(*entry.Start) {
			findings = append(findings, e.finding(group, TypeBreakAtEndOfDay,
				fmt.Sprintf("%s occurs after the last work interval (%s-%s)",
					entry.ProcedureCode, entry.Start.Format("15:04"), entry.End.Format("15:04")),
				SeverityLow))
		}
	}
	return findings
}
