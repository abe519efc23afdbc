package timesheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a timesheet entry by its procedure code.
type Kind int

const (
	KindWork Kind = iota
	KindBreak
	KindLunch
)

func (k Kind) String() string {
	switch k {
	case KindBreak:
		return "Break"
	case KindLunch:
		return "Lunch"
	default:
		return "Work"
	}
}

// Markers are the configured substrings that classify a procedure code as a
// break or a lunch entry. Matching is case-insensitive; unmatched codes
// default to work.
type Markers struct {
	Break []string
	Lunch []string
}

// Classify matches a procedure code against the marker sets. Lunch markers
// win over break markers so codes like "Lunch Break" classify as lunch.
func Classify(procedureCode string, markers Markers) Kind {
	lowered := strings.ToLower(strings.TrimSpace(procedureCode))
	if lowered == "" {
		return KindWork
	}
	for _, marker := range markers.Lunch {
		if marker != "" && strings.Contains(lowered, strings.ToLower(marker)) {
			return KindLunch
		}
	}
	for _, marker := range markers.Break {
		if marker != "" && strings.Contains(lowered, strings.ToLower(marker)) {
			return KindBreak
		}
	}
	return KindWork
}

// Entry is the normalized timesheet record used across the pipeline. It is
// created once per input row and never mutated afterwards.
type Entry struct {
	RowNumber     int
	ProviderID    string
	FirstName     string
	LastName      string
	DateOfService time.Time
	Start         *time.Time
	End           *time.Time
	HoursWorked   decimal.Decimal
	ProcedureCode string
	Kind          Kind
}

func (e Entry) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IntervalInverted reports whether both timestamps are present and the end
// precedes the start. Inverted entries stay in the entry set so the audit
// engine can flag them, but aggregation skips them.
func (e Entry) IntervalInverted() bool {
	return e.Start != nil && e.End != nil && e.End.Before(*e.Start)
}

// DeclaredMinutes converts the declared decimal hours to whole minutes.
func (e Entry) DeclaredMinutes() int64 {
	return e.HoursWorked.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
}

// IntervalMinutes returns the interval-derived duration when both timestamps
// are present and not inverted.
func (e Entry) IntervalMinutes() (int64, bool) {
	if e.Start == nil || e.End == nil || e.End.Before(*e.Start) {
		return 0, false
	}
	return int64(e.End.Sub(*e.Start).Minutes()), true
}

// BreakMinutes is the duration a break or lunch entry contributes to the
// actual-break aggregate: declared hours when present, interval otherwise.
func (e Entry) BreakMinutes() int64 {
	if e.HoursWorked.IsPositive() {
		return e.DeclaredMinutes()
	}
	if minutes, ok := e.IntervalMinutes(); ok {
		return minutes
	}
	return 0
}
