// Package audit scans normalized timesheet entries for timing and
// data-quality defects, independent of the compliance calculation. Rules are
// additive: one entry or day can raise several findings.
package audit

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Finding types, one per rule.
const (
	TypeIntervalInversion  = "Interval Inversion"
	TypeDurationMismatch   = "Duration Mismatch"
	TypeOverlappingEntries = "Overlapping Entries"
	TypeShiftGap           = "Shift Gap"
	TypeMissingBreak       = "Missing Required Break"
	TypeUnclassifiedEntry  = "Unclassified Entry"
	TypeSuspiciousBreak    = "Suspicious Break Duration"
	TypeShortBreak         = "Short Break Duration"
	TypeLongLunch          = "Long Lunch Duration"
	TypeShortLunch         = "Short Lunch Duration"
	TypeExcessiveBreaks    = "Excessive Break Time"
	TypeLowWorkWithBreaks  = "Low Work Hours with Breaks"
	TypeBreakAtEndOfDay    = "Break at End of Day"
	TypeUnparsableRow      = "Unparsable Row"
)

// Finding is one flagged anomaly. It carries enough identity to be sorted
// and filtered by consumers without re-deriving context.
type Finding struct {
	Type         string
	ProviderID   string
	ProviderName string
	Date         string
	Issue        string
	Severity     Severity
}

// RejectedRow is a normalization reject surfaced through the audit report.
type RejectedRow struct {
	RowNumber int
	Reason    string
}
