package compliance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"breakaudit/breakrule"
)

const (
	StatusCompliant    = "Compliant"
	StatusNonCompliant = "Non-Compliant"
)

// Record is the per-(provider, date) compliance verdict.
type Record struct {
	ProviderID           string
	FullName             string
	Date                 time.Time
	WorkHours            decimal.Decimal
	RequiredBreakMinutes int
	ActualBreakMinutes   int64
	DeficitMinutes       int64
	Compliant            bool
}

func (r Record) Status() string {
	if r.Compliant {
		return StatusCompliant
	}
	return StatusNonCompliant
}

// RequiredBreakHours is the required allotment expressed in hours.
func (r Record) RequiredBreakHours() float64 {
	return float64(r.RequiredBreakMinutes) / 60.0
}

// Evaluate applies the break rule table to each day aggregate. The deficit
// never goes negative; surplus break time does not carry anywhere.
func Evaluate(aggregates []DayAggregate, table breakrule.Table) []Record {
	records := make([]Record, 0, len(aggregates))
	for _, aggregate := range aggregates {
		required := table.RequiredMinutes(aggregate.WorkHours)
		deficit := int64(required) - aggregate.ActualBreakMinutes
		if deficit < 0 {
			deficit = 0
		}

		records = append(records, Record{
			ProviderID:           aggregate.ProviderID,
			FullName:             aggregate.FullName,
			Date:                 aggregate.Date,
			WorkHours:            aggregate.WorkHours,
			RequiredBreakMinutes: required,
			ActualBreakMinutes:   aggregate.ActualBreakMinutes,
			DeficitMinutes:       deficit,
			Compliant:            deficit == 0,
		})
	}
	return records
}

// ProviderSummary sums a provider's day records. Compliance is recomputed
// from the summed deficit, so one non-compliant day makes the provider
// non-compliant overall regardless of surplus on other days.
type ProviderSummary struct {
	ProviderID           string
	FullName             string
	WorkHours            decimal.Decimal
	RequiredBreakMinutes int
	ActualBreakMinutes   int64
	DeficitMinutes       int64
	DayCount             int
	Compliant            bool
}

func (s ProviderSummary) Status() string {
	if s.Compliant {
		return StatusCompliant
	}
	return StatusNonCompliant
}

// SummarizeByProvider rolls day records up to provider totals, sorted by
// deficit descending with provider id as the stable tie-break.
func SummarizeByProvider(records []Record) []ProviderSummary {
	totals := make(map[string]*ProviderSummary)
	order := make([]string, 0)

	for _, record := range records {
		summary, ok := totals[record.ProviderID]
		if !ok {
			summary = &ProviderSummary{
				ProviderID: record.ProviderID,
				FullName:   record.FullName,
				WorkHours:  decimal.Zero,
			}
			totals[record.ProviderID] = summary
			order = append(order, record.ProviderID)
		}

		summary.WorkHours = summary.WorkHours.Add(record.WorkHours)
		summary.RequiredBreakMinutes += record.RequiredBreakMinutes
		summary.ActualBreakMinutes += record.ActualBreakMinutes
		summary.DeficitMinutes += record.DeficitMinutes
		summary.DayCount++
	}

	summaries := make([]ProviderSummary, 0, len(order))
	for _, providerID := range order {
		summary := *totals[providerID]
		summary.Compliant = summary.DeficitMinutes == 0
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].DeficitMinutes == summaries[j].DeficitMinutes {
			return summaries[i].ProviderID < summaries[j].ProviderID
		}
		return summaries[i].DeficitMinutes > summaries[j].DeficitMinutes
	})

	return summaries
}
