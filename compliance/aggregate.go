// Package compliance aggregates normalized timesheet entries per provider
// and work-day and compares recorded break time against the required
// allotment.
package compliance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"breakaudit/timesheet"
)

// DayAggregate holds the sums for one (provider, date) group. Work hours
// come from work entries only; actual break minutes from break and lunch
// entries only.
type DayAggregate struct {
	ProviderID         string
	FullName           string
	Date               time.Time
	WorkHours          decimal.Decimal
	ActualBreakMinutes int64
	EntryCount         int
}

// AggregateByDay groups entries by (provider id, calendar date). Entries
// with inverted intervals stay out of the work-hour sum; the audit engine
// reports them separately. Output is sorted by provider id, then date.
func AggregateByDay(entries []timesheet.Entry) []DayAggregate {
	type dayKey struct {
		providerID string
		date       string
	}

	groups := make(map[dayKey]*DayAggregate)
	order := make([]dayKey, 0)

	for _, entry := range entries {
		key := dayKey{providerID: entry.ProviderID, date: entry.DateOfService.Format("2006-01-02")}
		aggregate, ok := groups[key]
		if !ok {
			aggregate = &DayAggregate{
				ProviderID: entry.ProviderID,
				Date:       entry.DateOfService,
				WorkHours:  decimal.Zero,
			}
			groups[key] = aggregate
			order = append(order, key)
		}

		aggregate.EntryCount++
		if aggregate.FullName == "" {
			aggregate.FullName = entry.FullName()
		}

		switch entry.Kind {
		case timesheet.KindBreak, timesheet.KindLunch:
			aggregate.ActualBreakMinutes += entry.BreakMinutes()
		default:
			if entry.IntervalInverted() {
				continue
			}
			aggregate.WorkHours = aggregate.WorkHours.Add(entry.HoursWorked)
		}
	}

	aggregates := make([]DayAggregate, 0, len(order))
	for _, key := range order {
		aggregates = append(aggregates, *groups[key])
	}
	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].ProviderID == aggregates[j].ProviderID {
			return aggregates[i].Date.Before(aggregates[j].Date)
		}
		return aggregates[i].ProviderID < aggregates[j].ProviderID
	})

	return aggregates
}
