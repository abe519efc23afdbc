package compliance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"breakaudit/breakrule"
	"breakaudit/config"
	"breakaudit/timesheet"
)

func testTable(t *testing.T) breakrule.Table {
	t.Helper()

	table, err := breakrule.NewTable([]config.Tier{
		{MinHours: 3.5, BreakMinutes: 10},
		{MinHours: 6, BreakMinutes: 20},
		{MinHours: 10, BreakMinutes: 30},
	})
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func day(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("01/02/2006", value, time.Local)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed
}

func workEntry(t *testing.T, provider, date, hours string) timesheet.Entry {
	t.Helper()

	return timesheet.Entry{
		ProviderID:    provider,
		FirstName:     "Dana",
		LastName:      "Reyes",
		DateOfService: day(t, date),
		HoursWorked:   decimal.RequireFromString(hours),
		ProcedureCode: "Regular Time",
		Kind:          timesheet.KindWork,
	}
}

func breakEntry(t *testing.T, provider, date, hours string) timesheet.Entry {
	t.Helper()

	entry := workEntry(t, provider, date, hours)
	entry.ProcedureCode = "10 Minute Break"
	entry.Kind = timesheet.KindBreak
	return entry
}

func TestAggregateByDay_SplitsWorkAndBreaks(t *testing.T) {
	t.Parallel()

	entries := []timesheet.Entry{
		workEntry(t, "P001", "03/05/2026", "4"),
		workEntry(t, "P001", "03/05/2026", "4"),
		breakEntry(t, "P001", "03/05/2026", "0.1667"),
		workEntry(t, "P001", "03/06/2026", "6"),
		workEntry(t, "P002", "03/05/2026", "3"),
	}

	aggregates := AggregateByDay(entries)
	if len(aggregates) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(aggregates))
	}

	first := aggregates[0]
	if first.ProviderID != "P001" || first.Date != day(t, "03/05/2026") {
		t.Fatalf("unexpected first group: %+v", first)
	}
	if !first.WorkHours.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("break hours must not count as work: got %s", first.WorkHours)
	}
	if first.ActualBreakMinutes != 10 {
		t.Fatalf("expected 10 actual break minutes, got %d", first.ActualBreakMinutes)
	}
	if first.EntryCount != 3 {
		t.Fatalf("expected 3 entries in group, got %d", first.EntryCount)
	}
}

func TestAggregateByDay_SkipsInvertedIntervalWork(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 5, 16, 0, 0, 0, time.Local)
	end := start.Add(-8 * time.Hour)
	inverted := workEntry(t, "P001", "03/05/2026", "8")
	inverted.Start = &start
	inverted.End = &end

	aggregates := AggregateByDay([]timesheet.Entry{
		inverted,
		workEntry(t, "P001", "03/05/2026", "2"),
	})
	if len(aggregates) != 1 {
		t.Fatalf("expected 1 group, got %d", len(aggregates))
	}
	if !aggregates[0].WorkHours.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("inverted row must not add work hours: got %s", aggregates[0].WorkHours)
	}
	if aggregates[0].EntryCount != 2 {
		t.Fatalf("inverted row still counts as an entry, got %d", aggregates[0].EntryCount)
	}
}

func TestEvaluate_EightHourDayNoBreaks(t *testing.T) {
	t.Parallel()

	aggregates := AggregateByDay([]timesheet.Entry{workEntry(t, "P001", "03/05/2026", "8")})
	records := Evaluate(aggregates, testTable(t))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.RequiredBreakMinutes != 20 {
		t.Fatalf("expected 20 required minutes for 8h, got %d", record.RequiredBreakMinutes)
	}
	if record.ActualBreakMinutes != 0 {
		t.Fatalf("expected 0 actual minutes, got %d", record.ActualBreakMinutes)
	}
	if record.DeficitMinutes != 20 || record.Compliant {
		t.Fatalf("expected 20-minute deficit and non-compliance, got %+v", record)
	}
	if record.Status() != StatusNonCompliant {
		t.Fatalf("unexpected status %s", record.Status())
	}
	if record.RequiredBreakHours() != 20.0/60.0 {
		t.Fatalf("unexpected required hours %f", record.RequiredBreakHours())
	}
}

func TestEvaluate_BreakRowReducesDeficit(t *testing.T) {
	t.Parallel()

	aggregates := AggregateByDay([]timesheet.Entry{
		workEntry(t, "P001", "03/05/2026", "8"),
		breakEntry(t, "P001", "03/05/2026", "0.1667"),
	})
	records := Evaluate(aggregates, testTable(t))

	record := records[0]
	if record.RequiredBreakMinutes != 20 {
		t.Fatalf("required minutes must not change, got %d", record.RequiredBreakMinutes)
	}
	if record.ActualBreakMinutes != 10 {
		t.Fatalf("expected 10 actual minutes, got %d", record.ActualBreakMinutes)
	}
	if record.DeficitMinutes != 10 || record.Compliant {
		t.Fatalf("expected 10-minute deficit, got %+v", record)
	}
}

func TestEvaluate_SurplusNeverGoesNegative(t *testing.T) {
	t.Parallel()

	aggregates := AggregateByDay([]timesheet.Entry{
		workEntry(t, "P001", "03/05/2026", "4"),
		breakEntry(t, "P001", "03/05/2026", "1"),
	})
	records := Evaluate(aggregates, testTable(t))

	record := records[0]
	if record.DeficitMinutes != 0 || !record.Compliant {
		t.Fatalf("expected zero deficit with surplus breaks, got %+v", record)
	}
}

func TestSummarizeByProvider_NoCrossDayCancellation(t *testing.T) {
	t.Parallel()

	aggregates := AggregateByDay([]timesheet.Entry{
		// Day one: 8h work, no breaks -> deficit 20.
		workEntry(t, "P001", "03/05/2026", "8"),
		// Day two: 4h work with a surplus lunch -> deficit 0.
		workEntry(t, "P001", "03/06/2026", "4"),
		breakEntry(t, "P001", "03/06/2026", "1"),
	})
	records := Evaluate(aggregates, testTable(t))
	summaries := SummarizeByProvider(records)

	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}

	summary := summaries[0]
	if summary.DeficitMinutes != 20 {
		t.Fatalf("summary deficit must equal sum of day deficits, got %d", summary.DeficitMinutes)
	}
	if summary.Compliant {
		t.Fatal("one deficit day makes the provider non-compliant overall")
	}
	if !summary.WorkHours.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected 12 total work hours, got %s", summary.WorkHours)
	}
	if summary.DayCount != 2 {
		t.Fatalf("expected 2 days, got %d", summary.DayCount)
	}
}

func TestSummarizeByProvider_SortedByDeficitDescending(t *testing.T) {
	t.Parallel()

	aggregates := AggregateByDay([]timesheet.Entry{
		workEntry(t, "P003", "03/05/2026", "8"),  // deficit 20
		workEntry(t, "P001", "03/05/2026", "4"),  // deficit 10
		workEntry(t, "P002", "03/05/2026", "12"), // deficit 30
	})
	records := Evaluate(aggregates, testTable(t))
	summaries := SummarizeByProvider(records)

	got := []string{summaries[0].ProviderID, summaries[1].ProviderID, summaries[2].ProviderID}
	want := []string{"P002", "P003", "P001"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected summary order: got %v, want %v", got, want)
		}
	}
}
