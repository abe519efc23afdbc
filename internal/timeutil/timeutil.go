package timeutil

import "time"

const DateLayout = "01/02/2006"

func DateOnly(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func FormatDate(value time.Time) string {
	return value.Format(DateLayout)
}

func MinutesBetween(from, to time.Time) int {
	return int(to.Sub(from).Minutes())
}
