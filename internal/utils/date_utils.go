package utils

import (
	"fmt"
	"time"
)

// DateRange is a half-open interval [From, To) used by every aggregation
// query.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParsePeriod normalizes the period query parameter. Unrecognized values
// fall back to "30d" instead of erroring, so dashboards never break on a
// stale link.
func ParsePeriod(period string) string {
	switch period {
	case "24h", "7d", "30d", "90d":
		return period
	default:
		return "30d"
	}
}

// PeriodRange resolves a named period into a concrete date range anchored at
// now.
func PeriodRange(period string, now time.Time) DateRange {
	switch ParsePeriod(period) {
	case "24h":
		return DateRange{From: now.AddDate(0, 0, -1), To: now}
	case "7d":
		return DateRange{From: now.AddDate(0, 0, -7), To: now}
	case "90d":
		return DateRange{From: now.AddDate(0, 0, -90), To: now}
	default:
		return DateRange{From: now.AddDate(0, 0, -30), To: now}
	}
}

// GenerateDateRange returns every calendar day between from and to
// (inclusive) as "YYYY-MM-DD" strings. Timeline buckets are built from this
// list so that days with zero views still appear.
func GenerateDateRange(from, to time.Time) []string {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return []string{}
	}

	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())

	// Count by calendar day, not by elapsed hours: DST transitions make
	// some days shorter than 24h.
	result := []string{}
	for current := from; !current.After(to); current = current.AddDate(0, 0, 1) {
		result = append(result, current.Format("2006-01-02"))
	}

	return result
}

// FormatDateLabel renders the short human label shown on timeline charts,
// e.g. "Sep 3".
func FormatDateLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

// HumanizeSince renders how long ago t happened, for the live visitor list.
func HumanizeSince(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(d.Seconds()))
	case d < 2*time.Minute:
		return "1 minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "1 hour ago"
	default:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	}
}
