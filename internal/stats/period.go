// Package stats computes period-bounded aggregations over the weekly
// ledger and the daily showtime table: rankings, growth rates, market
// share and trend series.  All reads go through the Store interface;
// the package itself holds no state and is safe to use concurrently
// with an in-progress ingestion run.
package stats

import (
	"errors"
	"fmt"
	"time"
)

// PeriodKind selects the shape of an aggregation window.
type PeriodKind string

const (
	KindWeek    PeriodKind = "week"
	KindMonth   PeriodKind = "month"
	KindYear    PeriodKind = "year"
	KindAllTime PeriodKind = "all_time"
)

// ErrBadPeriod marks an invalid period specification (unknown kind,
// out-of-range number).  Handlers translate it into a 400 response;
// an empty period is not an error and yields a zero-valued summary.
var ErrBadPeriod = errors.New("invalid period")

// Period is a resolved aggregation window.  Bounded is false only for
// all_time, which spans the entire ledger.
type Period struct {
	Kind    PeriodKind
	Start   time.Time
	End     time.Time
	Bounded bool
}

// NewPeriod resolves (kind, year, number) into concrete boundary dates.
//   - week:  ISO week `number` of `year`; Start is that week's Monday,
//     End is Start+6 days.
//   - month: day 1 through the last calendar day of the month.
//   - year:  Jan 1 through Dec 31.
//   - all_time: unbounded; year and number are ignored.
func NewPeriod(kind PeriodKind, year, number int) (Period, error) {
	switch kind {
	case KindAllTime:
		return Period{Kind: kind}, nil
	case KindWeek:
		if number < 1 || number > 53 {
			return Period{}, fmt.Errorf("%w: week number %d", ErrBadPeriod, number)
		}
		start := isoWeekStart(year, number)
		return Period{Kind: kind, Start: start, End: start.AddDate(0, 0, 6), Bounded: true}, nil
	case KindMonth:
		if number < 1 || number > 12 {
			return Period{}, fmt.Errorf("%w: month number %d", ErrBadPeriod, number)
		}
		start := time.Date(year, time.Month(number), 1, 0, 0, 0, 0, time.UTC)
		// Day 0 of the next month normalizes to this month's last day,
		// which handles leap Februaries for free.
		end := time.Date(year, time.Month(number)+1, 0, 0, 0, 0, 0, time.UTC)
		return Period{Kind: kind, Start: start, End: end, Bounded: true}, nil
	case KindYear:
		return Period{
			Kind:    kind,
			Start:   time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:     time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			Bounded: true,
		}, nil
	default:
		return Period{}, fmt.Errorf("%w: kind %q", ErrBadPeriod, kind)
	}
}

// Previous returns the immediately preceding period of identical kind
// and length, used as the growth-rate baseline.  It returns false for
// all_time, which has no predecessor.
func (p Period) Previous() (Period, bool) {
	switch p.Kind {
	case KindWeek:
		return Period{Kind: p.Kind, Start: p.Start.AddDate(0, 0, -7), End: p.End.AddDate(0, 0, -7), Bounded: true}, true
	case KindMonth:
		start := time.Date(p.Start.Year(), p.Start.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		return Period{Kind: p.Kind, Start: start, End: end, Bounded: true}, true
	case KindYear:
		y := p.Start.Year() - 1
		return Period{
			Kind:    p.Kind,
			Start:   time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:     time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
			Bounded: true,
		}, true
	default:
		return Period{}, false
	}
}

// isoWeekStart returns the Monday of the given ISO week.  January 4 is
// always inside ISO week 1, so the Monday of its week anchors the year.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	daysSinceMonday := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -daysSinceMonday)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
