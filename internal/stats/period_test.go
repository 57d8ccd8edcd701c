package stats

import (
	"errors"
	"testing"
	"time"
)

func TestNewPeriodWeek(t *testing.T) {
	cases := []struct {
		name       string
		year, week int
		wantStart  string
		wantEnd    string
	}{
		// 2024-01-01 is a Monday, so week 1 starts on January 1.
		{"week starts on new year monday", 2024, 1, "2024-01-01", "2024-01-07"},
		// 2021-01-01 is a Friday and belongs to ISO week 53 of 2020;
		// week 1 of 2021 starts on January 4.
		{"week 1 after late new year", 2021, 1, "2021-01-04", "2021-01-10"},
		{"mid-year week", 2024, 11, "2024-03-11", "2024-03-17"},
		// 2020 has 53 ISO weeks.
		{"week 53 of a long year", 2020, 53, "2020-12-28", "2021-01-03"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPeriod(KindWeek, tc.year, tc.week)
			if err != nil {
				t.Fatalf("NewPeriod: %v", err)
			}
			if got := p.Start.Format("2006-01-02"); got != tc.wantStart {
				t.Errorf("start = %s, want %s", got, tc.wantStart)
			}
			if got := p.End.Format("2006-01-02"); got != tc.wantEnd {
				t.Errorf("end = %s, want %s", got, tc.wantEnd)
			}
			if p.Start.Weekday() != time.Monday {
				t.Errorf("start weekday = %v, want Monday", p.Start.Weekday())
			}
			if year, week := p.Start.ISOWeek(); year != tc.year || week != tc.week {
				t.Errorf("ISOWeek(start) = %d/%d, want %d/%d", year, week, tc.year, tc.week)
			}
		})
	}
}

func TestNewPeriodMonth(t *testing.T) {
	cases := []struct {
		name        string
		year, month int
		wantEnd     string
	}{
		{"thirty-one days", 2024, 1, "2024-01-31"},
		{"leap february", 2024, 2, "2024-02-29"},
		{"plain february", 2023, 2, "2023-02-28"},
		{"thirty days", 2024, 4, "2024-04-30"},
		{"december", 2024, 12, "2024-12-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPeriod(KindMonth, tc.year, tc.month)
			if err != nil {
				t.Fatalf("NewPeriod: %v", err)
			}
			if p.Start.Day() != 1 {
				t.Errorf("start day = %d, want 1", p.Start.Day())
			}
			if got := p.End.Format("2006-01-02"); got != tc.wantEnd {
				t.Errorf("end = %s, want %s", got, tc.wantEnd)
			}
		})
	}
}

func TestNewPeriodYearAndAllTime(t *testing.T) {
	p, err := NewPeriod(KindYear, 2024, 0)
	if err != nil {
		t.Fatalf("NewPeriod year: %v", err)
	}
	if p.Start.Format("2006-01-02") != "2024-01-01" || p.End.Format("2006-01-02") != "2024-12-31" {
		t.Errorf("year bounds = %s..%s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}

	p, err = NewPeriod(KindAllTime, 0, 0)
	if err != nil {
		t.Fatalf("NewPeriod all_time: %v", err)
	}
	if p.Bounded {
		t.Error("all_time period must be unbounded")
	}
	if _, ok := p.Previous(); ok {
		t.Error("all_time has no previous period")
	}
}

func TestNewPeriodRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		kind   PeriodKind
		number int
	}{
		{"week zero", KindWeek, 0},
		{"week 54", KindWeek, 54},
		{"month zero", KindMonth, 0},
		{"month 13", KindMonth, 13},
		{"unknown kind", PeriodKind("quarter"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPeriod(tc.kind, 2024, tc.number); !errors.Is(err, ErrBadPeriod) {
				t.Errorf("NewPeriod(%q, %d) err = %v, want ErrBadPeriod", tc.kind, tc.number, err)
			}
		})
	}
}

func TestPeriodPrevious(t *testing.T) {
	// Week crossing a year boundary.
	p, _ := NewPeriod(KindWeek, 2021, 1)
	prev, ok := p.Previous()
	if !ok {
		t.Fatal("week has no previous")
	}
	if got := prev.Start.Format("2006-01-02"); got != "2020-12-28" {
		t.Errorf("previous week start = %s, want 2020-12-28", got)
	}

	// January's previous month is last December, with its own length.
	p, _ = NewPeriod(KindMonth, 2024, 1)
	prev, ok = p.Previous()
	if !ok {
		t.Fatal("month has no previous")
	}
	if prev.Start.Format("2006-01-02") != "2023-12-01" || prev.End.Format("2006-01-02") != "2023-12-31" {
		t.Errorf("previous month = %s..%s", prev.Start.Format("2006-01-02"), prev.End.Format("2006-01-02"))
	}

	// March's previous is February with the right day count.
	p, _ = NewPeriod(KindMonth, 2024, 3)
	prev, _ = p.Previous()
	if prev.End.Format("2006-01-02") != "2024-02-29" {
		t.Errorf("previous month end = %s, want 2024-02-29", prev.End.Format("2006-01-02"))
	}

	p, _ = NewPeriod(KindYear, 2024, 0)
	prev, _ = p.Previous()
	if prev.Start.Year() != 2023 || prev.End.Year() != 2023 {
		t.Errorf("previous year = %d..%d, want 2023", prev.Start.Year(), prev.End.Year())
	}
}
