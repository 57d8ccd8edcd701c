package stats

import (
	"context"
	"sort"
	"testing"
	"time"
)

// ledgerRow is one weekly record in the fake store.
type ledgerRow struct {
	movieID    uint64
	name       string
	country    string
	start, end time.Time
	weekly     int64
	cumulative int64
}

// fakeStore computes every Store query from a flat slice of ledger
// rows, mirroring the SQL semantics: period membership by
// report_date_start, inclusive bounds, rankings by revenue descending.
type fakeStore struct {
	rows     []ledgerRow
	releases []time.Time
	shares   []RegionShare
}

func (f *fakeStore) SumWeeklyRevenue(ctx context.Context, start, end time.Time) (int64, error) {
	var sum int64
	for _, r := range f.rows {
		if !r.start.Before(start) && !r.start.After(end) {
			sum += r.weekly
		}
	}
	return sum, nil
}

func (f *fakeStore) TotalWeeklyRevenue(ctx context.Context) (int64, error) {
	var sum int64
	for _, r := range f.rows {
		sum += r.weekly
	}
	return sum, nil
}

func (f *fakeStore) CountDistinctMovies(ctx context.Context, start, end time.Time) (int, error) {
	seen := make(map[uint64]bool)
	for _, r := range f.rows {
		if !r.start.Before(start) && !r.start.After(end) {
			seen[r.movieID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeStore) CountMovies(ctx context.Context) (int, error) {
	seen := make(map[uint64]bool)
	for _, r := range f.rows {
		seen[r.movieID] = true
	}
	return len(seen), nil
}

func (f *fakeStore) PeriodRankings(ctx context.Context, start, end time.Time) ([]RankingRow, error) {
	agg := make(map[uint64]*RankingRow)
	for _, r := range f.rows {
		if r.start.Before(start) || r.start.After(end) {
			continue
		}
		row, ok := agg[r.movieID]
		if !ok {
			row = &RankingRow{MovieID: r.movieID, Name: r.name}
			agg[r.movieID] = row
		}
		row.Revenue += r.weekly
	}
	return sortedRankings(agg), nil
}

func (f *fakeStore) AllTimeRankings(ctx context.Context, limit int) ([]RankingRow, error) {
	agg := make(map[uint64]*RankingRow)
	for _, r := range f.rows {
		row, ok := agg[r.movieID]
		if !ok {
			row = &RankingRow{MovieID: r.movieID, Name: r.name}
			agg[r.movieID] = row
		}
		if r.cumulative > row.Revenue {
			row.Revenue = r.cumulative
		}
	}
	out := sortedRankings(agg)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortedRankings(agg map[uint64]*RankingRow) []RankingRow {
	out := make([]RankingRow, 0, len(agg))
	for _, r := range agg {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].MovieID < out[j].MovieID
	})
	return out
}

func (f *fakeStore) MinReportDateStart(ctx context.Context) (time.Time, bool, error) {
	var min time.Time
	for _, r := range f.rows {
		if min.IsZero() || r.start.Before(min) {
			min = r.start
		}
	}
	return min, !min.IsZero(), nil
}

func (f *fakeStore) MaxReportDateEnd(ctx context.Context) (time.Time, bool, error) {
	var max time.Time
	for _, r := range f.rows {
		if r.end.After(max) {
			max = r.end
		}
	}
	return max, !max.IsZero(), nil
}

func (f *fakeStore) MarketShareByRegion(ctx context.Context, date time.Time) ([]RegionShare, error) {
	return f.shares, nil
}

func (f *fakeStore) RecentTrend(ctx context.Context, n int) ([]TrendPoint, error) {
	totals := make(map[time.Time]int64)
	for _, r := range f.rows {
		totals[r.end] += r.weekly
	}
	var points []TrendPoint
	for end, rev := range totals {
		if rev > 0 {
			points = append(points, TrendPoint{End: end, Revenue: rev})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].End.After(points[j].End) })
	if len(points) > n {
		points = points[:n]
	}
	return points, nil
}

func (f *fakeStore) WeeklyRevenueRows(ctx context.Context) ([]WeeklyRevenueRow, error) {
	out := make([]WeeklyRevenueRow, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, WeeklyRevenueRow{Start: r.start, End: r.end, Revenue: r.weekly, MovieName: r.name})
	}
	return out, nil
}

func (f *fakeStore) RevenueByCountryForWeek(ctx context.Context, end time.Time) ([]CountryRevenue, error) {
	totals := make(map[string]int64)
	for _, r := range f.rows {
		if r.end.Equal(end) {
			totals[r.country] += r.weekly
		}
	}
	out := make([]CountryRevenue, 0, len(totals))
	for c, rev := range totals {
		out = append(out, CountryRevenue{Country: c, Revenue: rev})
	}
	return out, nil
}

func (f *fakeStore) SumRevenueByWeekEnd(ctx context.Context, end time.Time) (int64, error) {
	var sum int64
	for _, r := range f.rows {
		if r.end.Equal(end) {
			sum += r.weekly
		}
	}
	return sum, nil
}

func (f *fakeStore) SumRevenueByEndBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var sum int64
	for _, r := range f.rows {
		if !r.end.Before(from) && !r.end.After(to) {
			sum += r.weekly
		}
	}
	return sum, nil
}

func (f *fakeStore) CountActiveMovies(ctx context.Context, end time.Time, minRevenue int64) (int, error) {
	seen := make(map[uint64]bool)
	for _, r := range f.rows {
		if r.end.Equal(end) && r.weekly >= minRevenue {
			seen[r.movieID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeStore) CountReleasesBetween(ctx context.Context, from, to time.Time) (int, error) {
	n := 0
	for _, d := range f.releases {
		if !d.Before(from) && !d.After(to) {
			n++
		}
	}
	return n, nil
}

var _ Store = (*fakeStore)(nil)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// A reporting week straddling a month boundary belongs to the month of
// its start date, and only that month.
func TestPeriodStatsBoundaryWeekAttribution(t *testing.T) {
	store := &fakeStore{rows: []ledgerRow{
		// Starts March 25, ends April 1: a March week.
		{movieID: 1, name: "沙丘", start: date(2024, 3, 25), end: date(2024, 4, 1), weekly: 1000},
		// Fully inside April.
		{movieID: 1, name: "沙丘", start: date(2024, 4, 8), end: date(2024, 4, 14), weekly: 400},
	}}
	svc := NewService(store)
	ctx := context.Background()

	march, err := svc.PeriodStats(ctx, KindMonth, 2024, 3)
	if err != nil {
		t.Fatalf("march: %v", err)
	}
	if march.Summary.TotalRevenue != 1000 {
		t.Errorf("march total = %d, want 1000", march.Summary.TotalRevenue)
	}

	april, err := svc.PeriodStats(ctx, KindMonth, 2024, 4)
	if err != nil {
		t.Fatalf("april: %v", err)
	}
	if april.Summary.TotalRevenue != 400 {
		t.Errorf("april total = %d, boundary week counted twice", april.Summary.TotalRevenue)
	}
}

func TestPeriodStatsGrowthRate(t *testing.T) {
	store := &fakeStore{rows: []ledgerRow{
		{movieID: 1, name: "沙丘", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 1000},
		{movieID: 1, name: "沙丘", start: date(2024, 3, 11), end: date(2024, 3, 17), weekly: 1500},
	}}
	svc := NewService(store)
	ctx := context.Background()

	// Week 11 (Mar 11-17) against week 10 (Mar 4-10): +50%.
	st, err := svc.PeriodStats(ctx, KindWeek, 2024, 11)
	if err != nil {
		t.Fatalf("week 11: %v", err)
	}
	if st.Summary.GrowthRate != 0.5 {
		t.Errorf("growth = %v, want 0.5", st.Summary.GrowthRate)
	}

	// Week 10 has no predecessor data: growth must be 0, not infinity.
	st, err = svc.PeriodStats(ctx, KindWeek, 2024, 10)
	if err != nil {
		t.Fatalf("week 10: %v", err)
	}
	if st.Summary.GrowthRate != 0 {
		t.Errorf("growth with empty baseline = %v, want 0", st.Summary.GrowthRate)
	}
}

func TestPeriodStatsEmptyPeriod(t *testing.T) {
	svc := NewService(&fakeStore{})
	st, err := svc.PeriodStats(context.Background(), KindMonth, 2024, 3)
	if err != nil {
		t.Fatalf("empty period: %v", err)
	}
	if st.Summary.TotalRevenue != 0 || st.Summary.MovieCount != 0 || len(st.Rankings) != 0 {
		t.Errorf("empty period not zero-valued: %+v", st)
	}
}

func TestPeriodStatsRankingOrder(t *testing.T) {
	store := &fakeStore{rows: []ledgerRow{
		{movieID: 1, name: "沙丘", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 500},
		{movieID: 2, name: "奧本海默", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 900},
		{movieID: 1, name: "沙丘", start: date(2024, 3, 11), end: date(2024, 3, 17), weekly: 600},
	}}
	svc := NewService(store)

	st, err := svc.PeriodStats(context.Background(), KindMonth, 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Rankings) != 2 {
		t.Fatalf("ranking size = %d, want 2", len(st.Rankings))
	}
	// 沙丘 sums to 1100 across two weeks and outranks 奧本海默's 900.
	if st.Rankings[0].Name != "沙丘" || st.Rankings[0].Revenue != 1100 || st.Rankings[0].Rank != 1 {
		t.Errorf("first rank = %+v", st.Rankings[0])
	}
	if st.Rankings[1].Rank != 2 {
		t.Errorf("second rank = %d, want 2", st.Rankings[1].Rank)
	}
}

// The all-time board ranks by the peak cumulative figure, not a sum of
// weekly deltas; a weekly sum would double-count revenue already folded
// into source-supplied cumulative totals.
func TestAllTimeStatsUsesCumulativePeak(t *testing.T) {
	store := &fakeStore{rows: []ledgerRow{
		{movieID: 1, name: "沙丘", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 500, cumulative: 8000},
		{movieID: 1, name: "沙丘", start: date(2024, 3, 11), end: date(2024, 3, 17), weekly: 300, cumulative: 8300},
		{movieID: 2, name: "奧本海默", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 900, cumulative: 900},
	}}
	svc := NewService(store)

	st, err := svc.PeriodStats(context.Background(), KindAllTime, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if st.Rankings[0].Name != "沙丘" || st.Rankings[0].Revenue != 8300 {
		t.Errorf("all-time leader = %+v, want 沙丘 at 8300", st.Rankings[0])
	}
	if st.Summary.StartDate != "2024-03-04" {
		t.Errorf("start date = %s, want ledger minimum", st.Summary.StartDate)
	}
	if st.Summary.MovieCount != 2 {
		t.Errorf("movie count = %d, want 2", st.Summary.MovieCount)
	}
}

// Three consecutive weeks of one movie: the week view returns only that
// week's delta, and the all-time view reports the source-supplied
// cumulative peak rather than the 450 a naive delta sum would give.
func TestPeriodStatsThreeWeekRun(t *testing.T) {
	store := &fakeStore{rows: []ledgerRow{
		{movieID: 1, name: "功夫熊貓4", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 100, cumulative: 600},
		{movieID: 1, name: "功夫熊貓4", start: date(2024, 3, 11), end: date(2024, 3, 17), weekly: 200, cumulative: 800},
		{movieID: 1, name: "功夫熊貓4", start: date(2024, 3, 18), end: date(2024, 3, 24), weekly: 150, cumulative: 950},
	}}
	svc := NewService(store)
	ctx := context.Background()

	mid, err := svc.PeriodStats(ctx, KindWeek, 2024, 11)
	if err != nil {
		t.Fatal(err)
	}
	if mid.Summary.TotalRevenue != 200 {
		t.Errorf("middle week total = %d, want 200", mid.Summary.TotalRevenue)
	}

	all, err := svc.PeriodStats(ctx, KindAllTime, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if all.Rankings[0].Revenue != 950 {
		t.Errorf("all-time revenue = %d, want cumulative peak 950, not the delta sum", all.Rankings[0].Revenue)
	}
}

func TestWeeklyMarketStats(t *testing.T) {
	store := &fakeStore{rows: []ledgerRow{
		{movieID: 1, name: "沙丘", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 1000},
		{movieID: 2, name: "奧本海默", start: date(2024, 3, 4), end: date(2024, 3, 10), weekly: 600},
		{movieID: 1, name: "沙丘", start: date(2024, 3, 11), end: date(2024, 3, 17), weekly: 800},
	}}
	svc := NewService(store)

	weeks, err := svc.WeeklyMarketStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 {
		t.Fatalf("weeks = %d, want 2", len(weeks))
	}
	// Newest week first.
	if weeks[0].EndDate != "2024-03-17" {
		t.Errorf("first entry end = %s, want newest week", weeks[0].EndDate)
	}
	if weeks[0].TotalRevenue != 800 || weeks[0].MovieCount != 1 {
		t.Errorf("newest week = %+v", weeks[0])
	}
	// Growth of the newest week against the prior one: 800 vs 1600.
	if weeks[0].GrowthRate != -0.5 {
		t.Errorf("growth = %v, want -0.5", weeks[0].GrowthRate)
	}
	// The oldest week has no baseline.
	if weeks[1].GrowthRate != 0 {
		t.Errorf("oldest week growth = %v, want 0", weeks[1].GrowthRate)
	}
	if weeks[1].TopMovie != "沙丘" {
		t.Errorf("top movie = %s, want 沙丘", weeks[1].TopMovie)
	}
	if weeks[1].Year != 2024 || weeks[1].Week != 10 {
		t.Errorf("iso week = %d/%d, want 2024/10", weeks[1].Year, weeks[1].Week)
	}
}

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		name     string
		cur, prv int64
		want     float64
	}{
		{"increase", 150, 100, 0.5},
		{"decrease", 50, 100, -0.5},
		{"flat", 100, 100, 0},
		{"zero baseline", 100, 0, 0},
		{"negative baseline", 100, -5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := growthRate(tc.cur, tc.prv); got != tc.want {
				t.Errorf("growthRate(%d, %d) = %v, want %v", tc.cur, tc.prv, got, tc.want)
			}
		})
	}
}
