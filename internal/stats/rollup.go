package stats

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// MarketShare sums showtime counts per region for one date, largest
// region first.  A date with no showtime rows yields an empty slice.
func (s *Service) MarketShare(ctx context.Context, date time.Time) ([]RegionShare, error) {
	shares, err := s.store.MarketShareByRegion(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("market share: %w", err)
	}
	return shares, nil
}

// TrendWeek is one point of the revenue trend chart.
type TrendWeek struct {
	Year      int    `json:"year"`
	Week      int    `json:"week"`
	WeekLabel string `json:"week_label"`
	Revenue   int64  `json:"revenue"`
	Date      string `json:"date"`
}

// Trend returns the n most recent reporting weeks that recorded any
// positive revenue, in chronological order for charting.  Weeks absent
// from the ledger (historical backfill gaps) are skipped outright
// rather than zero-filled, so a gap never shows up as a fake crash in
// the chart.
func (s *Service) Trend(ctx context.Context, n int) ([]TrendWeek, error) {
	points, err := s.store.RecentTrend(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	// Store returns newest first; the chart wants oldest first.
	sort.Slice(points, func(i, j int) bool { return points[i].End.Before(points[j].End) })

	out := make([]TrendWeek, 0, len(points))
	for _, p := range points {
		year, week := p.End.ISOWeek()
		out = append(out, TrendWeek{
			Year:      year,
			Week:      week,
			WeekLabel: fmt.Sprintf("W%d", week),
			Revenue:   p.Revenue,
			Date:      p.End.Format("2006-01-02"),
		})
	}
	return out, nil
}

// Country groups for the dashboard pie chart.  Everything outside the
// named markets and Southeast Asia lands in 其他.
var (
	majorMarkets = map[string]bool{
		"台灣": true, "美國": true, "日本": true, "韓國": true, "香港": true,
	}
	seaCountries = map[string]bool{
		"泰國": true, "越南": true, "馬來西亞": true, "新加坡": true, "印尼": true, "菲律賓": true,
	}
)

// CountryShare is one country group's revenue slice.
type CountryShare struct {
	Country string `json:"country"`
	Revenue int64  `json:"revenue"`
}

// DashboardKPIs are the headline numbers of the dashboard.  The anchor
// for "current" is the latest reporting week in the ledger, not the
// wall clock, so the dashboard keeps working over stale data.
type DashboardKPIs struct {
	CurrentWeekTotal   int64 `json:"current_week_total"`
	CurrentMonthTotal  int64 `json:"current_month_total"`
	ActiveMovieCount   int   `json:"active_movie_count"`
	WeeklyNewReleases  int   `json:"weekly_new_releases"`
	MonthlyNewReleases int   `json:"monthly_new_releases"`
}

// Dashboard is the aggregate payload for the overview display.
type Dashboard struct {
	MarketShare []CountryShare `json:"market_share"`
	Trend       []TrendWeek    `json:"four_week_trend"`
	KPIs        DashboardKPIs  `json:"kpis"`
}

// activeMovieRevenueFloor filters out long-tail titles when counting
// movies still meaningfully on release.
const activeMovieRevenueFloor = 10000

// dashboardTrendWeeks is the depth of the dashboard's trend chart.
const dashboardTrendWeeks = 4

// Dashboard assembles country market share for the latest reporting
// week, the recent revenue trend and the KPI block.  An empty ledger
// yields an all-zero dashboard.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	anchor, ok, err := s.store.MaxReportDateEnd(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest week: %w", err)
	}
	if !ok {
		return &Dashboard{MarketShare: []CountryShare{}, Trend: []TrendWeek{}}, nil
	}

	byCountry, err := s.store.RevenueByCountryForWeek(ctx, anchor)
	if err != nil {
		return nil, fmt.Errorf("country revenue: %w", err)
	}
	share := groupCountries(byCountry)

	trend, err := s.Trend(ctx, dashboardTrendWeeks)
	if err != nil {
		return nil, err
	}

	weekTotal, err := s.store.SumRevenueByWeekEnd(ctx, anchor)
	if err != nil {
		return nil, fmt.Errorf("week total: %w", err)
	}
	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthTotal, err := s.store.SumRevenueByEndBetween(ctx, monthStart, anchor)
	if err != nil {
		return nil, fmt.Errorf("month total: %w", err)
	}
	active, err := s.store.CountActiveMovies(ctx, anchor, activeMovieRevenueFloor)
	if err != nil {
		return nil, fmt.Errorf("active movies: %w", err)
	}
	weeklyNew, err := s.store.CountReleasesBetween(ctx, anchor.AddDate(0, 0, -7), anchor)
	if err != nil {
		return nil, fmt.Errorf("weekly releases: %w", err)
	}
	monthlyNew, err := s.store.CountReleasesBetween(ctx, anchor.AddDate(0, 0, -30), anchor)
	if err != nil {
		return nil, fmt.Errorf("monthly releases: %w", err)
	}

	return &Dashboard{
		MarketShare: share,
		Trend:       trend,
		KPIs: DashboardKPIs{
			CurrentWeekTotal:   weekTotal,
			CurrentMonthTotal:  monthTotal,
			ActiveMovieCount:   active,
			WeeklyNewReleases:  weeklyNew,
			MonthlyNewReleases: monthlyNew,
		},
	}, nil
}

func groupCountries(rows []CountryRevenue) []CountryShare {
	totals := make(map[string]int64)
	for _, r := range rows {
		if r.Country == "" {
			continue
		}
		group := "其他"
		switch {
		case majorMarkets[r.Country]:
			group = r.Country
		case seaCountries[r.Country]:
			group = "東南亞"
		}
		totals[group] += r.Revenue
	}
	out := make([]CountryShare, 0, len(totals))
	for c, rev := range totals {
		out = append(out, CountryShare{Country: c, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}
