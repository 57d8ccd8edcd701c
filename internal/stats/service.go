package stats

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// RankingRow is one movie's aggregate inside a period, as produced by
// the storage collaborator.
type RankingRow struct {
	MovieID     uint64
	Name        string
	ReleaseDate *time.Time
	Revenue     int64
	Tickets     int64
}

// RegionShare is one region's showtime total for a date.
type RegionShare struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

// TrendPoint is one reporting week's market-wide revenue total.
type TrendPoint struct {
	End     time.Time
	Revenue int64
}

// WeeklyRevenueRow is one ledger row joined with its movie name, used
// to build the week-over-week market series.
type WeeklyRevenueRow struct {
	Start     time.Time
	End       time.Time
	Revenue   int64
	MovieName string
}

// CountryRevenue is one country's revenue total for a reporting week.
type CountryRevenue struct {
	Country string
	Revenue int64
}

// Store is the query surface the aggregators need from the storage
// collaborator.  Implementations must treat date filters on the weekly
// ledger as inclusive bounds on report_date_start: that field alone
// decides which period a record belongs to, so a week straddling a
// month or year boundary is never counted twice.
type Store interface {
	// SumWeeklyRevenue sums weekly_revenue over records whose
	// report_date_start lies in [start, end].
	SumWeeklyRevenue(ctx context.Context, start, end time.Time) (int64, error)
	// TotalWeeklyRevenue sums weekly_revenue over the entire ledger.
	TotalWeeklyRevenue(ctx context.Context) (int64, error)
	// CountDistinctMovies counts distinct movie ids in [start, end].
	CountDistinctMovies(ctx context.Context, start, end time.Time) (int, error)
	// CountMovies counts every canonical movie.
	CountMovies(ctx context.Context) (int, error)
	// PeriodRankings sums weekly revenue and tickets per movie inside
	// [start, end], ordered by revenue descending.
	PeriodRankings(ctx context.Context, start, end time.Time) ([]RankingRow, error)
	// AllTimeRankings ranks movies by MAX(cumulative_revenue), the
	// authoritative running total, ordered descending.
	AllTimeRankings(ctx context.Context, limit int) ([]RankingRow, error)
	// MinReportDateStart returns the earliest ledger date, ok=false on
	// an empty ledger.
	MinReportDateStart(ctx context.Context) (time.Time, bool, error)

	// MarketShareByRegion sums showtime counts per region for a date,
	// ordered by count descending.
	MarketShareByRegion(ctx context.Context, date time.Time) ([]RegionShare, error)
	// RecentTrend returns the most recent n distinct report_date_end
	// values that have positive weekly revenue, newest first.
	RecentTrend(ctx context.Context, n int) ([]TrendPoint, error)

	// WeeklyRevenueRows returns every ledger row with a movie name,
	// any order.
	WeeklyRevenueRows(ctx context.Context) ([]WeeklyRevenueRow, error)
	// MaxReportDateEnd returns the latest reporting week end, ok=false
	// on an empty ledger.
	MaxReportDateEnd(ctx context.Context) (time.Time, bool, error)
	// RevenueByCountryForWeek sums weekly revenue per movie country
	// for the reporting week ending at end.
	RevenueByCountryForWeek(ctx context.Context, end time.Time) ([]CountryRevenue, error)
	// SumRevenueByWeekEnd sums weekly revenue for one reporting week.
	SumRevenueByWeekEnd(ctx context.Context, end time.Time) (int64, error)
	// SumRevenueByEndBetween sums weekly revenue over records whose
	// report_date_end lies in [from, to].
	SumRevenueByEndBetween(ctx context.Context, from, to time.Time) (int64, error)
	// CountActiveMovies counts distinct movies with weekly revenue
	// above the floor in the reporting week ending at end.
	CountActiveMovies(ctx context.Context, end time.Time, minRevenue int64) (int, error)
	// CountReleasesBetween counts movies whose release date lies in
	// [from, to].
	CountReleasesBetween(ctx context.Context, from, to time.Time) (int, error)
}

// allTimeRankingLimit caps the all-time leaderboard; beyond this depth
// the long tail is noise.
const allTimeRankingLimit = 200

// Service computes the aggregate views served to clients.
type Service struct {
	store Store
}

// NewService wires the aggregator to its storage collaborator.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// PeriodSummary is the headline figures for one period.
type PeriodSummary struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalRevenue int64   `json:"total_revenue"`
	GrowthRate   float64 `json:"growth_rate"`
	MovieCount   int     `json:"movie_count"`
}

// RankedMovie is one leaderboard entry.
type RankedMovie struct {
	Rank        int    `json:"rank"`
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Revenue     int64  `json:"revenue"`
	Tickets     int64  `json:"tickets"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// PeriodStats is the full response for one period: summary plus
// per-movie rankings.
type PeriodStats struct {
	Summary  PeriodSummary `json:"summary"`
	Rankings []RankedMovie `json:"rankings"`
}

// PeriodStats computes the summary and rankings for the requested
// period.  A period with no data yields a zero-valued summary and an
// empty ranking list, never an error; only a malformed specification
// fails (with ErrBadPeriod).
func (s *Service) PeriodStats(ctx context.Context, kind PeriodKind, year, number int) (*PeriodStats, error) {
	p, err := NewPeriod(kind, year, number)
	if err != nil {
		return nil, err
	}
	if !p.Bounded {
		return s.allTimeStats(ctx)
	}

	total, err := s.store.SumWeeklyRevenue(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("period revenue: %w", err)
	}
	count, err := s.store.CountDistinctMovies(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("period movie count: %w", err)
	}
	rows, err := s.store.PeriodRankings(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("period rankings: %w", err)
	}

	growth := 0.0
	if prev, ok := p.Previous(); ok {
		prevTotal, err := s.store.SumWeeklyRevenue(ctx, prev.Start, prev.End)
		if err != nil {
			return nil, fmt.Errorf("previous period revenue: %w", err)
		}
		growth = growthRate(total, prevTotal)
	}

	return &PeriodStats{
		Summary: PeriodSummary{
			StartDate:    p.Start.Format("2006-01-02"),
			EndDate:      p.End.Format("2006-01-02"),
			TotalRevenue: total,
			GrowthRate:   growth,
			MovieCount:   count,
		},
		Rankings: rank(rows),
	}, nil
}

// allTimeStats spans the whole ledger.  The ranking uses each movie's
// maximum cumulative revenue rather than a sum of weekly deltas:
// summing every delta across all time would duplicate revenue already
// folded into source-supplied cumulative figures.
func (s *Service) allTimeStats(ctx context.Context) (*PeriodStats, error) {
	total, err := s.store.TotalWeeklyRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("all-time revenue: %w", err)
	}
	count, err := s.store.CountMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("movie count: %w", err)
	}
	rows, err := s.store.AllTimeRankings(ctx, allTimeRankingLimit)
	if err != nil {
		return nil, fmt.Errorf("all-time rankings: %w", err)
	}

	startDate := ""
	if min, ok, err := s.store.MinReportDateStart(ctx); err != nil {
		return nil, fmt.Errorf("ledger start: %w", err)
	} else if ok {
		startDate = min.Format("2006-01-02")
	}

	return &PeriodStats{
		Summary: PeriodSummary{
			StartDate:    startDate,
			EndDate:      time.Now().UTC().Format("2006-01-02"),
			TotalRevenue: total,
			GrowthRate:   0,
			MovieCount:   count,
		},
		Rankings: rank(rows),
	}, nil
}

// WeekStat is one reporting week's market totals in the week-over-week
// series.
type WeekStat struct {
	Year         int     `json:"year"`
	Week         int     `json:"week"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalRevenue int64   `json:"total_revenue"`
	MovieCount   int     `json:"movie_count"`
	TopMovie     string  `json:"top_movie"`
	GrowthRate   float64 `json:"growth_rate"`
}

// WeeklyMarketStats builds the full week-over-week market series:
// per-week totals, movie counts, the top-grossing movie and the growth
// rate against the prior reporting week.  Newest week first.
func (s *Service) WeeklyMarketStats(ctx context.Context) ([]WeekStat, error) {
	rows, err := s.store.WeeklyRevenueRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("weekly rows: %w", err)
	}

	byEnd := make(map[time.Time]*WeekStat)
	top := make(map[time.Time]int64)
	var order []time.Time
	for _, r := range rows {
		ws, ok := byEnd[r.End]
		if !ok {
			year, week := r.End.ISOWeek()
			ws = &WeekStat{
				Year:      year,
				Week:      week,
				StartDate: r.Start.Format("2006-01-02"),
				EndDate:   r.End.Format("2006-01-02"),
				TopMovie:  "N/A",
			}
			byEnd[r.End] = ws
			top[r.End] = -1
			order = append(order, r.End)
		}
		ws.TotalRevenue += r.Revenue
		ws.MovieCount++
		if r.Revenue > top[r.End] {
			top[r.End] = r.Revenue
			ws.TopMovie = r.MovieName
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	out := make([]WeekStat, 0, len(order))
	var prev int64
	for i, end := range order {
		ws := byEnd[end]
		if i > 0 {
			ws.GrowthRate = growthRate(ws.TotalRevenue, prev)
		}
		prev = ws.TotalRevenue
		out = append(out, *ws)
	}

	// Newest first for the client.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func rank(rows []RankingRow) []RankedMovie {
	out := make([]RankedMovie, 0, len(rows))
	for i, r := range rows {
		rm := RankedMovie{
			Rank:    i + 1,
			ID:      r.MovieID,
			Name:    r.Name,
			Revenue: r.Revenue,
			Tickets: r.Tickets,
		}
		if r.ReleaseDate != nil {
			rm.ReleaseDate = r.ReleaseDate.Format("2006-01-02")
		}
		out = append(out, rm)
	}
	return out
}

// growthRate never divides by zero: a zero or missing baseline yields
// 0, not infinity.
func growthRate(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous)
}
