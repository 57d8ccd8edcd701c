package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RawRecord is the validated intermediate form of one scraped row.
// Sources name their columns inconsistently, so each target field is
// resolved through an ordered list of acceptable source keys before the
// row reaches the reconciler.  Numeric fields that fail to coerce are
// left nil rather than failing the row; a single malformed field must
// not lose an otherwise-valid record.
type RawRecord struct {
	Title             string
	Country           string
	Distributor       string
	ReleaseDate       *time.Time
	TheaterCount      *int64
	WeeklyRevenue     *int64
	CumulativeRevenue *int64
	WeeklyTickets     *int64
	CumulativeTickets *int64
}

// fieldAliases maps each target field to the source keys that may
// supply it, in priority order.  The first key present in the row wins.
var fieldAliases = map[string][]string{
	"title":              {"片名", "中文片名"},
	"country":            {"國別"},
	"distributor":        {"出品"},
	"release_date":       {"上映日"},
	"theater_count":      {"院數"},
	"weekly_revenue":     {"金額", "銷售金額"},
	"cumulative_revenue": {"總金額"},
	"weekly_tickets":     {"票數", "銷售票數"},
	"cumulative_tickets": {"累積票數"},
}

// ParseRawRecord maps one source row into a RawRecord using the field
// alias table.  It is total: any row produces a record, though records
// without a title are rejected later by the reconciler.
func ParseRawRecord(row map[string]any) RawRecord {
	return RawRecord{
		Title:             coerceString(pick(row, "title")),
		Country:           coerceString(pick(row, "country")),
		Distributor:       coerceString(pick(row, "distributor")),
		ReleaseDate:       coerceDate(pick(row, "release_date")),
		TheaterCount:      coerceInt(pick(row, "theater_count")),
		WeeklyRevenue:     coerceInt(pick(row, "weekly_revenue")),
		CumulativeRevenue: coerceInt(pick(row, "cumulative_revenue")),
		WeeklyTickets:     coerceInt(pick(row, "weekly_tickets")),
		CumulativeTickets: coerceInt(pick(row, "cumulative_tickets")),
	}
}

// pick returns the first aliased value present and non-nil in the row.
func pick(row map[string]any, field string) any {
	for _, key := range fieldAliases[field] {
		if v, ok := row[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// coerceInt accepts the numeric shapes sources actually produce:
// thousands-separated strings, plain integer strings, floats and
// json.Number.  Anything else coerces to nil.
func coerceInt(v any) *int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		n := int64(t)
		return &n
	case int64:
		n := t
		return &n
	case float64:
		n := int64(t)
		return &n
	case json.Number:
		return coerceInt(string(t))
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n := int64(f)
			return &n
		}
		return nil
	default:
		return nil
	}
}

// releaseDateLayouts are tried in order when parsing a release date.
var releaseDateLayouts = []string{"2006/01/02", "2006-01-02"}

func coerceDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range releaseDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
