package recordings

import (
	"sort"
	"strings"
	"time"

	"github.com/audiohub/backend/internal/models"
)

// SortOrder selects the library sort. Timestamp and title sorts are lexical
// (the timestamp format is a fixed sortable string); most-words sorts by
// parsed count descending. All sorts are stable, preserving original order
// for ties.
type SortOrder string

const (
	SortNewestFirst SortOrder = "newest"
	SortOldestFirst SortOrder = "oldest"
	SortTitleAsc    SortOrder = "title_asc"
	SortTitleDesc   SortOrder = "title_desc"
	SortMostWords   SortOrder = "most_words"
)

// ParseSortOrder maps a query value to a sort order, defaulting to newest first.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldestFirst, SortTitleAsc, SortTitleDesc, SortMostWords:
		return SortOrder(s)
	default:
		return SortNewestFirst
	}
}

// ViewQuery filters and orders the in-memory table. An empty category set
// and empty search mean "no filtering".
type ViewQuery struct {
	Categories []string
	Search     string
	Sort       SortOrder
}

// View applies the query to rows and returns a new ordered slice; the input
// is never mutated.
func View(rows []models.Recording, q ViewQuery) []models.Recording {
	out := make([]models.Recording, 0, len(rows))
	cats := make(map[string]bool, len(q.Categories))
	for _, c := range q.Categories {
		cats[c] = true
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, r := range rows {
		if len(cats) > 0 && !cats[r.Category] {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Title), search) {
			continue
		}
		out = append(out, r)
	}
	switch q.Sort {
	case SortOldestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	case SortTitleAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	case SortTitleDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title > out[j].Title })
	case SortMostWords:
		sort.SliceStable(out, func(i, j int) bool { return out[i].WordCount() > out[j].WordCount() })
	default: // newest first
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	}
	return out
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Stats are the dashboard aggregates, recomputed on every view.
type Stats struct {
	Total              int             `json:"total"`
	TotalWords         int             `json:"total_words"`
	AvgWords           int             `json:"avg_words"`
	Categories         int             `json:"categories"`
	MostCommonCategory string          `json:"most_common_category,omitempty"`
	Today              int             `json:"today"`
	ThisWeek           int             `json:"this_week"`
	CategoryCounts     []CategoryCount `json:"category_counts"`
}

// ComputeStats derives dashboard aggregates from rows. Unparseable word
// counts contribute zero without excluding the row from any count. Today and
// this-week use lexical comparison against computed date cutoffs.
func ComputeStats(rows []models.Recording, now time.Time) Stats {
	s := Stats{Total: len(rows)}
	today := now.Format("2006-01-02")
	weekAgo := now.AddDate(0, 0, -7).Format("2006-01-02")

	counts := map[string]int{}
	var order []string
	for _, r := range rows {
		s.TotalWords += r.WordCount()
		if strings.Contains(r.Timestamp, today) {
			s.Today++
		}
		if r.Timestamp >= weekAgo {
			s.ThisWeek++
		}
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}
	if s.Total > 0 {
		s.AvgWords = s.TotalWords / s.Total
	}
	s.Categories = len(counts)

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	for _, cat := range order {
		s.CategoryCounts = append(s.CategoryCounts, CategoryCount{
			Category: cat,
			Count:    counts[cat],
			Percent:  float64(counts[cat]) / float64(s.Total) * 100,
		})
	}
	if len(s.CategoryCounts) > 0 {
		s.MostCommonCategory = s.CategoryCounts[0].Category
	}
	return s
}

// CategoryInsight aggregates one category's recordings.
type CategoryInsight struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	TotalWords int    `json:"total_words"`
	AvgWords   int    `json:"avg_words"`
}

// DailyCount is the number of recordings created on one date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Analytics are the insight-page derivations.
type Analytics struct {
	TopRecordings    []models.Recording `json:"top_recordings"`
	CategoryInsights []CategoryInsight  `json:"category_insights"`
	DailyCounts      []DailyCount       `json:"daily_counts"`
}

// ComputeAnalytics derives the insights view: top-N rows by parsed word
// count, per-category totals, and per-day counts. Categories outside the
// configured set are grouped by their raw value; known categories match
// case-insensitively so cosmetic variants fold together.
func ComputeAnalytics(rows []models.Recording, categories []string, topN int) Analytics {
	var a Analytics

	top := View(rows, ViewQuery{Sort: SortMostWords})
	if len(top) > topN {
		top = top[:topN]
	}
	a.TopRecordings = top

	canon := func(cat string) string {
		for _, c := range categories {
			if strings.EqualFold(c, cat) {
				return c
			}
		}
		return cat
	}
	insights := map[string]*CategoryInsight{}
	var order []string
	days := map[string]int{}
	for _, r := range rows {
		key := canon(r.Category)
		in, ok := insights[key]
		if !ok {
			in = &CategoryInsight{Category: key}
			insights[key] = in
			order = append(order, key)
		}
		in.Count++
		in.TotalWords += r.WordCount()
		if len(r.Timestamp) >= 10 {
			days[r.Timestamp[:10]]++
		}
	}
	sort.Strings(order)
	for _, key := range order {
		in := insights[key]
		if in.Count > 0 {
			in.AvgWords = in.TotalWords / in.Count
		}
		a.CategoryInsights = append(a.CategoryInsights, *in)
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		a.DailyCounts = append(a.DailyCounts, DailyCount{Date: d, Count: days[d]})
	}
	return a
}
