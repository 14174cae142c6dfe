package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mindful-journal/journal-backend/internal/models"
	"github.com/mindful-journal/journal-backend/internal/store"
)

// AnalyticsService computes per-user journal statistics.
type AnalyticsService struct {
	journals store.JournalStore
	loc      *time.Location
	now      func() time.Time
}

func NewAnalyticsService(journals store.JournalStore, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{journals: journals, loc: loc, now: time.Now}
}

func (s *AnalyticsService) ForUser(ctx context.Context, userID string) (*models.Analytics, error) {
	journals, err := s.journals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	a := ComputeAnalytics(journals, s.now(), s.loc)
	return &a, nil
}

// ComputeAnalytics derives the statistics for one user's entries, in any
// order. Calendar days and months are taken in loc.
func ComputeAnalytics(journals []models.Journal, now time.Time, loc *time.Location) models.Analytics {
	a := models.Analytics{
		TotalEntries:         len(journals),
		MoodDistribution:     make(map[string]int),
		WritingStreak:        WritingStreak(journals, loc),
		AverageWordsPerEntry: AverageWordsPerEntry(journals),
	}

	ny, nm, _ := now.In(loc).Date()
	for _, j := range journals {
		y, m, _ := j.CreatedAt.In(loc).Date()
		if y == ny && m == nm {
			a.EntriesThisMonth++
		}
		a.MoodDistribution[j.Mood]++
	}
	return a
}

// WritingStreak counts consecutive calendar days walking back from the most
// recent entry date. It does not require that date to be today.
func WritingStreak(journals []models.Journal, loc *time.Location) int {
	if len(journals) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{}, len(journals))
	days := make([]time.Time, 0, len(journals))
	for _, j := range journals {
		d := calendarDay(j.CreatedAt, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(a, b int) bool { return days[a].After(days[b]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// calendarDay maps t to midnight UTC of its date in loc, so day arithmetic
// is unaffected by DST transitions in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AverageWordsPerEntry is the whitespace-separated token count per entry,
// rounded half up.
func AverageWordsPerEntry(journals []models.Journal) int {
	n := len(journals)
	if n == 0 {
		return 0
	}
	total := 0
	for _, j := range journals {
		total += len(strings.Fields(j.Content))
	}
	return (2*total + n) / (2 * n)
}
