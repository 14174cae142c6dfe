package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mindful-journal/journal-backend/internal/models"
	"github.com/mindful-journal/journal-backend/internal/store"
	"github.com/mindful-journal/journal-backend/pkg/utils"
)

type CreateJournalInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

// UpdateJournalInput is a partial update. An unset or empty string leaves
// the field unchanged, so a field can never be cleared to "". Tags replace
// the old list whenever they are set, even to an empty list.
type UpdateJournalInput struct {
	Title   Optional[string]   `json:"title"`
	Content Optional[string]   `json:"content"`
	Mood    Optional[string]   `json:"mood"`
	Tags    Optional[[]string] `json:"tags"`
}

// JournalService is the owner-scoped CRUD surface over a JournalStore.
type JournalService struct {
	journals store.JournalStore
	loc      *time.Location
	now      func() time.Time
}

func NewJournalService(journals store.JournalStore, loc *time.Location) *JournalService {
	if loc == nil {
		loc = time.Local
	}
	return &JournalService{journals: journals, loc: loc, now: time.Now}
}

func (s *JournalService) Create(ctx context.Context, ownerID string, in CreateJournalInput) (*models.Journal, error) {
	now := s.timestamp()

	title := in.Title
	if title == "" {
		title = DefaultTitle(now.In(s.loc))
	}
	mood := in.Mood
	if mood == "" {
		mood = models.DefaultMood
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	journal := &models.Journal{
		ID:        utils.NewID(),
		UserID:    ownerID,
		Title:     title,
		Content:   in.Content,
		Mood:      mood,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.journals.Insert(ctx, journal); err != nil {
		return nil, fmt.Errorf("insert journal: %w", err)
	}
	return journal, nil
}

// List returns ownerID's entries newest first; entries created at the same
// instant keep their creation order.
func (s *JournalService) List(ctx context.Context, ownerID string) ([]models.Journal, error) {
	journals, err := s.journals.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	sort.SliceStable(journals, func(a, b int) bool {
		return journals[a].CreatedAt.After(journals[b].CreatedAt)
	})
	return journals, nil
}

func (s *JournalService) Get(ctx context.Context, ownerID, id string) (*models.Journal, error) {
	j, err := s.journals.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, notFoundOr(err, "get journal")
	}
	return j, nil
}

func (s *JournalService) Update(ctx context.Context, ownerID, id string, in UpdateJournalInput) (*models.Journal, error) {
	now := s.timestamp()
	j, err := s.journals.Update(ctx, ownerID, id, func(j *models.Journal) {
		if in.Title.Set && in.Title.Value != "" {
			j.Title = in.Title.Value
		}
		if in.Content.Set && in.Content.Value != "" {
			j.Content = in.Content.Value
		}
		if in.Mood.Set && in.Mood.Value != "" {
			j.Mood = in.Mood.Value
		}
		if in.Tags.Set {
			j.Tags = in.Tags.Value
			if j.Tags == nil {
				j.Tags = []string{}
			}
		}
		j.UpdatedAt = now
	})
	if err != nil {
		return nil, notFoundOr(err, "update journal")
	}
	return j, nil
}

func (s *JournalService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.journals.Delete(ctx, ownerID, id); err != nil {
		return notFoundOr(err, "delete journal")
	}
	return nil
}

// timestamp is the current time at the precision every store keeps, so a
// returned entry matches what a later read sees.
func (s *JournalService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// DefaultTitle renders "Journal Entry - January 5th, 2024".
func DefaultTitle(t time.Time) string {
	return fmt.Sprintf("Journal Entry - %s %s, %d", t.Month(), ordinal(t.Day()), t.Year())
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
