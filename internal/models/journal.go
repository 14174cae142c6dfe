package models

import (
	"time"
)

// DefaultMood is assigned to entries created without a mood.
const DefaultMood = "neutral"

// Journal represents a private journaling entry for a user
type Journal struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Mood      string    `bson:"mood" json:"mood"`
	Tags      []string  `bson:"tags" json:"tags"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Clone returns a copy that shares no slices with j.
func (j Journal) Clone() Journal {
	out := j
	out.Tags = make([]string, len(j.Tags))
	copy(out.Tags, j.Tags)
	return out
}
