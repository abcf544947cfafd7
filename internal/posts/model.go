package posts

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	Scheduled Status = "scheduled"
	Published Status = "published"
)

// ParseStatus accepts the two lifecycle states; anything else is rejected.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case Scheduled, Published:
		return Status(s), true
	}
	return "", false
}

type Post struct {
	ID          uuid.UUID
	Title       string
	Description *string
	ImageURL    *string
	Category    *string
	ScheduledAt *time.Time
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// Status is derived from PublishedAt on every call and never stored.
func (p *Post) Status() Status {
	if p.PublishedAt != nil {
		return Published
	}
	return Scheduled
}

// Input is the raw, untrimmed payload of a create or update request.
type Input struct {
	Title       *string
	Description *string
	ImageURL    *string
	Category    *string
	ScheduledAt *string
}

// Fields is the canonical, normalized column set written on create and update.
type Fields struct {
	Title       string
	Description *string
	ImageURL    *string
	Category    *string
	ScheduledAt *time.Time
	PublishedAt *time.Time
}

type ListParams struct {
	Category string
	Status   *Status
}

type CategorySummary struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
