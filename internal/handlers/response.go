package handlers

import (
	"time"

	"github.com/jeremyjsx/quickfacts/internal/posts"
)

// timestampLayout is UTC with millisecond precision, e.g. 2024-05-01T10:30:00.000Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type PostResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	ImageURL    *string      `json:"imageUrl"`
	Category    *string      `json:"category"`
	ScheduledAt *string      `json:"scheduledAt"`
	PublishedAt *string      `json:"publishedAt"`
	CreatedAt   *string      `json:"createdAt"`
	Status      posts.Status `json:"status"`
}

func toPostResponse(p *posts.Post) PostResponse {
	created := p.CreatedAt
	return PostResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		ScheduledAt: formatTime(p.ScheduledAt),
		PublishedAt: formatTime(p.PublishedAt),
		CreatedAt:   formatTime(&created),
		Status:      p.Status(),
	}
}

func toPostResponses(ps []*posts.Post) []PostResponse {
	out := make([]PostResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPostResponse(p))
	}
	return out
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}
