package events

import (
	"time"

	"github.com/google/uuid"
)

const TypePostPublished = "post.published"

// Source tells consumers what moved the post into the published state.
type Source string

const (
	SourceAPI       Source = "api"
	SourceScheduler Source = "scheduler"
)

type PostPublishedPayload struct {
	PostID      uuid.UUID `json:"post_id"`
	Title       string    `json:"title"`
	Category    *string   `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Source      Source    `json:"source"`
}

type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(postID uuid.UUID, title string, category *string, publishedAt time.Time, source Source) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			PostID:      postID,
			Title:       title,
			Category:    category,
			PublishedAt: publishedAt.UTC(),
			Source:      source,
		},
	}
}
