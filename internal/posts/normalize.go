package posts

import (
	"strings"
	"time"
)

// scheduleLayouts are tried in order. Layouts without a zone parse as UTC;
// the HTML datetime-local form submits the minute-precision one.
var scheduleLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize validates raw input and derives the stored columns at instant now.
//
// A post without scheduledAt, or with one at or before now, is published at
// now. A post scheduled strictly after now gets a nil PublishedAt and is left
// for the lifecycle engine. Updates go through the same policy, so rewriting a
// published post with a future scheduledAt moves it back to scheduled.
func Normalize(in Input, now time.Time) (Fields, error) {
	title := trimmed(in.Title)
	if title == nil {
		return Fields{}, &ValidationError{Field: "title", Message: "is required."}
	}

	f := Fields{
		Title:       *title,
		Description: trimmed(in.Description),
		ImageURL:    trimmed(in.ImageURL),
		Category:    trimmed(in.Category),
	}

	published := now
	if raw := trimmed(in.ScheduledAt); raw != nil {
		at, ok := parseSchedule(*raw)
		if !ok {
			return Fields{}, &ValidationError{Field: "scheduledAt", Message: "must be a valid date string."}
		}
		f.ScheduledAt = &at
		if at.After(now) {
			return f, nil
		}
	}
	f.PublishedAt = &published
	return f, nil
}

func parseSchedule(s string) (time.Time, bool) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
