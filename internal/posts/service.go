package posts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jeremyjsx/quickfacts/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreatePost(ctx context.Context, in Input) (*Post, error) {
	fields, err := Normalize(in, s.now())
	if err != nil {
		return nil, err
	}
	post, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	if post.Status() == Published {
		s.announce(ctx, post)
	}
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPosts(ctx context.Context, params ListParams) ([]*Post, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]*Post, error) {
	return s.repo.ListByCategory(ctx, category)
}

// UpdatePost replaces every editable field of the post. The publish time is
// recomputed from the supplied scheduledAt exactly as on create.
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, in Input) (*Post, error) {
	fields, err := Normalize(in, s.now())
	if err != nil {
		return nil, err
	}
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if before.Status() == Scheduled && post.Status() == Published {
		s.announce(ctx, post)
	}
	return post, nil
}

// DeletePost succeeds whether or not the post existed.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]CategorySummary, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) announce(ctx context.Context, p *Post) {
	e := events.NewPostPublished(p.ID, p.Title, p.Category, *p.PublishedAt, events.SourceAPI)
	if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
		s.logger.Warn("publish post.published event failed", "post_id", p.ID, "error", err)
	}
}
