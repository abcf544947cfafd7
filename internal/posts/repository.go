package posts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f Fields) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	List(ctx context.Context, params ListParams) ([]*Post, error)
	ListByCategory(ctx context.Context, category string) ([]*Post, error)
	Update(ctx context.Context, id uuid.UUID, f Fields) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]CategorySummary, error)

	// ListDue returns posts with scheduled_at <= now and no published_at.
	ListDue(ctx context.Context, now time.Time) ([]*Post, error)
	// MarkPublished sets published_at for each id in one statement and returns
	// the ids it actually changed. Rows that already carry a published_at are
	// left untouched and are not returned.
	MarkPublished(ctx context.Context, published map[uuid.UUID]time.Time) ([]uuid.UUID, error)
}
