package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var _ Repository = (*postgresRepository)(nil)

const postColumns = "id, title, description, image_url, category, scheduled_at, published_at, created_at"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(sqlDB *sql.DB) Repository {
	return &postgresRepository{db: sqlDB}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		p                        Post
		description, image, cat  sql.NullString
		scheduledAt, publishedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Title, &description, &image, &cat, &scheduledAt, &publishedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Description = nullString(description)
	p.ImageURL = nullString(image)
	p.Category = nullString(cat)
	p.ScheduledAt = nullTime(scheduledAt)
	p.PublishedAt = nullTime(publishedAt)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, f Fields) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, description, image_url, category, scheduled_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+postColumns,
		f.Title, f.Description, f.ImageURL, f.Category, f.ScheduledAt, f.PublishedAt,
	)
	p, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, params ListParams) ([]*Post, error) {
	var (
		where []string
		args  []any
	)
	if params.Category != "" {
		args = append(args, likeExact(params.Category))
		where = append(where, fmt.Sprintf("category ILIKE $%d", len(args)))
	}

	order := "published_at DESC NULLS FIRST, created_at DESC"
	if params.Status != nil {
		switch *params.Status {
		case Scheduled:
			where = append(where, "published_at IS NULL")
			order = "scheduled_at ASC NULLS FIRST, created_at DESC"
		case Published:
			where = append(where, "published_at IS NOT NULL")
		}
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + order

	return r.query(ctx, "list posts", query, args...)
}

func (r *postgresRepository) ListByCategory(ctx context.Context, category string) ([]*Post, error) {
	return r.query(ctx, "list posts by category",
		`SELECT `+postColumns+` FROM posts WHERE category ILIKE $1 ORDER BY created_at DESC`,
		likeExact(category),
	)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, f Fields) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE posts
		SET title = $2, description = $3, image_url = $4, category = $5, scheduled_at = $6, published_at = $7
		WHERE id = $1
		RETURNING `+postColumns,
		id, f.Title, f.Description, f.ImageURL, f.Category, f.ScheduledAt, f.PublishedAt,
	)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *postgresRepository) Categories(ctx context.Context) ([]CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT MIN(category), COUNT(*) FROM posts
		WHERE category IS NOT NULL AND published_at IS NOT NULL
		GROUP BY LOWER(category)
		ORDER BY LOWER(category)`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []CategorySummary{}
	for rows.Next() {
		var c CategorySummary
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepository) ListDue(ctx context.Context, now time.Time) ([]*Post, error) {
	return r.query(ctx, "list due posts",
		`SELECT `+postColumns+` FROM posts
		WHERE scheduled_at <= $1 AND published_at IS NULL
		ORDER BY scheduled_at ASC`,
		now.UTC(),
	)
}

func (r *postgresRepository) MarkPublished(ctx context.Context, published map[uuid.UUID]time.Time) ([]uuid.UUID, error) {
	if len(published) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(published))
	stamps := make([]string, 0, len(published))
	for id, at := range published {
		ids = append(ids, id.String())
		stamps = append(stamps, at.UTC().Format(time.RFC3339Nano))
	}
	rows, err := r.db.QueryContext(ctx,
		`UPDATE posts AS p SET published_at = v.published_at
		FROM UNNEST($1::uuid[], $2::timestamptz[]) AS v(id, published_at)
		WHERE p.id = v.id AND p.published_at IS NULL
		RETURNING p.id`,
		pq.Array(ids), pq.Array(stamps),
	)
	if err != nil {
		return nil, fmt.Errorf("mark posts published: %w", err)
	}
	defer rows.Close()

	changed := make([]uuid.UUID, 0, len(published))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("mark posts published: scan: %w", err)
		}
		changed = append(changed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mark posts published: %w", err)
	}
	return changed, nil
}

func (r *postgresRepository) query(ctx context.Context, op, query string, args ...any) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []*Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// likeExact escapes LIKE wildcards so ILIKE behaves as a case-insensitive
// equality check.
func likeExact(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(s))
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
