package posts

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{"id", "title", "description", "image_url", "category", "scheduled_at", "published_at", "created_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	cat := "Science"

	mock.ExpectQuery(`INSERT INTO posts \(title, description, image_url, category, scheduled_at, published_at\)`).
		WithArgs("Tardigrades", nil, nil, "Science", nil, testNow).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(id.String(), "Tardigrades", nil, nil, "Science", nil, testNow, testNow))

	p, err := repo.Create(context.Background(), Fields{Title: "Tardigrades", Category: &cat, PublishedAt: &testNow})
	require.NoError(t, err)

	assert.Equal(t, id, p.ID)
	assert.Nil(t, p.Description)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Science", *p.Category)
	assert.Equal(t, Published, p.Status())
}

func TestPostgresRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM posts WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepository_GetByIDDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM posts WHERE id = \$1`).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresRepository_ListFilters(t *testing.T) {
	scheduled, published := Scheduled, Published
	tests := []struct {
		name   string
		params ListParams
		query  string
		args   []driver.Value
	}{
		{
			name:   "all",
			params: ListParams{},
			query:  `FROM posts ORDER BY published_at DESC NULLS FIRST, created_at DESC$`,
		},
		{
			name:   "category",
			params: ListParams{Category: " 100%_real "},
			query:  `WHERE category ILIKE \$1 ORDER BY published_at DESC`,
			args:   []driver.Value{`100\%\_real`},
		},
		{
			name:   "scheduled",
			params: ListParams{Status: &scheduled},
			query:  `WHERE published_at IS NULL ORDER BY scheduled_at ASC NULLS FIRST, created_at DESC$`,
		},
		{
			name:   "published in category",
			params: ListParams{Category: "space", Status: &published},
			query:  `WHERE category ILIKE \$1 AND published_at IS NOT NULL ORDER BY published_at DESC`,
			args:   []driver.Value{"space"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			exp := mock.ExpectQuery(tt.query)
			if tt.args != nil {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnRows(sqlmock.NewRows(postRowColumns))

			got, err := repo.List(context.Background(), tt.params)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestPostgresRepository_ListByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	later := testNow.Add(time.Hour)

	mock.ExpectQuery(`WHERE category ILIKE \$1 ORDER BY created_at DESC`).
		WithArgs("science").
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(uuid.NewString(), "b", nil, nil, "Science", later, nil, later).
			AddRow(uuid.NewString(), "a", "desc", nil, "science", nil, testNow, testNow))

	got, err := repo.ListByCategory(context.Background(), "science")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Scheduled, got[0].Status())
	assert.Equal(t, Published, got[1].Status())
	require.NotNil(t, got[1].Description)
	assert.Equal(t, "desc", *got[1].Description)
}

func TestPostgresRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE posts\s+SET title = \$2`).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	_, err := repo.Update(context.Background(), uuid.New(), Fields{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepository_DeleteMissingRowIsNotAnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), uuid.New()))
}

func TestPostgresRepository_Categories(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`GROUP BY LOWER\(category\)`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "count"}).
			AddRow("Animals", int64(3)).
			AddRow("Space", int64(1)))

	got, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CategorySummary{{Name: "Animals", Count: 3}, {Name: "Space", Count: 1}}, got)
}

func TestPostgresRepository_ListDue(t *testing.T) {
	repo, mock := newMockRepo(t)
	due := testNow.Add(-time.Minute)

	mock.ExpectQuery(`WHERE scheduled_at <= \$1 AND published_at IS NULL\s+ORDER BY scheduled_at ASC`).
		WithArgs(testNow).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(uuid.NewString(), "due", nil, nil, nil, due, nil, testNow))

	got, err := repo.ListDue(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].ScheduledAt.Equal(due))
	assert.Nil(t, got[0].PublishedAt)
}

func TestPostgresRepository_MarkPublished(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE posts AS p SET published_at = v.published_at\s+FROM UNNEST\(\$1::uuid\[\], \$2::timestamptz\[\]\)`+
		`\s+AS v\(id, published_at\)\s+WHERE p.id = v.id AND p.published_at IS NULL\s+RETURNING p.id`).
		WithArgs(`{"`+id.String()+`"}`, `{"2024-06-01T11:00:00Z"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

	changed, err := repo.MarkPublished(context.Background(), map[uuid.UUID]time.Time{id: testNow.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, changed)
}

func TestPostgresRepository_MarkPublishedSkipsAlreadyPublished(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`RETURNING p.id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	changed, err := repo.MarkPublished(context.Background(), map[uuid.UUID]time.Time{uuid.New(): testNow})
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestPostgresRepository_MarkPublishedEmpty(t *testing.T) {
	repo, _ := newMockRepo(t)
	changed, err := repo.MarkPublished(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, changed)
}

func TestPostgresRepository_MarkPublishedError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE posts AS p`).WillReturnError(errors.New("deadlock detected"))

	_, err := repo.MarkPublished(context.Background(), map[uuid.UUID]time.Time{uuid.New(): testNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mark posts published")
}

func TestLikeExact(t *testing.T) {
	assert.Equal(t, `a\_b\%c\\d`, likeExact(` a_b%c\d `))
	assert.Equal(t, "Science", likeExact("Science"))
}
