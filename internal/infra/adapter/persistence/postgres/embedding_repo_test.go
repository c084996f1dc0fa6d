package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"literary-analysis/internal/domain/entity"
	pg "literary-analysis/internal/infra/adapter/persistence/postgres"
)

const embeddedID = "5b0f7c1e-2a9d-4b55-9a43-1f0b6d1f7a10"

var embeddingColumns = []string{"id", "analysis_id", "model", "dimension", "embedding", "created_at", "updated_at"}

func newEmbeddingRepo(t *testing.T) (*pg.EmbeddingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return pg.NewEmbeddingRepo(db), mock
}

func sampleEmbedding() *entity.AnalysisEmbedding {
	return &entity.AnalysisEmbedding{
		AnalysisID: embeddedID,
		Model:      "text-embedding-3-small",
		Dimension:  3,
		Embedding:  []float32{0.1, 0.2, 0.3},
	}
}

func TestEmbeddingRepo_Upsert(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)
	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (analysis_id, model) DO UPDATE")).
		WithArgs(embeddedID, "text-embedding-3-small", 3, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	e := sampleEmbedding()
	require.NoError(t, repo.Upsert(context.Background(), e))
	assert.Equal(t, int64(42), e.ID)
	assert.Equal(t, now, e.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingRepo_Upsert_RejectsBeforeQuerying(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)

	mutate := func(f func(*entity.AnalysisEmbedding)) *entity.AnalysisEmbedding {
		e := sampleEmbedding()
		f(e)
		return e
	}
	for name, e := range map[string]*entity.AnalysisEmbedding{
		"nil":                 nil,
		"missing analysis id": mutate(func(e *entity.AnalysisEmbedding) { e.AnalysisID = "" }),
		"empty vector":        mutate(func(e *entity.AnalysisEmbedding) { e.Embedding, e.Dimension = nil, 0 }),
		"dimension mismatch":  mutate(func(e *entity.AnalysisEmbedding) { e.Dimension = 100 }),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, repo.Upsert(context.Background(), e))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingRepo_FindByAnalysisID(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE analysis_id = $1 AND model = $2")).
		WithArgs(embeddedID, "m").
		WillReturnRows(sqlmock.NewRows(embeddingColumns).
			AddRow(int64(1), embeddedID, "m", 3, "[0.5,0.25,1]", now, now))

	got, err := repo.FindByAnalysisID(context.Background(), embeddedID, "m")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []float32{0.5, 0.25, 1}, got.Embedding)
	assert.Equal(t, 3, got.Dimension)
}

func TestEmbeddingRepo_FindByAnalysisID_Missing(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)
	mock.ExpectQuery("FROM analysis_embeddings").WillReturnRows(sqlmock.NewRows(embeddingColumns))

	got, err := repo.FindByAnalysisID(context.Background(), embeddedID, "m")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmbeddingRepo_SearchSimilar(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY embedding <=> $1")).
		WithArgs(sqlmock.AnyArg(), "m", embeddedID, 10).
		WillReturnRows(sqlmock.NewRows([]string{"analysis_id", "similarity"}).
			AddRow("a-1", 0.93).
			AddRow("a-2", 0.71))

	got, err := repo.SearchSimilar(context.Background(), []float32{0.1, 0.2, 0.3}, "m", embeddedID, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a-1", got[0].AnalysisID)
	assert.InDelta(t, 0.93, got[0].Similarity, 1e-9)
}

func TestEmbeddingRepo_SearchSimilar_LimitCapped(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)

	mock.ExpectQuery("FROM analysis_embeddings").
		WithArgs(sqlmock.AnyArg(), "m", "", 100).
		WillReturnRows(sqlmock.NewRows([]string{"analysis_id", "similarity"}))

	got, err := repo.SearchSimilar(context.Background(), []float32{1}, "m", "", 1000)
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingRepo_SearchSimilar_QueryError(t *testing.T) {
	repo, mock := newEmbeddingRepo(t)
	dbErr := errors.New("operator does not exist: vector <=> vector")
	mock.ExpectQuery("FROM analysis_embeddings").WillReturnError(dbErr)

	_, err := repo.SearchSimilar(context.Background(), []float32{1}, "m", "", 5)
	assert.ErrorIs(t, err, dbErr)
}
