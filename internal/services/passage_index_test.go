package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/models"
)

type fakeEmbedder struct {
	calls []string
	err   error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakePointStore struct {
	exists   bool
	created  *qdrant.CreateCollection
	upserts  []*qdrant.UpsertPoints
	deletes  []*qdrant.DeletePoints
	queries  []*qdrant.QueryPoints
	response []*qdrant.ScoredPoint
}

func (f *fakePointStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	return f.exists, nil
}

func (f *fakePointStore) CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error {
	f.created = request
	return nil
}

func (f *fakePointStore) Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, request)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePointStore) Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queries = append(f.queries, request)
	return f.response, nil
}

func (f *fakePointStore) Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.deletes = append(f.deletes, request)
	return &qdrant.UpdateResult{}, nil
}

func filterKeywords(filter *qdrant.Filter) map[string]string {
	out := make(map[string]string)
	for _, cond := range filter.GetMust() {
		out[cond.GetField().GetKey()] = cond.GetField().GetMatch().GetKeyword()
	}
	return out
}

func TestInitCollectionCreatesWhenMissing(t *testing.T) {
	store := &fakePointStore{}
	index := newQdrantPassageIndex(store, &fakeEmbedder{}, "passages", zap.NewNop())

	require.NoError(t, index.InitCollection(context.Background()))
	require.NotNil(t, store.created)
	assert.Equal(t, "passages", store.created.CollectionName)

	store = &fakePointStore{exists: true}
	index = newQdrantPassageIndex(store, &fakeEmbedder{}, "passages", zap.NewNop())
	require.NoError(t, index.InitCollection(context.Background()))
	assert.Nil(t, store.created)
}

func TestIndexReplacesKindAndUpsertsChunks(t *testing.T) {
	store := &fakePointStore{}
	embedder := &fakeEmbedder{}
	index := newQdrantPassageIndex(store, embedder, "passages", zap.NewNop())
	sessionID := uuid.New()

	text := strings.Repeat("x", 900) + "\n\n" + strings.Repeat("y", 900)
	require.NoError(t, index.Index(context.Background(), sessionID, models.KindCV, text))

	require.Len(t, store.deletes, 1)
	assert.Equal(t, map[string]string{
		"session_id": sessionID.String(),
		"kind":       "cv",
	}, filterKeywords(store.deletes[0].GetPoints().GetFilter()))

	require.Len(t, store.upserts, 1)
	assert.Len(t, store.upserts[0].Points, 2)
	assert.Len(t, embedder.calls, 2)

	payload := store.upserts[0].Points[0].Payload
	assert.Equal(t, "cv", payloadString(payload, "kind"))
	assert.Equal(t, sessionID.String(), payloadString(payload, "session_id"))
}

func TestIndexStopsOnEmbeddingFailure(t *testing.T) {
	store := &fakePointStore{}
	index := newQdrantPassageIndex(store, &fakeEmbedder{err: errors.New("no key")}, "passages", zap.NewNop())

	err := index.Index(context.Background(), uuid.New(), models.KindInterests, "hiking")
	assert.ErrorContains(t, err, "no key")
	assert.Empty(t, store.upserts)
}

func TestSearchFiltersBySession(t *testing.T) {
	store := &fakePointStore{response: []*qdrant.ScoredPoint{{
		Score: 0.9,
		Payload: qdrant.NewValueMap(map[string]any{
			"kind": "job_description",
			"text": "Backend role",
		}),
	}}}
	index := newQdrantPassageIndex(store, &fakeEmbedder{}, "passages", zap.NewNop())
	sessionID := uuid.New()

	passages, err := index.Search(context.Background(), sessionID, "backend", 3)
	require.NoError(t, err)

	assert.Equal(t, []models.Passage{{Kind: models.KindJobDescription, Text: "Backend role", Score: 0.9}}, passages)
	require.Len(t, store.queries, 1)
	assert.Equal(t, uint64(3), store.queries[0].GetLimit())
	assert.Equal(t, map[string]string{"session_id": sessionID.String()}, filterKeywords(store.queries[0].Filter))
}

func TestNoopPassageIndex(t *testing.T) {
	index := NewNoopPassageIndex()

	assert.NoError(t, index.Index(context.Background(), uuid.New(), models.KindCV, "text"))
	assert.NoError(t, index.DeleteSession(context.Background(), uuid.New()))

	_, err := index.Search(context.Background(), uuid.New(), "q", 3)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
