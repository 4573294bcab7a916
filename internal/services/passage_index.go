package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/models"
)

var ErrSearchDisabled = errors.New("passage search is not configured")

// PassageIndex keeps embedded chunks of each session's documents for semantic search.
type PassageIndex interface {
	Index(ctx context.Context, sessionID uuid.UUID, kind models.DocumentKind, text string) error
	Search(ctx context.Context, sessionID uuid.UUID, query string, limit int) ([]models.Passage, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
}

type pointStore interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// QdrantPassageIndex stores passages as points filtered by session and kind.
type QdrantPassageIndex struct {
	client         pointStore
	embedder       Embedder
	chunker        TextChunker
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantPassageIndex(urlStr, apiKey, collectionName string, embedder Embedder, logger *zap.Logger) (*QdrantPassageIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return newQdrantPassageIndex(client, embedder, collectionName, logger), nil
}

func newQdrantPassageIndex(client pointStore, embedder Embedder, collectionName string, logger *zap.Logger) *QdrantPassageIndex {
	return &QdrantPassageIndex{
		client:         client,
		embedder:       embedder,
		chunker:        NewTextChunker(),
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
		logger:         logger,
	}
}

// InitCollection creates the collection on first start.
func (q *QdrantPassageIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Info("✅ Collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// Index implements PassageIndex. Earlier passages of the same kind are replaced.
func (q *QdrantPassageIndex) Index(ctx context.Context, sessionID uuid.UUID, kind models.DocumentKind, text string) error {
	if err := q.deleteWhere(ctx, sessionFilter(sessionID, kind)); err != nil {
		return err
	}

	chunks := q.chunker.ChunkText(text, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := q.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed %s chunk %d: %w", kind, i, err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"session_id": sessionID.String(),
				"kind":       string(kind),
				"chunk":      int64(i),
				"text":       chunk,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	q.logger.Debug("indexed passages",
		zap.String("session_id", sessionID.String()),
		zap.String("kind", string(kind)),
		zap.Int("chunks", len(points)),
	)

	return nil
}

// Search implements PassageIndex.
func (q *QdrantPassageIndex) Search(ctx context.Context, sessionID uuid.UUID, query string, limit int) ([]models.Passage, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         sessionFilter(sessionID, ""),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	passages := make([]models.Passage, 0, len(points))
	for _, point := range points {
		passages = append(passages, models.Passage{
			Kind:  models.DocumentKind(payloadString(point.Payload, "kind")),
			Text:  payloadString(point.Payload, "text"),
			Score: point.Score,
		})
	}

	return passages, nil
}

// DeleteSession implements PassageIndex.
func (q *QdrantPassageIndex) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return q.deleteWhere(ctx, sessionFilter(sessionID, ""))
}

func (q *QdrantPassageIndex) deleteWhere(ctx context.Context, filter *qdrant.Filter) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete passages: %w", err)
	}

	return nil
}

func sessionFilter(sessionID uuid.UUID, kind models.DocumentKind) *qdrant.Filter {
	must := []*qdrant.Condition{
		qdrant.NewMatch("session_id", sessionID.String()),
	}
	if kind != "" {
		must = append(must, qdrant.NewMatch("kind", string(kind)))
	}
	return &qdrant.Filter{Must: must}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return val.StringValue
		}
	}
	return ""
}

type noopPassageIndex struct{}

// NewNoopPassageIndex is used when no vector database is configured.
func NewNoopPassageIndex() PassageIndex {
	return noopPassageIndex{}
}

func (noopPassageIndex) Index(context.Context, uuid.UUID, models.DocumentKind, string) error {
	return nil
}

func (noopPassageIndex) Search(context.Context, uuid.UUID, string, int) ([]models.Passage, error) {
	return nil, ErrSearchDisabled
}

func (noopPassageIndex) DeleteSession(context.Context, uuid.UUID) error {
	return nil
}
