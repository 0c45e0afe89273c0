package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/Harin-6044/Resume-Shortlister/internal/config"
)

// CandidateDocument identifies the resume a set of indexed chunks belongs to.
type CandidateDocument struct {
	SessionID     string
	DocumentID    string
	CandidateName string
	FileName      string
	FitScore      int
}

// IndexHit is one matching chunk returned by the vector store.
type IndexHit struct {
	CandidateDocument
	Similarity float32
	Text       string
}

type CandidateIndex interface {
	// Enabled reports whether indexed points are actually stored.
	Enabled() bool
	InitCollection(ctx context.Context) error
	IndexCandidate(ctx context.Context, doc CandidateDocument, chunks []string, embeddings [][]float32) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]IndexHit, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}

type qdrantCandidateIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// NewCandidateIndex returns a qdrant-backed index, or a no-op one when indexing is disabled.
func NewCandidateIndex(cfg config.QdrantConfig) (CandidateIndex, error) {
	if !cfg.Enabled {
		log.Println("ℹ️  QDRANT_ENABLED is false, candidate search is disabled")
		return NoopCandidateIndex{}, nil
	}
	return NewQdrantCandidateIndex(cfg.URL, cfg.APIKey, cfg.Collection, cfg.VectorSize)
}

func NewQdrantCandidateIndex(urlStr, apiKey, collectionName string, vectorSize uint64) (CandidateIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantCandidateIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

// InitCollection implements CandidateIndex.
// Enabled implements CandidateIndex.
func (q *qdrantCandidateIndex) Enabled() bool { return true }

func (q *qdrantCandidateIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
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

	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      "session_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to index session_id: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// IndexCandidate implements CandidateIndex.
func (q *qdrantCandidateIndex) IndexCandidate(ctx context.Context, doc CandidateDocument, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunkPointID(doc.DocumentID, i)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(chunkPayload(doc, i, chunk)),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Search implements CandidateIndex.
func (q *qdrantCandidateIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]IndexHit, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]IndexHit, 0, len(points))
	for _, point := range points {
		hits = append(hits, hitFromPayload(point.Payload, point.Score))
	}

	return hits, nil
}

// DeleteSession implements CandidateIndex.
func (q *qdrantCandidateIndex) DeleteSession(ctx context.Context, sessionID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("session_id", sessionID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete session points: %w", err)
	}

	return nil
}

func (q *qdrantCandidateIndex) Close() error {
	return q.client.Close()
}

// chunkPointID is stable per document chunk so re-indexing overwrites instead of duplicating.
func chunkPointID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", documentID, chunkIndex))).String()
}

func chunkPayload(doc CandidateDocument, chunkIndex int, text string) map[string]any {
	return map[string]any{
		"session_id":     doc.SessionID,
		"document_id":    doc.DocumentID,
		"candidate_name": doc.CandidateName,
		"file_name":      doc.FileName,
		"fit_score":      doc.FitScore,
		"chunk_index":    chunkIndex,
		"text":           text,
	}
}

func hitFromPayload(payload map[string]*qdrant.Value, score float32) IndexHit {
	return IndexHit{
		CandidateDocument: CandidateDocument{
			SessionID:     payload["session_id"].GetStringValue(),
			DocumentID:    payload["document_id"].GetStringValue(),
			CandidateName: payload["candidate_name"].GetStringValue(),
			FileName:      payload["file_name"].GetStringValue(),
			FitScore:      int(payload["fit_score"].GetIntegerValue()),
		},
		Similarity: score,
		Text:       payload["text"].GetStringValue(),
	}
}

type NoopCandidateIndex struct{}

func (NoopCandidateIndex) Enabled() bool { return false }

func (NoopCandidateIndex) InitCollection(context.Context) error { return nil }

func (NoopCandidateIndex) IndexCandidate(context.Context, CandidateDocument, []string, [][]float32) error {
	return nil
}

func (NoopCandidateIndex) Search(context.Context, []float32, int) ([]IndexHit, error) {
	return nil, nil
}

func (NoopCandidateIndex) DeleteSession(context.Context, string) error { return nil }

func (NoopCandidateIndex) Close() error { return nil }
