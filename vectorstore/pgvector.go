package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"github.com/tmc/langchaingo/schema"
	lcpgvector "github.com/tmc/langchaingo/vectorstores/pgvector"
)

// Table names created by the langchaingo pgvector store.
const (
	collectionTable = "langchain_pg_collection"
	embeddingTable  = "langchain_pg_embedding"
)

// PGVector stores chunks in Postgres with the pgvector extension. Schema
// management and inserts go through langchaingo; reads and deletes use SQL
// directly so filters run inside the database.
type PGVector struct {
	pool       *pgxpool.Pool
	store      lcpgvector.Store
	collection string
	embedder   ai.Embedder
	logger     *slog.Logger
}

var _ Store = (*PGVector)(nil)

// NewPGVector opens collection on pool, creating the tables, the vector
// extension and the collection row when they do not exist.
func NewPGVector(ctx context.Context, pool *pgxpool.Pool, collection string, embedder ai.Embedder) (*PGVector, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		collection = core.DefaultCollection
	}

	store, err := lcpgvector.New(ctx,
		lcpgvector.WithConn(pool),
		lcpgvector.WithEmbedder(ai.AsLangchain(embedder)),
		lcpgvector.WithCollectionName(collection),
	)
	if err != nil {
		return nil, fmt.Errorf("open pgvector collection %s: %w", collection, err)
	}

	return &PGVector{
		pool:       pool,
		store:      store,
		collection: collection,
		embedder:   embedder,
		logger:     slog.Default().With("component", "pgvector", "collection", collection),
	}, nil
}

func (p *PGVector) AddDocuments(ctx context.Context, docs []schema.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	ids, err := p.store.AddDocuments(ctx, docs)
	if err != nil {
		p.logger.Error("failed to add chunks", "count", len(docs), "err", err)
		return nil, err
	}
	return ids, nil
}

func (p *PGVector) SimilaritySearch(ctx context.Context, query string, k int, filter *core.Filter) ([]schema.Document, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := p.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	sql, args := buildSearchQuery(p.collection, pgvector.NewVector(vector), k, filter)
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var (
			content  string
			meta     []byte
			distance float64
		)
		if err := rows.Scan(&content, &meta, &distance); err != nil {
			return nil, err
		}
		metadata, err := core.DecodeMetadata(meta)
		if err != nil {
			return nil, err
		}
		docs = append(docs, schema.Document{
			PageContent: content,
			Metadata:    metadata,
			Score:       float32(1 - distance),
		})
	}
	return docs, rows.Err()
}

func (p *PGVector) Delete(ctx context.Context, docID string) error {
	var collectionID string
	err := p.pool.QueryRow(ctx,
		"SELECT uuid::text FROM "+collectionTable+" WHERE name = $1", p.collection,
	).Scan(&collectionID)
	if errors.Is(err, pgx.ErrNoRows) {
		p.logger.Warn("collection not found, nothing to delete", "doc_id", docID)
		return nil
	}
	if err != nil {
		return err
	}

	tag, err := p.pool.Exec(ctx,
		"DELETE FROM "+embeddingTable+" WHERE collection_id = $1 AND cmetadata->>'"+core.MetadataDocID+"' = $2",
		collectionID, docID,
	)
	if err != nil {
		return err
	}
	p.logger.Debug("deleted chunks", "doc_id", docID, "count", tag.RowsAffected())
	return nil
}

func (p *PGVector) GetDocuments(ctx context.Context, ids []string) ([]schema.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx,
		"SELECT e.document, e.cmetadata FROM "+embeddingTable+" e"+
			" JOIN "+collectionTable+" c ON e.collection_id = c.uuid"+
			" WHERE c.name = $1 AND e.uuid::text = ANY($2)",
		p.collection, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var (
			content string
			meta    []byte
		)
		if err := rows.Scan(&content, &meta); err != nil {
			return nil, err
		}
		metadata, err := core.DecodeMetadata(meta)
		if err != nil {
			return nil, err
		}
		docs = append(docs, schema.Document{PageContent: content, Metadata: metadata})
	}
	return docs, rows.Err()
}

// buildSearchQuery renders the similarity query for collection. Results
// are ordered by cosine distance; bucket and doc id filters become
// predicates on the JSON metadata.
func buildSearchQuery(collection string, vector pgvector.Vector, k int, filter *core.Filter) (string, []any) {
	args := []any{vector, collection}
	var b strings.Builder
	b.WriteString("SELECT e.document, e.cmetadata, e.embedding <=> $1::vector AS distance")
	b.WriteString(" FROM " + embeddingTable + " e JOIN " + collectionTable + " c ON e.collection_id = c.uuid")
	b.WriteString(" WHERE c.name = $2")

	if filter != nil && filter.Bucket != "" {
		args = append(args, filter.Bucket)
		b.WriteString(" AND e.cmetadata->>'" + core.MetadataBucket + "' = $" + strconv.Itoa(len(args)))
	}
	if filter != nil && len(filter.DocIDs) > 0 {
		args = append(args, filter.DocIDs)
		b.WriteString(" AND e.cmetadata->>'" + core.MetadataDocID + "' = ANY($" + strconv.Itoa(len(args)) + ")")
	}

	args = append(args, k)
	b.WriteString(" ORDER BY distance LIMIT $" + strconv.Itoa(len(args)))
	return b.String(), args
}
