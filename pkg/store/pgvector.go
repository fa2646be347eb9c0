// Package store is a persistent reference-paper corpus backed by Postgres
// with pgvector. The checker pulls nearest-neighbor candidates out of here and
// hands them to the scorer like any other batch of reference texts.
package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/internal/types"
	"github.com/plagiax/plagiax/pkg/similarity"
)

type CorpusStoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	SearchLimit int
}

type CorpusStore struct {
	config   CorpusStoreConfig
	pool     *pgxpool.Pool
	embedder types.Embedder
}

func NewWithConfig(config CorpusStoreConfig, embedder types.Embedder) (*CorpusStore, error) {
	if config.TableName == "" {
		config.TableName = "reference_papers"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	cs := &CorpusStore{
		config:   config,
		pool:     pool,
		embedder: embedder,
	}

	if err := cs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return cs, nil
}

func (cs *CorpusStore) initialize() error {
	ctx := context.Background()

	_, err := cs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT,
			author TEXT,
			source TEXT,
			link TEXT,
			content TEXT NOT NULL,
			embedding vector(%d)
		)`, cs.config.TableName, cs.config.VectorDim)

	_, err = cs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		cs.config.TableName, cs.config.TableName)

	_, err = cs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Store embeds each paper's content and upserts the batch in one transaction.
// Papers arriving without an ID get one assigned.
func (cs *CorpusStore) Store(ctx context.Context, papers []models.ReferencePaper) error {
	tx, err := cs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, author, source, link, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			source = EXCLUDED.source,
			link = EXCLUDED.link,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		cs.config.TableName)

	for _, paper := range papers {
		id := paper.ID
		if id == "" {
			id = uuid.NewString()
		}

		content := sanitizeUTF8(paper.Content)
		embedding, err := cs.embedder.EmbedText(ctx, similarity.Preprocess(content))
		if err != nil {
			return fmt.Errorf("failed to embed paper %s: %w", id, err)
		}

		_, err = tx.Exec(ctx, stmt,
			id,
			sanitizeUTF8(paper.Title),
			sanitizeUTF8(paper.Author),
			paper.Source,
			paper.Link,
			content,
			pgvector.NewVector(embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert paper %s: %v", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns the papers nearest to the embedding by cosine distance.
func (cs *CorpusStore) Query(ctx context.Context, embedding []float32, limit int) ([]models.ReferencePaper, error) {
	if limit <= 0 {
		limit = cs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT id, title, author, source, link, content
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		cs.config.TableName)

	rows, err := cs.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %v", err)
	}
	defer rows.Close()

	var papers []models.ReferencePaper
	for rows.Next() {
		var p models.ReferencePaper
		err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Source, &p.Link, &p.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		papers = append(papers, p)
	}

	return papers, rows.Err()
}

func (cs *CorpusStore) Close() {
	if cs.pool != nil {
		cs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
