package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/progmatch/internal/models"
)

// ErrCollectionMissing is returned when the collection has not been created yet.
var ErrCollectionMissing = errors.New("collection does not exist")

type VectorStoreConfig struct {
	ConnString string
	Collection string // table name
}

// VectorStore is a pgvector-backed collection, one table per collection.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
	table  string
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.Collection == "" {
		config.Collection = "programmes"
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
		table:  pgx.Identifier{config.Collection}.Sanitize(),
	}

	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create vector extension: %w", err)
	}

	return vs, nil
}

// Drop removes the collection table if present.
func (vs *VectorStore) Drop(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", vs.table)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// Reset drops the collection table if present and recreates it with an HNSW cosine index.
// With dim zero the column is left unsized and no index is created, since HNSW needs a
// fixed dimension.
func (vs *VectorStore) Reset(ctx context.Context, dim int) error {
	if dim < 0 {
		return fmt.Errorf("invalid vector dimension %d", dim)
	}
	column := "vector"
	if dim > 0 {
		column = fmt.Sprintf("vector(%d)", dim)
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", vs.table)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding %s NOT NULL
		)`, vs.table, column)
	if _, err := tx.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	if dim == 0 {
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX %s
		ON %s
		USING hnsw (embedding vector_cosine_ops)`,
		pgx.Identifier{vs.config.Collection + "_embedding_idx"}.Sanitize(), vs.table)
	if _, err := tx.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Insert adds entries in a single transaction. Duplicate ids are an error.
func (vs *VectorStore) Insert(ctx context.Context, entries []models.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)`, vs.table)

	batch := &pgx.Batch{}
	for _, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", e.ID, err)
		}
		batch.Queue(stmt, e.ID, sanitizeUTF8(e.Text), meta, pgvector.NewVector(e.Embedding))
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if missingTable(err) {
			return ErrCollectionMissing
		}
		return fmt.Errorf("failed to insert entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Search returns the k nearest rows by cosine distance, closest first.
func (vs *VectorStore) Search(ctx context.Context, vector []float32, k int) ([]models.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, embedding <=> $1 AS distance
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, vs.table)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		if missingTable(err) {
			return nil, ErrCollectionMissing
		}
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	var results []models.QueryResult
	for rows.Next() {
		var r models.QueryResult
		var meta []byte
		if err := rows.Scan(&r.ID, &r.Text, &meta, &r.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal(meta, &r.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", r.ID, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return results, nil
}

// Count returns the exact number of rows in the collection.
func (vs *VectorStore) Count(ctx context.Context) (int, error) {
	var exists bool
	if err := vs.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", vs.table).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to look up collection: %w", err)
	}
	if !exists {
		return 0, ErrCollectionMissing
	}

	var n int
	if err := vs.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", vs.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return n, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func missingTable(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "42P01"
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
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
