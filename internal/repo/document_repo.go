package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/Araychaudhur/portfolio-2025/internal/model"
	"github.com/Araychaudhur/portfolio-2025/internal/pkg/dbutil"
)

// DocumentRepo persists chunks in the documents table. (url, heading) is the
// merge key; embedding is a pgvector column queried by cosine distance.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// PurgeByBase deletes every row whose url starts with base. Run before
// re-upserting a document so sections that disappeared from the source do not
// linger in the index.
func (r *DocumentRepo) PurgeByBase(ctx context.Context, base string) (int64, error) {
	where := map[string]interface{}{
		"url like": base + "%",
	}
	sqlStr, args, err := builder.BuildDelete("documents", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertBatch writes one batch in a single statement. The caller must have
// deduplicated on (url, heading) first: postgres rejects a statement that
// touches the same conflict key twice.
func (r *DocumentRepo) UpsertBatch(ctx context.Context, chunks []model.StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO documents (url, heading, content, embedding) VALUES ")
	args := make([]interface{}, 0, len(chunks)*4)
	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4)
		args = append(args, chunk.URL, chunk.Heading, chunk.Content, pgvector.NewVector(chunk.Embedding))
	}
	sb.WriteString(` ON CONFLICT (url, heading) DO UPDATE SET
		content = EXCLUDED.content,
		embedding = EXCLUDED.embedding`)
	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		if dbutil.IsConflict(err) {
			return fmt.Errorf("batch contains duplicate (url, heading) rows, dedupe before upserting: %w", err)
		}
		return err
	}
	return nil
}

// Search returns the count nearest chunks by cosine distance, with a
// similarity in (larger is better) form.
func (r *DocumentRepo) Search(ctx context.Context, embedding []float32, count int) ([]model.RetrievedChunk, error) {
	const query = `
		SELECT url, heading, content, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(embedding), count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.RetrievedChunk
	for rows.Next() {
		var item model.RetrievedChunk
		if err := rows.Scan(&item.URL, &item.Heading, &item.Content, &item.Similarity); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *DocumentRepo) Count(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, nil)
}

func (r *DocumentRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	return r.countWhere(ctx, map[string]interface{}{"url like": prefix + "%"})
}

func (r *DocumentRepo) countWhere(ctx context.Context, where map[string]interface{}) (int64, error) {
	if where == nil {
		where = map[string]interface{}{}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var count int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// EmbeddingCounts reports how many rows carry an embedding, for the debug
// introspection endpoint.
func (r *DocumentRepo) EmbeddingCounts(ctx context.Context) (withEmb int64, withoutEmb int64, err error) {
	const query = `
		SELECT
			count(*) FILTER (WHERE embedding IS NOT NULL),
			count(*) FILTER (WHERE embedding IS NULL)
		FROM documents
	`
	err = r.db.QueryRowContext(ctx, query).Scan(&withEmb, &withoutEmb)
	return withEmb, withoutEmb, err
}

// Sample returns up to n embedded rows, for manual inspection.
func (r *DocumentRepo) Sample(ctx context.Context, n int) ([]model.ContentRecord, error) {
	const query = `
		SELECT url, heading, content
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY id
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.ContentRecord
	for rows.Next() {
		var rec model.ContentRecord
		if err := rows.Scan(&rec.URL, &rec.Heading, &rec.Content); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
