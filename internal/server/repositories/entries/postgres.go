// Package entries provides the PostgreSQL-backed journal entry store. Every
// statement is scoped by user_id.
package entries

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SelectByUser returns userID's entries, newest first.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string) ([]*models.Entry, error) {
	query := `SELECT id, user_id, title, content, created_at, updated_at, tags, ai_insight FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		var (
			item    models.Entry
			tags    []byte
			insight []byte
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Content,
			&item.CreatedAt, &item.UpdatedAt, &tags, &insight); err != nil {
			return nil, err
		}
		if item.Tags, err = decodeTags(tags); err != nil {
			return nil, fmt.Errorf("entry %s: %w", item.ID, err)
		}
		if item.AIInsight, err = decodeInsight(insight); err != nil {
			return nil, fmt.Errorf("entry %s: %w", item.ID, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert inserts the entry or, when its ID exists and belongs to the same
// user, replaces its mutable fields. created_at is never rewritten. A
// conflicting row owned by someone else is left alone and
// common.ErrOwnershipConflict is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO journal_entries (id, user_id, title, content, created_at, updated_at, tags, ai_insight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at,
			tags = EXCLUDED.tags,
			ai_insight = EXCLUDED.ai_insight
			WHERE journal_entries.user_id = EXCLUDED.user_id;
	`
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return err
	}
	insight, err := encodeInsight(entry.AIInsight)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Title, entry.Content, entry.CreatedAt, entry.UpdatedAt, tags, insight)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrOwnershipConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes entry id if userID owns it and reports how many rows went.
func (r *PostgresRepository) Delete(ctx context.Context, id string, userID string) (int64, error) {
	query := `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(b []byte) ([]string, error) {
	tags := []string{}
	if len(b) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(b, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// encodeInsight returns nil for a missing insight so the column stays NULL.
func encodeInsight(in *models.Insight) (any, error) {
	if in == nil {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode insight: %w", err)
	}
	return string(b), nil
}

func decodeInsight(b []byte) (*models.Insight, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	in := &models.Insight{}
	if err := json.Unmarshal(b, in); err != nil {
		return nil, fmt.Errorf("decode insight: %w", err)
	}
	return in, nil
}
