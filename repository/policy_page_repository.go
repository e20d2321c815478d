package repository

import (
	"context"
	"fmt"

	"readily-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PolicyPageRepository handles database operations for policy pages
type PolicyPageRepository struct {
	db *pgxpool.Pool
}

// NewPolicyPageRepository creates a new policy page repository
func NewPolicyPageRepository(db *pgxpool.Pool) *PolicyPageRepository {
	return &PolicyPageRepository{db: db}
}

// Search performs a full-text search over policy pages and returns the
// best-ranked pages for a free-text question, capped at limit.
// websearch_to_tsquery tolerates arbitrary user text, so the raw question
// can be passed through unmodified.
func (r *PolicyPageRepository) Search(ctx context.Context, question string, limit int) ([]models.PolicyPage, error) {
	query := `
		SELECT
			id,
			filename,
			page_number,
			content,
			ts_rank(content_tsv, websearch_to_tsquery('english', $1)) AS rank
		FROM policy_pages
		WHERE content_tsv @@ websearch_to_tsquery('english', $1)
		ORDER BY rank DESC, filename, page_number
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, question, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query policy pages: %w", err)
	}
	defer rows.Close()

	var pages []models.PolicyPage
	for rows.Next() {
		var page models.PolicyPage
		err := rows.Scan(
			&page.ID,
			&page.Filename,
			&page.PageNumber,
			&page.Content,
			&page.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy page: %w", err)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy pages: %w", err)
	}

	return pages, nil
}

// DeleteAll clears the policy page store before a fresh population run
func (r *PolicyPageRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "DELETE FROM policy_pages")
	if err != nil {
		return fmt.Errorf("failed to clear policy pages: %w", err)
	}
	return nil
}

// InsertPages bulk-inserts one row per policy document page
func (r *PolicyPageRepository) InsertPages(ctx context.Context, pages []models.PolicyPage) error {
	if len(pages) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, page := range pages {
		batch.Queue(
			`INSERT INTO policy_pages (filename, page_number, content) VALUES ($1, $2, $3)`,
			page.Filename,
			page.PageNumber,
			page.Content,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range pages {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert policy page: %w", err)
		}
	}

	return nil
}

// Count returns the number of stored policy pages
func (r *PolicyPageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM policy_pages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count policy pages: %w", err)
	}
	return count, nil
}
