package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo writes imported articles and their taxonomy.
type ArticleRepo struct {
	db  *DB
	now func() time.Time
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db, now: time.Now}
}

func (r *ArticleRepo) HasArticle(ctx context.Context, sourceID, guid string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM articles WHERE source_id = ? AND source_guid = ?`, sourceID, guid).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article: %w", err)
	}
	return true, nil
}

// UpsertArticle inserts or refreshes an article identified by (source, guid).
// It returns the article ID and whether a new row was created.
func (r *ArticleRepo) UpsertArticle(ctx context.Context, sourceID string, input ArticleInput) (string, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(r.now())

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM articles WHERE source_id = ? AND source_guid = ?`, sourceID, input.SourceGUID).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("failed to look up article: %w", err)
	}
	created := existingID == ""

	slug, err := uniqueSlug(ctx, tx, input.Slug, input.SourceGUID, existingID)
	if err != nil {
		return "", false, err
	}

	categoryID, err := upsertTaxonomy(ctx, tx, "categories", input.Category, now)
	if err != nil {
		return "", false, err
	}

	var authorID sql.NullString
	if input.Author != nil && input.Author.Slug != "" {
		id, err := upsertTaxonomy(ctx, tx, "authors", *input.Author, now)
		if err != nil {
			return "", false, err
		}
		authorID = sql.NullString{String: id, Valid: true}
	}

	var readTime sql.NullInt64
	if input.ReadTime > 0 {
		readTime = sql.NullInt64{Int64: int64(input.ReadTime), Valid: true}
	}

	updatedAt := now
	if input.UpdatedAt != nil && !input.UpdatedAt.IsZero() {
		updatedAt = toMillis(*input.UpdatedAt)
	}

	var articleID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (
			id, slug, title, excerpt, content, featured_image_url, category_id, author_id,
			read_time, is_published, is_premium, published_at, created_at, updated_at,
			source_id, source_guid, source_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id, source_guid) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			excerpt = CASE WHEN articles.content_extracted_at IS NULL THEN excluded.excerpt ELSE articles.excerpt END,
			content = CASE WHEN articles.content_extracted_at IS NULL THEN excluded.content ELSE articles.content END,
			read_time = CASE WHEN articles.content_extracted_at IS NULL THEN excluded.read_time ELSE articles.read_time END,
			featured_image_url = excluded.featured_image_url,
			category_id = excluded.category_id,
			author_id = excluded.author_id,
			is_published = excluded.is_published,
			is_premium = excluded.is_premium,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at,
			source_url = excluded.source_url
		RETURNING id
	`, uuid.NewString(), slug, input.Title, input.Excerpt, input.Content, nullString(input.FeaturedImage),
		categoryID, authorID, readTime, input.IsPublished, input.IsPremium, nullMillis(input.PublishedAt),
		now, updatedAt, sourceID, input.SourceGUID, nullString(input.SourceURL)).Scan(&articleID)
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert article: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return "", false, fmt.Errorf("failed to clear article tags: %w", err)
	}

	for position, tag := range input.Tags {
		if tag.Slug == "" {
			continue
		}
		tagID, err := upsertTaxonomy(ctx, tx, "tags", tag, now)
		if err != nil {
			return "", false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id, position) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			articleID, tagID, position)
		if err != nil {
			return "", false, fmt.Errorf("failed to link tag %s: %w", tag.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("failed to commit article: %w", err)
	}

	return articleID, created, nil
}

func (r *ArticleRepo) GetArticlesForExtraction(ctx context.Context, sourceID string, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_url
		FROM articles
		WHERE source_id = ? AND source_url IS NOT NULL AND content_extracted_at IS NULL
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT ?
	`, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var a ArticleForExtraction
		if err := rows.Scan(&a.ID, &a.SourceURL); err != nil {
			return nil, fmt.Errorf("failed to scan article for extraction: %w", err)
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

func (r *ArticleRepo) UpdateExtractedContent(ctx context.Context, articleID, content, excerpt string, readTime int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE articles
		SET content = ?, excerpt = CASE WHEN ? = '' THEN excerpt ELSE ? END, read_time = ?, content_extracted_at = ?
		WHERE id = ?
	`, content, excerpt, excerpt, readTime, toMillis(r.now()), articleID)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}
	return nil
}

// MarkExtractionAttempted stops an article from being picked up for extraction again.
func (r *ArticleRepo) MarkExtractionAttempted(ctx context.Context, articleID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET content_extracted_at = ? WHERE id = ?`, toMillis(r.now()), articleID)
	if err != nil {
		return fmt.Errorf("failed to mark extraction attempt: %w", err)
	}
	return nil
}

// upsertTaxonomy returns the ID of the category, tag or author with the given slug, creating it if needed.
func upsertTaxonomy(ctx context.Context, tx *sql.Tx, tableName string, t Taxonomy, now int64) (string, error) {
	name := t.Name
	if name == "" {
		name = t.Slug
	}

	var id string
	err := tx.QueryRowContext(ctx, `
		INSERT INTO `+tableName+` (id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET updated_at = excluded.updated_at
		RETURNING id
	`, uuid.NewString(), name, t.Slug, now, now).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert %s %q: %w", tableName, t.Slug, err)
	}
	return id, nil
}

// uniqueSlug keeps slugs unique across sources by suffixing a hash of the GUID on collision.
func uniqueSlug(ctx context.Context, tx *sql.Tx, slug, guid, ownID string) (string, error) {
	var holder string
	err := tx.QueryRowContext(ctx, `SELECT id FROM articles WHERE slug = ?`, slug).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && holder == ownID) {
		return slug, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}

	sum := sha256.Sum256([]byte(guid))
	return fmt.Sprintf("%s-%x", slug, sum[:4]), nil
}
