package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/metrics"
)

var _ content.Store = (*ArticleStore)(nil)

// ArticleStore serves the content query language from the local database.
type ArticleStore struct {
	db *DB
}

func NewArticleStore(db *DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleFrom = `
	FROM articles a
	JOIN categories c ON c.id = a.category_id
	LEFT JOIN authors au ON au.id = a.author_id`

func (s *ArticleStore) ListArticles(ctx context.Context, q content.Query) (page *content.RawPage[content.Article], err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreRequest("sqlite", "articles", time.Since(start).Seconds(), err) }()

	where, args, err := articleTable.where(q)
	if err != nil {
		return nil, err
	}
	orderBy, err := articleTable.orderBy(q.Orders, s.db.collation)
	if err != nil {
		return nil, err
	}
	if where != "" {
		where = " WHERE " + where
	}

	total, err := s.count(ctx, "SELECT COUNT(*)"+articleFrom+where, args)
	if err != nil {
		return nil, err
	}

	contentExpr := "''"
	if q.WantsField("content") {
		contentExpr = "a.content"
	}

	limit, offset := window(q)
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.slug, a.title, a.excerpt, `+contentExpr+`,
		       a.featured_image_url, a.featured_image_width, a.featured_image_height,
		       a.read_time, a.view_count, a.like_count,
		       a.is_published, a.is_premium, a.is_new,
		       a.published_at, a.created_at, a.updated_at,
		       c.id, c.name, c.slug, c.description, c.color, c.sort_order,
		       au.id, au.name, au.slug, au.avatar_url`+
		articleFrom+where+
		" ORDER BY "+orderBy+" LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, articles); err != nil {
		return nil, err
	}

	return &content.RawPage[content.Article]{
		Contents:   articles,
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

func (s *ArticleStore) ListCategories(ctx context.Context, q content.Query) (page *content.RawPage[content.Category], err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreRequest("sqlite", "categories", time.Since(start).Seconds(), err) }()

	where, args, err := categoryTable.where(q)
	if err != nil {
		return nil, err
	}
	orderBy, err := categoryTable.orderBy(q.Orders, s.db.collation)
	if err != nil {
		return nil, err
	}
	if where != "" {
		where = " WHERE " + where
	}

	total, err := s.count(ctx, "SELECT COUNT(*) FROM categories c"+where, args)
	if err != nil {
		return nil, err
	}

	limit, offset := window(q)
	rows, err := s.db.QueryContext(ctx,
		"SELECT c.id, c.name, c.slug, c.description, c.color, c.sort_order FROM categories c"+
			where+" ORDER BY "+orderBy+" LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []content.Category{}
	for rows.Next() {
		var category content.Category
		var order sql.NullInt64
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.Color, &order); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if order.Valid {
			v := int(order.Int64)
			category.Order = &v
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return &content.RawPage[content.Category]{Contents: categories, TotalCount: total, Offset: offset, Limit: limit}, nil
}

func (s *ArticleStore) ListTags(ctx context.Context, q content.Query) (page *content.RawPage[content.Tag], err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreRequest("sqlite", "tags", time.Since(start).Seconds(), err) }()

	where, args, err := tagTable.where(q)
	if err != nil {
		return nil, err
	}
	orderBy, err := tagTable.orderBy(q.Orders, s.db.collation)
	if err != nil {
		return nil, err
	}
	if where != "" {
		where = " WHERE " + where
	}

	total, err := s.count(ctx, "SELECT COUNT(*) FROM tags t"+where, args)
	if err != nil {
		return nil, err
	}

	limit, offset := window(q)
	rows, err := s.db.QueryContext(ctx,
		"SELECT t.id, t.name, t.slug, t.description, t.color FROM tags t"+
			where+" ORDER BY "+orderBy+" LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []content.Tag{}
	for rows.Next() {
		var tag content.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Description, &tag.Color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return &content.RawPage[content.Tag]{Contents: tags, TotalCount: total, Offset: offset, Limit: limit}, nil
}

func (s *ArticleStore) count(ctx context.Context, query string, args []any) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}

func scanArticles(rows *sql.Rows) ([]content.Article, error) {
	defer rows.Close()

	articles := []content.Article{}
	for rows.Next() {
		var (
			a                              content.Article
			imageURL                       sql.NullString
			imageWidth, imageHeight        sql.NullInt64
			readTime, viewCount, likeCount sql.NullInt64
			publishedAt                    sql.NullInt64
			createdAt, updatedAt           int64
			categoryOrder                  sql.NullInt64
			authorID, authorName           sql.NullString
			authorSlug, authorAvatar       sql.NullString
		)

		err := rows.Scan(
			&a.ID, &a.Slug, &a.Title, &a.Excerpt, &a.Content,
			&imageURL, &imageWidth, &imageHeight,
			&readTime, &viewCount, &likeCount,
			&a.IsPublished, &a.IsPremium, &a.IsNew,
			&publishedAt, &createdAt, &updatedAt,
			&a.Category.ID, &a.Category.Name, &a.Category.Slug, &a.Category.Description, &a.Category.Color, &categoryOrder,
			&authorID, &authorName, &authorSlug, &authorAvatar,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		if imageURL.Valid {
			a.FeaturedImage = &content.Image{URL: imageURL.String, Width: int(imageWidth.Int64), Height: int(imageHeight.Int64)}
		}
		a.ReadTime = nullInt(readTime)
		a.ViewCount = nullInt(viewCount)
		a.LikeCount = nullInt(likeCount)
		a.PublishedAt = fromNullMillis(publishedAt)
		a.CreatedAt = fromMillis(createdAt)
		a.UpdatedAt = fromMillis(updatedAt)
		a.Category.Order = nullInt(categoryOrder)

		if authorID.Valid {
			a.Author = &content.Author{ID: authorID.String, Name: authorName.String, Slug: authorSlug.String}
			if authorAvatar.Valid {
				a.Author.Avatar = &content.Image{URL: authorAvatar.String}
			}
		}

		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// attachTags loads tags for all articles in one query, after the article rows are closed.
func (s *ArticleStore) attachTags(ctx context.Context, articles []content.Article) error {
	if len(articles) == 0 {
		return nil
	}

	index := make(map[string]int, len(articles))
	args := make([]any, 0, len(articles))
	for i, a := range articles {
		index[a.ID] = i
		args = append(args, a.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT atg.article_id, t.id, t.name, t.slug, t.description, t.color
		FROM article_tags atg
		JOIN tags t ON t.id = atg.tag_id
		WHERE atg.article_id IN (`+placeholders(len(args))+`)
		ORDER BY atg.article_id, atg.position`, args...)
	if err != nil {
		return fmt.Errorf("failed to query article tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID string
		var tag content.Tag
		if err := rows.Scan(&articleID, &tag.ID, &tag.Name, &tag.Slug, &tag.Description, &tag.Color); err != nil {
			return fmt.Errorf("failed to scan article tag: %w", err)
		}
		i := index[articleID]
		articles[i].Tags = append(articles[i].Tags, tag)
	}

	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
