package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lysyi3m/seo-media/app/content"
)

type valueKind int

const (
	textValue valueKind = iota
	boolValue
	intValue
	timeValue
)

type column struct {
	expr string
	kind valueKind
}

// table maps query fields onto SQL expressions for one listing.
type table struct {
	columns map[string]column
	// custom handles fields that need more than a column comparison.
	custom     map[string]func(p content.Predicate) (string, []any, error)
	search     []string
	tieBreaker string
}

var articleTable = table{
	columns: map[string]column{
		"id":          {"a.id", textValue},
		"slug":        {"a.slug", textValue},
		"title":       {"a.title", textValue},
		"excerpt":     {"a.excerpt", textValue},
		"author":      {"au.id", textValue},
		"isPublished": {"a.is_published", boolValue},
		"isPremium":   {"a.is_premium", boolValue},
		"isNew":       {"a.is_new", boolValue},
		"readTime":    {"a.read_time", intValue},
		"viewCount":   {"COALESCE(a.view_count, 0)", intValue},
		"likeCount":   {"COALESCE(a.like_count, 0)", intValue},
		"publishedAt": {"COALESCE(a.published_at, a.created_at)", timeValue},
		"createdAt":   {"a.created_at", timeValue},
		"updatedAt":   {"a.updated_at", timeValue},
	},
	custom: map[string]func(p content.Predicate) (string, []any, error){
		"category": categoryPredicate,
		"tags":     tagsPredicate,
	},
	search:     []string{"a.title", "a.excerpt", "a.content"},
	tieBreaker: "a.id",
}

var categoryTable = table{
	columns: map[string]column{
		"id":    {"c.id", textValue},
		"slug":  {"c.slug", textValue},
		"name":  {"c.name", textValue},
		"order": {"c.sort_order", intValue},
	},
	search:     []string{"c.name", "c.description"},
	tieBreaker: "c.id",
}

var tagTable = table{
	columns: map[string]column{
		"id":   {"t.id", textValue},
		"slug": {"t.slug", textValue},
		"name": {"t.name", textValue},
	},
	search:     []string{"t.name", "t.description"},
	tieBreaker: "t.id",
}

// where renders the filter tree and search term as a WHERE clause (without
// the keyword). An empty string means no restriction.
func (tbl table) where(q content.Query) (string, []any, error) {
	var clauses []string
	var args []any

	if !q.Where.IsZero() {
		clause, condArgs, err := tbl.condition(q.Where)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, condArgs...)
	}

	if term := strings.TrimSpace(q.Search); term != "" && len(tbl.search) > 0 {
		parts := make([]string, 0, len(tbl.search))
		for _, expr := range tbl.search {
			parts = append(parts, fmt.Sprintf("instr(lower(%s), lower(?)) > 0", expr))
			args = append(args, term)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	return strings.Join(clauses, " AND "), args, nil
}

func (tbl table) condition(c content.Condition) (string, []any, error) {
	switch c.Kind {
	case content.KindPredicate:
		return tbl.predicate(c.Predicate)
	case content.KindAnd, content.KindOr:
		sep := " AND "
		if c.Kind == content.KindOr {
			sep = " OR "
		}
		parts := make([]string, 0, len(c.Terms))
		var args []any
		for _, term := range c.Terms {
			clause, termArgs, err := tbl.condition(term)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, clause)
			args = append(args, termArgs...)
		}
		return "(" + strings.Join(parts, sep) + ")", args, nil
	}
	return "1 = 1", nil, nil
}

func (tbl table) predicate(p content.Predicate) (string, []any, error) {
	if custom, ok := tbl.custom[p.Field]; ok {
		return custom(p)
	}

	col, ok := tbl.columns[p.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported filter field %q", content.ErrInvalidArgument, p.Field)
	}

	switch p.Op {
	case content.OpExists:
		return col.expr + " IS NOT NULL", nil, nil
	case content.OpNotExists:
		return col.expr + " IS NULL", nil, nil
	case content.OpContains:
		return fmt.Sprintf("instr(%s, ?) > 0", col.expr), []any{p.Value}, nil
	case content.OpNotContains:
		return fmt.Sprintf("instr(%s, ?) = 0", col.expr), []any{p.Value}, nil
	case content.OpBeginsWith:
		return fmt.Sprintf("substr(%s, 1, length(?)) = ?", col.expr), []any{p.Value, p.Value}, nil
	}

	value, err := convertValue(col.kind, p.Value)
	if err != nil {
		return "", nil, fmt.Errorf("%w: field %q: %v", content.ErrInvalidArgument, p.Field, err)
	}

	var op string
	switch p.Op {
	case content.OpEquals:
		op = "="
	case content.OpNotEquals:
		op = "!="
	case content.OpLessThan:
		op = "<"
	case content.OpGreaterThan:
		op = ">"
	default:
		return "", nil, fmt.Errorf("%w: unsupported operator %q", content.ErrInvalidArgument, p.Op)
	}

	return fmt.Sprintf("%s %s ?", col.expr, op), []any{value}, nil
}

func convertValue(kind valueKind, raw string) (any, error) {
	switch kind {
	case boolValue:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case intValue:
		return strconv.ParseInt(raw, 10, 64)
	case timeValue:
		t, err := content.ParseTimeValue(raw)
		if err != nil {
			return nil, err
		}
		return toMillis(t), nil
	}
	return raw, nil
}

// Categories match by ID or slug.
func categoryPredicate(p content.Predicate) (string, []any, error) {
	switch p.Op {
	case content.OpEquals:
		return "(c.id = ? OR c.slug = ?)", []any{p.Value, p.Value}, nil
	case content.OpNotEquals:
		return "(c.id != ? AND c.slug != ?)", []any{p.Value, p.Value}, nil
	}
	return "", nil, fmt.Errorf("%w: unsupported operator %q for category", content.ErrInvalidArgument, p.Op)
}

// Tags match by ID or slug.
func tagsPredicate(p content.Predicate) (string, []any, error) {
	const exists = `EXISTS (SELECT 1 FROM article_tags atg JOIN tags t ON t.id = atg.tag_id
		WHERE atg.article_id = a.id AND (t.id = ? OR t.slug = ?))`

	switch p.Op {
	case content.OpContains:
		return exists, []any{p.Value, p.Value}, nil
	case content.OpNotContains:
		return "NOT " + exists, []any{p.Value, p.Value}, nil
	}
	return "", nil, fmt.Errorf("%w: unsupported operator %q for tags", content.ErrInvalidArgument, p.Op)
}

// orderBy renders the ORDER BY list. Unknown fields are rejected; NULLs sort
// last. Text columns compare under collation when one is given.
func (tbl table) orderBy(orders []content.Order, collation string) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	for _, order := range orders {
		col, ok := tbl.columns[order.Field]
		if !ok {
			return "", fmt.Errorf("%w: unsupported order field %q", content.ErrInvalidArgument, order.Field)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		expr := col.expr
		if col.kind == textValue && collation != "" {
			expr += " COLLATE " + collation
		}
		parts = append(parts, fmt.Sprintf("%s IS NULL, %s %s", col.expr, expr, dir))
	}
	parts = append(parts, tbl.tieBreaker)
	return strings.Join(parts, ", "), nil
}

func window(q content.Query) (limit, offset int) {
	limit = q.Limit
	if limit <= 0 {
		limit = content.DefaultPageSize
	}
	return limit, max(q.Offset, 0)
}
