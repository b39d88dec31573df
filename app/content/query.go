package content

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpLessThan    Operator = "less_than"
	OpGreaterThan Operator = "greater_than"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
	OpBeginsWith  Operator = "begins_with"
)

type Predicate struct {
	Field string
	Op    Operator
	Value string
}

func (p Predicate) String() string {
	return p.Field + "[" + string(p.Op) + "]" + p.Value
}

type ConditionKind int

const (
	KindNone ConditionKind = iota
	KindPredicate
	KindAnd
	KindOr
)

// Condition is a node of the filter tree: a single predicate or a conjunction
// or disjunction of child conditions.
type Condition struct {
	Kind      ConditionKind
	Predicate Predicate
	Terms     []Condition
}

func Where(field string, op Operator, value string) Condition {
	return Condition{Kind: KindPredicate, Predicate: Predicate{Field: field, Op: op, Value: value}}
}

func And(terms ...Condition) Condition {
	return group(KindAnd, terms)
}

func Or(terms ...Condition) Condition {
	return group(KindOr, terms)
}

func group(kind ConditionKind, terms []Condition) Condition {
	kept := make([]Condition, 0, len(terms))
	for _, term := range terms {
		if !term.IsZero() {
			kept = append(kept, term)
		}
	}
	switch len(kept) {
	case 0:
		return Condition{}
	case 1:
		return kept[0]
	}
	return Condition{Kind: kind, Terms: kept}
}

func (c Condition) IsZero() bool {
	return c.Kind == KindNone
}

// Predicates lists every leaf of the tree in order.
func (c Condition) Predicates() []Predicate {
	switch c.Kind {
	case KindPredicate:
		return []Predicate{c.Predicate}
	case KindAnd, KindOr:
		var leaves []Predicate
		for _, term := range c.Terms {
			leaves = append(leaves, term.Predicates()...)
		}
		return leaves
	}
	return nil
}

// String renders the tree in the store's filter syntax, e.g.
// isPublished[equals]true[and](tags[contains]a[or]tags[contains]b).
func (c Condition) String() string {
	switch c.Kind {
	case KindPredicate:
		return c.Predicate.String()
	case KindAnd, KindOr:
		sep := "[and]"
		if c.Kind == KindOr {
			sep = "[or]"
		}
		parts := make([]string, 0, len(c.Terms))
		for _, term := range c.Terms {
			rendered := term.String()
			if term.Kind != KindPredicate && term.Kind != c.Kind {
				rendered = "(" + rendered + ")"
			}
			parts = append(parts, rendered)
		}
		return strings.Join(parts, sep)
	}
	return ""
}

type Order struct {
	Field string
	Desc  bool
}

func (o Order) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// Query is a store request: filter tree, full-text term, ordering and window.
type Query struct {
	Where  Condition
	Search string
	Orders []Order
	Offset int
	Limit  int
	Fields []string
}

func (q Query) Filters() string {
	return q.Where.String()
}

// Values serializes the query into store URL parameters.
func (q Query) Values() url.Values {
	values := url.Values{}
	if filters := q.Filters(); filters != "" {
		values.Set("filters", filters)
	}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if len(q.Orders) > 0 {
		orders := make([]string, 0, len(q.Orders))
		for _, order := range q.Orders {
			orders = append(orders, order.String())
		}
		values.Set("orders", strings.Join(orders, ","))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}
	return values
}

// Key is a canonical representation of the query, suitable for cache keys.
func (q Query) Key() string {
	return q.Values().Encode()
}

// WantsField reports whether a field is part of the projection. An empty
// projection selects every field.
func (q Query) WantsField(field string) bool {
	return len(q.Fields) == 0 || slices.Contains(q.Fields, field)
}

// TimeValueLayout is the timestamp layout used in filter values.
const TimeValueLayout = "2006-01-02T15:04:05.000Z"

func FormatTimeValue(t time.Time) string {
	return t.UTC().Format(TimeValueLayout)
}

func ParseTimeValue(value string) (time.Time, error) {
	if t, err := time.Parse(TimeValueLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
