package content

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Query match weights.
const (
	titleMatchScore    = 10
	excerptMatchScore  = 5
	categoryMatchScore = 7
	authorMatchScore   = 4
	tagMatchScore      = 3
)

// Relatedness weights.
const (
	sameCategoryScore = 10
	sharedTagScore    = 3
	sameAuthorScore   = 5
)

// ScoreQueryMatch scores how well an article matches a free-text query. It is a
// ranking signal only; a zero score means no field matched. The query is
// trimmed first, the same way the store search term is, so a whitespace-only
// query scores zero.
func ScoreQueryMatch(article Article, query string) int {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return 0
	}

	contains := func(value string) bool {
		return value != "" && strings.Contains(strings.ToLower(value), needle)
	}

	score := 0
	if contains(article.Title) {
		score += titleMatchScore
	}
	if contains(article.Excerpt) {
		score += excerptMatchScore
	}
	if contains(article.Category.ID) {
		score += categoryMatchScore
	}
	if article.Author != nil && contains(article.Author.ID) {
		score += authorMatchScore
	}
	for _, tag := range article.Tags {
		if contains(tag.Name) {
			score += tagMatchScore
		}
	}

	return score
}

// ScoreRelatedness scores the topical similarity of candidate to base.
func ScoreRelatedness(base, candidate Article) int {
	score := 0

	if base.Category.ID != "" && base.Category.ID == candidate.Category.ID {
		score += sameCategoryScore
	}

	candidateTags := make(map[string]struct{}, len(candidate.Tags))
	for _, tag := range candidate.Tags {
		candidateTags[tag.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(base.Tags))
	for _, tag := range base.Tags {
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		if _, ok := candidateTags[tag.ID]; ok {
			score += sharedTagScore
		}
	}

	if base.Author != nil && candidate.Author != nil && base.Author.ID == candidate.Author.ID {
		score += sameAuthorScore
	}

	score += proximityScore(base.EffectivePublishDate(), candidate.EffectivePublishDate())

	return score
}

// proximityScore awards the single tightest band the day distance falls into.
func proximityScore(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	days := diff.Hours() / 24

	switch {
	case days <= 7:
		return 3
	case days <= 30:
		return 2
	case days <= 90:
		return 1
	default:
		return 0
	}
}

type scored struct {
	article Article
	score   int
}

// RankByQuery orders a copy of articles by descending ScoreQueryMatch. Equal
// scores keep their input order.
func RankByQuery(articles []Article, query string) []Article {
	ranked := make([]scored, 0, len(articles))
	for _, article := range articles {
		ranked = append(ranked, scored{article: article, score: ScoreQueryMatch(article, query)})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	return unwrap(ranked)
}

// RankRelated returns up to limit candidates other than base, best first.
// Ties, including candidates that share nothing with base, go to the more
// recently published one, so the slots fill up whenever enough candidates exist.
func RankRelated(base Article, candidates []Article, limit int) []Article {
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == base.ID {
			continue
		}
		ranked = append(ranked, scored{article: candidate, score: ScoreRelatedness(base, candidate)})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return b.article.EffectivePublishDate().Compare(a.article.EffectivePublishDate())
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return unwrap(ranked)
}

func unwrap(ranked []scored) []Article {
	articles := make([]Article, 0, len(ranked))
	for _, r := range ranked {
		articles = append(articles, r.article)
	}
	return articles
}
