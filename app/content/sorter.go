package content

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Sorter struct {
	language language.Tag
}

// NewSorter returns a sorter that collates titles for the given content language.
func NewSorter(lang language.Tag) *Sorter {
	if lang == language.Und {
		lang = language.Japanese
	}
	return &Sorter{language: lang}
}

// Run returns a sorted copy of articles. The sort is stable in both directions:
// descending order negates the comparison instead of reversing the result.
func (s *Sorter) Run(articles []Article, field SortField, order SortOrder) []Article {
	sorted := slices.Clone(articles)

	compare := s.comparator(field)
	if order == SortOrderDesc {
		ascending := compare
		compare = func(a, b Article) int { return -ascending(a, b) }
	}

	slices.SortStableFunc(sorted, compare)
	return sorted
}

func (s *Sorter) comparator(field SortField) func(a, b Article) int {
	switch field {
	case SortByPublishedAt:
		return func(a, b Article) int {
			return a.EffectivePublishDate().Compare(b.EffectivePublishDate())
		}
	case SortByViewCount:
		return func(a, b Article) int { return cmp.Compare(a.Views(), b.Views()) }
	case SortByLikeCount:
		return func(a, b Article) int { return cmp.Compare(a.Likes(), b.Likes()) }
	case SortByTitle:
		// Collators keep internal buffers and must not be shared between goroutines.
		collator := collate.New(s.language)
		return func(a, b Article) int { return collator.CompareString(a.Title, b.Title) }
	default:
		return func(a, b Article) int { return 0 }
	}
}
