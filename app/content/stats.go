package content

import (
	"math"
	"strconv"
)

type ArticleStats struct {
	TotalArticles   int      `json:"totalArticles"`
	TotalViews      int      `json:"totalViews"`
	TotalLikes      int      `json:"totalLikes"`
	TotalReadTime   int      `json:"totalReadTime"`
	AverageViews    int      `json:"averageViews"`
	AverageLikes    int      `json:"averageLikes"`
	AverageReadTime int      `json:"averageReadTime"`
	Categories      int      `json:"categories"`
	Tags            int      `json:"tags"`
	Authors         int      `json:"authors"`
	CategoryList    []string `json:"categoryList"`
	TagList         []string `json:"tagList"`
	AuthorList      []string `json:"authorList"`

	WordCount          int            `json:"wordCount"`
	ArticlesByCategory map[string]int `json:"articlesByCategory"`
	ArticlesByMonth    map[string]int `json:"articlesByMonth"`
	FormattedViews     string         `json:"formattedViews"`
	FormattedLikes     string         `json:"formattedLikes"`
}

// Stats aggregates counters over articles. Distinct lists keep first-seen order.
func Stats(articles []Article) ArticleStats {
	stats := ArticleStats{
		TotalArticles: len(articles),
		CategoryList:  []string{},
		TagList:       []string{},
		AuthorList:    []string{},
	}

	categories := make(map[string]struct{})
	tags := make(map[string]struct{})
	authors := make(map[string]struct{})

	for _, article := range articles {
		stats.TotalViews += article.Views()
		stats.TotalLikes += article.Likes()
		if article.ReadTime != nil {
			stats.TotalReadTime += *article.ReadTime
		}
		stats.WordCount += CountCharacters(article.Content)

		stats.CategoryList = appendDistinct(stats.CategoryList, categories, article.Category.Name)
		for _, tag := range article.Tags {
			stats.TagList = appendDistinct(stats.TagList, tags, tag.Name)
		}
		if name := article.AuthorName(); name != "" {
			stats.AuthorList = appendDistinct(stats.AuthorList, authors, name)
		}
	}

	if stats.TotalArticles > 0 {
		stats.AverageViews = roundedMean(stats.TotalViews, stats.TotalArticles)
		stats.AverageLikes = roundedMean(stats.TotalLikes, stats.TotalArticles)
		stats.AverageReadTime = roundedMean(stats.TotalReadTime, stats.TotalArticles)
	}

	stats.Categories = len(stats.CategoryList)
	stats.Tags = len(stats.TagList)
	stats.Authors = len(stats.AuthorList)

	stats.ArticlesByCategory = groupSizes(GroupByCategory(articles))
	stats.ArticlesByMonth = groupSizes(GroupByMonth(articles))
	stats.FormattedViews = FormatCount(stats.TotalViews)
	stats.FormattedLikes = FormatCount(stats.TotalLikes)

	return stats
}

func appendDistinct(list []string, seen map[string]struct{}, value string) []string {
	if _, ok := seen[value]; ok {
		return list
	}
	seen[value] = struct{}{}
	return append(list, value)
}

func groupSizes(groups map[string][]Article) map[string]int {
	sizes := make(map[string]int, len(groups))
	for key, group := range groups {
		sizes[key] = len(group)
	}
	return sizes
}

func roundedMean(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

// GroupByCategory buckets articles by category name.
func GroupByCategory(articles []Article) map[string][]Article {
	groups := make(map[string][]Article)
	for _, article := range articles {
		groups[article.Category.Name] = append(groups[article.Category.Name], article)
	}
	return groups
}

// GroupByMonth buckets articles by the YYYY-MM of their effective publish date.
func GroupByMonth(articles []Article) map[string][]Article {
	groups := make(map[string][]Article)
	for _, article := range articles {
		key := article.EffectivePublishDate().Format("2006-01")
		groups[key] = append(groups[key], article)
	}
	return groups
}

// FormatCount renders a counter compactly: 999, 1.2k, 12k.
func FormatCount(count int) string {
	switch {
	case count < 1000:
		return strconv.Itoa(count)
	case count < 10000:
		return strconv.FormatFloat(float64(count)/1000, 'f', 1, 64) + "k"
	default:
		return strconv.Itoa(count/1000) + "k"
	}
}
