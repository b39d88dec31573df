package content

import (
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestSorter_Run_ViewCount(t *testing.T) {
	sorter := NewSorter(language.Und)
	articles := []Article{
		{ID: "a", ViewCount: ptr(10)},
		{ID: "b"},
		{ID: "c", ViewCount: ptr(30)},
	}

	assertIDs(t, sorter.Run(articles, SortByViewCount, SortOrderDesc), "c", "a", "b")
	assertIDs(t, sorter.Run(articles, SortByViewCount, SortOrderAsc), "b", "a", "c")
}

func TestSorter_Run_PublishedAtUsesEffectiveDate(t *testing.T) {
	sorter := NewSorter(language.Japanese)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	articles := []Article{
		{ID: "published-early", PublishedAt: ptr(base)},
		{ID: "created-late", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "published-mid", PublishedAt: ptr(base.Add(24 * time.Hour)), CreatedAt: base.Add(72 * time.Hour)},
	}

	assertIDs(t, sorter.Run(articles, SortByPublishedAt, SortOrderDesc), "created-late", "published-mid", "published-early")
}

func TestSorter_Run_StableInBothDirections(t *testing.T) {
	sorter := NewSorter(language.Und)
	articles := []Article{
		{ID: "1", LikeCount: ptr(5)},
		{ID: "2", LikeCount: ptr(1)},
		{ID: "3", LikeCount: ptr(5)},
		{ID: "4", LikeCount: ptr(1)},
		{ID: "5", LikeCount: ptr(5)},
	}

	assertIDs(t, sorter.Run(articles, SortByLikeCount, SortOrderDesc), "1", "3", "5", "2", "4")
	assertIDs(t, sorter.Run(articles, SortByLikeCount, SortOrderAsc), "2", "4", "1", "3", "5")
}

func TestSorter_Run_TitleCollation(t *testing.T) {
	sorter := NewSorter(language.Und)
	articles := []Article{
		{ID: "ka", Title: "かきくけこ"},
		{ID: "b", Title: "banana"},
		{ID: "a", Title: "Apple"},
		{ID: "a-kana", Title: "あいうえお"},
	}

	sorted := sorter.Run(articles, SortByTitle, SortOrderAsc)

	// Case-insensitive for Latin, and kana in gojūon order.
	if sorted[0].ID != "a" || sorted[1].ID != "b" {
		t.Errorf("Expected Latin titles first in alphabetical order, got %v", ids(sorted))
	}
	if sorted[2].ID != "a-kana" || sorted[3].ID != "ka" {
		t.Errorf("Expected kana in gojuon order, got %v", ids(sorted))
	}
}

func TestSorter_Run_DoesNotMutateInput(t *testing.T) {
	sorter := NewSorter(language.Und)
	articles := []Article{{ID: "x", ViewCount: ptr(1)}, {ID: "y", ViewCount: ptr(2)}}

	_ = sorter.Run(articles, SortByViewCount, SortOrderDesc)

	assertIDs(t, articles, "x", "y")
}

func TestSorter_Run_EmptyInput(t *testing.T) {
	sorter := NewSorter(language.Und)

	if sorted := sorter.Run(nil, SortByTitle, SortOrderAsc); len(sorted) != 0 {
		t.Errorf("Expected empty result, got %d", len(sorted))
	}
}
