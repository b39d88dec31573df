package feed

import (
	"fmt"
	"strings"
)

var filterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"authors":     true,
	"link":        true,
	"categories":  true,
}

// Filterer marks imported items rejected by a source's include/exclude rules.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the items that pass every filter. Rejected items are counted, not returned.
func (f *Filterer) Run(items []Item, source *Source) ([]Item, int) {
	if len(source.Filters) == 0 {
		return items, 0
	}

	kept := make([]Item, 0, len(items))
	rejected := 0
	for _, item := range items {
		item.IsFiltered, item.FilterReason = f.check(item, source.Filters)
		if item.IsFiltered {
			rejected++
			continue
		}
		kept = append(kept, item)
	}

	return kept, rejected
}

func (f *Filterer) check(item Item, filters []Filter) (bool, string) {
	for _, filter := range filters {
		value := strings.ToLower(fieldValue(item, filter.Field))

		for _, exclude := range filter.Excludes {
			if strings.Contains(value, strings.ToLower(exclude)) {
				return true, fmt.Sprintf("excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) == 0 {
			continue
		}
		matched := false
		for _, include := range filter.Includes {
			if strings.Contains(value, strings.ToLower(include)) {
				matched = true
				break
			}
		}
		if !matched {
			return true, fmt.Sprintf("excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
		}
	}

	return false, ""
}

func fieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(append([]string{item.Category}, item.Categories...), " ")
	default:
		return ""
	}
}
