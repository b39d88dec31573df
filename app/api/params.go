package api

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/seo-media/app/content"
)

// parseCriteria reads search criteria from the query string. Tags may be
// repeated or comma separated.
func parseCriteria(c *gin.Context) (content.SearchCriteria, error) {
	page, limit, err := parsePage(c)
	if err != nil {
		return content.SearchCriteria{}, err
	}

	premium, err := boolParam(c, "premium")
	if err != nil {
		return content.SearchCriteria{}, err
	}

	isNew, err := boolParam(c, "new")
	if err != nil {
		return content.SearchCriteria{}, err
	}

	return content.SearchCriteria{
		Query:     cmp.Or(c.Query("query"), c.Query("q")),
		Category:  strings.TrimSpace(c.Query("category")),
		Tags:      listParam(c, "tags"),
		Author:    strings.TrimSpace(c.Query("author")),
		Premium:   premium,
		New:       isNew,
		DateRange: content.DateRange(c.Query("dateRange")),
		SortBy:    content.SortField(c.Query("sortBy")),
		SortOrder: content.SortOrder(c.Query("sortOrder")),
		Page:      page,
		Limit:     limit,
	}, nil
}

func parsePage(c *gin.Context) (page, limit int, err error) {
	if page, err = intParam(c, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = intParam(c, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", content.ErrInvalidArgument, name, raw)
	}
	return value, nil
}

func boolParam(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean, got %q", content.ErrInvalidArgument, name, raw)
	}
	return &value, nil
}

func listParam(c *gin.Context, name string) []string {
	var values []string
	for _, raw := range c.QueryArray(name) {
		for part := range strings.SplitSeq(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
