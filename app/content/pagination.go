package content

import "fmt"

// Paginate derives navigation metadata for an offset/limit window over totalCount records.
func Paginate(offset, limit, totalCount int) (Pagination, error) {
	if limit <= 0 {
		return Pagination{}, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if offset < 0 {
		return Pagination{}, fmt.Errorf("%w: offset must be non-negative, got %d", ErrInvalidArgument, offset)
	}
	if totalCount < 0 {
		return Pagination{}, fmt.Errorf("%w: total count must be non-negative, got %d", ErrInvalidArgument, totalCount)
	}

	current := offset/limit + 1
	pages := (totalCount + limit - 1) / limit

	return Pagination{
		Current: current,
		Total:   totalCount,
		Pages:   pages,
		HasNext: current < pages,
		HasPrev: current > 1,
		Limit:   limit,
	}, nil
}
