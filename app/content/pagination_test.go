package content

import (
	"errors"
	"testing"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                   string
		offset, limit, total   int
		wantCurrent, wantPages int
		wantNext, wantPrev     bool
	}{
		{"empty", 0, 10, 0, 1, 0, false, false},
		{"single page", 0, 10, 7, 1, 1, false, false},
		{"exact pages", 10, 10, 20, 2, 2, false, true},
		{"middle page", 5, 5, 12, 2, 3, true, true},
		{"first of many", 0, 5, 12, 1, 3, true, false},
		{"offset past end", 40, 10, 12, 5, 2, false, true},
		{"unaligned offset", 7, 5, 12, 2, 3, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Paginate(tt.offset, tt.limit, tt.total)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Current != tt.wantCurrent {
				t.Errorf("Expected current %d, got %d", tt.wantCurrent, p.Current)
			}
			if p.Pages != tt.wantPages {
				t.Errorf("Expected pages %d, got %d", tt.wantPages, p.Pages)
			}
			if p.HasNext != tt.wantNext {
				t.Errorf("Expected hasNext %v, got %v", tt.wantNext, p.HasNext)
			}
			if p.HasPrev != tt.wantPrev {
				t.Errorf("Expected hasPrev %v, got %v", tt.wantPrev, p.HasPrev)
			}
			if p.Total != tt.total || p.Limit != tt.limit {
				t.Errorf("Expected total %d and limit %d, got %d and %d", tt.total, tt.limit, p.Total, p.Limit)
			}
		})
	}
}

func TestPaginate_Invariants(t *testing.T) {
	for total := 0; total <= 25; total++ {
		for limit := 1; limit <= 7; limit++ {
			for offset := 0; offset <= 30; offset++ {
				p, err := Paginate(offset, limit, total)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if p.Current < 1 {
					t.Fatalf("current < 1 for offset=%d limit=%d total=%d", offset, limit, total)
				}
				if p.HasNext != (p.Current < p.Pages) || p.HasPrev != (p.Current > 1) {
					t.Fatalf("inconsistent navigation flags for offset=%d limit=%d total=%d: %+v", offset, limit, total, p)
				}
				if (p.Pages == 0) != (total == 0) {
					t.Fatalf("pages=%d for total=%d", p.Pages, total)
				}
			}
		}
	}
}

func TestPaginate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name                 string
		offset, limit, total int
	}{
		{"zero limit", 0, 0, 10},
		{"negative limit", 0, -1, 10},
		{"negative offset", -5, 10, 10},
		{"negative total", 0, 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Paginate(tt.offset, tt.limit, tt.total)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
