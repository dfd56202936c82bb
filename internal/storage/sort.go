package storage

import (
	"slices"

	"github.com/iliyamo/rental-api/internal/model"
)

// Sort orders entities by creation time, then id. Backends return maps, so
// list endpoints sort to keep output deterministic.
func Sort[T model.Entity](items []T) {
	slices.SortFunc(items, func(a, b T) int {
		ab, bb := a.Base(), b.Base()
		if c := ab.CreatedAt.Compare(bb.CreatedAt); c != 0 {
			return c
		}
		switch {
		case ab.ID < bb.ID:
			return -1
		case ab.ID > bb.ID:
			return 1
		}
		return 0
	})
}
