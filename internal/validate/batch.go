package validate

import "github.com/ofrenda/core/internal/entity"

// BatchResult partitions a list of raw entities into valid and invalid
// items. Validation never short-circuits: every item is examined and the
// invalid ones keep their errors alongside their original index.
type BatchResult[T any] struct {
	Valid   []T
	Invalid []BatchError
	// Total is the number of items examined.
	Total int
}

// BatchError records why one batch item failed, by position in the input.
type BatchError struct {
	Index  int
	Errors []string
}

// MemorialBatch validates a list of raw memorials.
func MemorialBatch(items []map[string]any) BatchResult[entity.Memorial] {
	return runBatch(items, MemorialRaw)
}

// OfferingBatch validates a list of raw offerings.
func OfferingBatch(items []map[string]any) BatchResult[entity.VirtualOffering] {
	return runBatch(items, OfferingRaw)
}

// FamilyGroupBatch validates a list of raw family groups.
func FamilyGroupBatch(items []map[string]any) BatchResult[entity.FamilyGroup] {
	return runBatch(items, FamilyGroupRaw)
}

func runBatch[T any](items []map[string]any, fn func(map[string]any) Result[T]) BatchResult[T] {
	out := BatchResult[T]{
		Valid:   []T{},
		Invalid: []BatchError{},
		Total:   len(items),
	}
	for i, item := range items {
		r := fn(item)
		if r.Valid {
			out.Valid = append(out.Valid, r.Sanitized)
		} else {
			out.Invalid = append(out.Invalid, BatchError{Index: i, Errors: r.Errors})
		}
	}
	return out
}
