package silver

import (
	"github.com/veralake/medallion-etl/internal/record"
)

// Deduplicate collapses candidate versions of the same logical entity to a
// single winner per key: the version with the latest processing timestamp,
// ties broken by latest source-file modification timestamp, remaining ties
// by earliest input position. The winner is kept whole; fields are never
// merged across candidates.
//
// Output preserves first-occurrence key order; callers sort afterwards.
func Deduplicate[T any](in []T, key func(T) string, lin func(T) record.Lineage) []T {
	if len(in) == 0 {
		return in
	}

	winners := make(map[string]T, len(in))
	var order []string

	for _, cand := range in {
		k := key(cand)
		best, seen := winners[k]
		if !seen {
			winners[k] = cand
			order = append(order, k)
			continue
		}
		if supersedes(lin(cand), lin(best)) {
			winners[k] = cand
		}
	}

	out := make([]T, 0, len(order))
	for _, k := range order {
		out = append(out, winners[k])
	}
	return out
}

// supersedes reports whether candidate lineage wins over the incumbent.
// Strict ordering only; on full ties the incumbent (earlier input) stays.
func supersedes(cand, best record.Lineage) bool {
	if cand.ProcessedTS.After(best.ProcessedTS) {
		return true
	}
	if cand.ProcessedTS.Before(best.ProcessedTS) {
		return false
	}
	return cand.ModifiedTS.After(best.ModifiedTS)
}
