package imports

import (
	"slices"

	"pysort/pkg/classify"
)

// Sort partitions statements by provenance and orders each bucket.
// Buckets come back in FUTURE, BUILTIN, THIRD_PARTY, APPLICATION order
// with empty buckets omitted. Within a bucket plain imports sort before
// from-imports, case-insensitively with original case breaking ties.
func Sort(statements []Statement, settings classify.Settings, classifier *classify.Classifier) [][]Statement {
	buckets := make(map[classify.Classification][]Statement)
	for _, stmt := range statements {
		tp := classifier.Classify(stmt.Module(), settings)
		if tp == classify.Future {
			if _, plain := stmt.(*Import); plain {
				// `import __future__` is legal but semantically inert,
				// so it does not earn the leading group.
				tp = classify.Builtin
			}
		}
		buckets[tp] = append(buckets[tp], stmt)
	}

	for _, bucket := range buckets {
		slices.SortFunc(bucket, func(a, b Statement) int {
			return compareKeys(a.sortKey(), b.sortKey())
		})
	}

	out := make([][]Statement, 0, len(buckets))
	for _, tp := range classify.Order {
		if bucket := buckets[tp]; len(bucket) > 0 {
			out = append(out, bucket)
		}
	}
	return out
}
