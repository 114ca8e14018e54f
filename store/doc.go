// Package store provides an in-memory column-family store that executes
// query statements.
//
// Families are seeded from parquet files with LoadParquet, or from rows with
// Insert. Store implements query.Manager; AsyncStore wraps a Store with a
// worker pool and implements query.AsyncManager.
//
//	s := store.New()
//	if _, err := s.LoadParquet("God", "data/gods.parquet"); err != nil {
//	    log.Fatal(err)
//	}
//	entities, err := query.NewQueryParser().Query(ctx, `select * from God where age > 10`, s, nil)
//
// Conditions compare numbers, strings, booleans, times, durations and
// uuids. Dotted names such as address.city reach into nested attributes,
// and a map literal matches the listed sub-attributes of a nested attribute.
package store
