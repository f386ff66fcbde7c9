// Package summary turns typed transaction records into per-entity statistics.
//
// The pieces, leaves first:
//
//   - Lags and Narrative derive inter-transaction gaps for one entity.
//   - Summarize ranks the entities of a record set and aggregates each one.
//   - Partition splits a dataset into period buckets, and SummarizeBucket
//     runs Summarize once per configured dimension.
//   - Lookup summarizes a single named entity over a record set.
//
// Everything here is pure: no I/O, no shared state. Buckets can be summarized
// on separate goroutines.
package summary
