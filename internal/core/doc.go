// Package core orchestrates report runs over loaded transaction datasets.
//
// This package holds the run-level logic independent of any UI or transport
// layer. It is used by the HTTP server, the CLI and tests without
// modification.
//
// # Architecture
//
// A run flows strictly downward through the leaf packages:
//
//	dataset  -> schema.Resolve       (SchemaMapping, computed once)
//	         -> summary.Partition    (period buckets)
//	         -> summary.SummarizeBucket per bucket (card and cashier tables)
//	         -> report.Assembler     (one workbook per bucket)
//	         -> crypt.Pipeline       (optional protection + run log entry)
//
// [Service.Process] is the entry point. Buckets share nothing but the
// dataset, so they run on up to Workers goroutines; each writes its own
// artifact and appends its own run log line when it completes.
//
// # Degradation
//
// Missing optional columns never fail a run. A dimension whose column cannot
// be resolved is left out of every report, undated rows are skipped, and
// header highlighting failures only lose the styling. These are logged at
// warn level with the run_id.
//
// Entity lookups that match nothing and exhausted encryption backends are
// returned as errors; see [MapError] for the user-facing codes.
package core
