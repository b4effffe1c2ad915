// Package importer turns spreadsheet rows exported from external bookkeeping
// tools into canonical koi stock records.
//
// The engine runs in two modes that must stay consistent with each other:
//
//   - validate: a dry run that reports every problem in a batch (multiple
//     issues per row, plus a deduplicated list of breeders/varieties that
//     would need to be created first) without touching the database.
//   - map: the committing pass that produces canonical records, creating
//     missing customers and shipping locations on the fly.
//
// Breeders and varieties are hard references: they must already exist in the
// catalog and an unresolvable value invalidates the row. Customers and
// shipping locations are soft references: the mapper creates them on demand
// and dedupes within a batch.
//
// The package has no HTTP dependencies and talks to storage only through the
// Store interface, so any frontend (or test) can drive it.
package importer
