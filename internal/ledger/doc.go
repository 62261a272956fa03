// Package ledger persists translation runs and per-lecture outcomes in SQLite.
//
// Each `translate` invocation opens a run (UUID) and records one row per
// lecture and target language: translated, skipped or failed, with the cue
// count, output path and classified error. The workflow consults the ledger to
// skip lectures that were already translated, and the `status` command renders
// it.
//
// The schema is embedded and versioned; a database written by a different
// schema version is rejected with ErrSchemaMismatch instead of being migrated.
// Writes retry briefly on SQLITE_BUSY so concurrent lecture workers can share
// one Store.
package ledger
