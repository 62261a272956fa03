// Package services defines shared utilities consumed by the translation
// workflow and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, course slugs, and lecture names for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     recorded in the run ledger.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error classification, observability) stays uniform across the pipeline.
package services
