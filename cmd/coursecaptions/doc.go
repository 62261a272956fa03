// Package main hosts the coursecaptions CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, applies
// the global --log-level and --log-format overrides, and hands the work to
// internal/workflow (translate, translate-file), internal/ledger (status) and
// internal/preflight (check). Commands stay thin; behavior lives in the
// internal packages.
package main
