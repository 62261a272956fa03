// Package preflight provides readiness checks for the directories, settings
// and translation provider that coursecaptions depends on.
//
// The CLI "coursecaptions check" command runs RunAll and renders each Result
// as a status line. Provider health checks issue one real request with
// retries disabled, so a bad key or unreachable endpoint fails fast.
package preflight
