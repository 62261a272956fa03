// Package workflow translates every lecture of a course.
//
// Runner.Run takes a per-course file lock, downloads the caption archive,
// lists its members and feeds each lecture through a bounded worker pool:
// fetch caption, convert WebVTT to SRT, parse, translate via the shard
// pipeline, format and write atomically under <work_dir>/<course>/srt. Every
// outcome is recorded in the ledger so later runs can skip lectures that are
// already translated. Failures either stop the run (fail-fast) or are logged
// and counted while the remaining lectures continue.
//
// Runner.TranslateFile runs a single local caption file through the same
// pipeline without touching the ledger.
package workflow
