// Package logs reads the JSON log file that every coursecaptions command
// appends to.
//
// Tail returns the last N matching lines with bounded memory and reports the
// end offset; Follow polls from that offset until its context ends. Matchers
// built by MatchFields select records by top-level JSON fields such as course
// or run_id.
package logs
