// Package logtail reads the end of parley's log file for the settings view.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays O(maxLines) however large the log grows. Lines come back in
// file order. A log that does not exist yet is not an error.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// # Parsing
//
// parley logs through slog's JSON handler. Parse turns one line into an
// Entry with the time, level, message and component split out and the
// remaining attributes flattened to sorted key=value pairs. Anything that is
// not a JSON object (a panic trace, a line from an older version) is kept
// verbatim in Raw and rendered as-is by Summary.
package logtail
