// Package sqltools implements the heuristic SQL helpers used by the assistant:
// keyword formatting, validation, schema hints, explanation and optimization notes.
//
// None of the helpers parse SQL. They match fixed keyword lists against the raw
// text, case-insensitively and on word boundaries, and never return an error.
// Every function is pure and safe for concurrent use.
package sqltools
