// Package songlist converts raw songlist files into ordered title/artist
// pairs.
//
// # Dispatch
//
// [Dispatcher] is the single entry point. It selects a parser by sniffing
// the file's leading line for a known vendor export signature, then by
// extension from a fixed table. Content sniffing takes priority over the
// extension. Unrecognized extensions fail with
// [models.ParseFileReadError] without invoking any parser, and any
// parser-internal fault is normalized to [models.ParseUnknownError] so a
// fault can never escape the dispatcher.
//
// # Extraction strategies
//
// Plain-text parsing scans lines top-down, skips the header region, and
// treats the first line matching a "looks like a track line" predicate as
// the start of the track region. Candidate lines are split on an ordered
// list of delimiters; clearly marked separators win over whitespace-based
// guesses to avoid false splits inside multi-word titles.
//
// Structured formats (XML collection entries, cue-sheet tag pairs) skip the
// heuristics entirely and read explicit fields, defaulting missing values
// to the sentinel strings in [models].
//
// Text-oriented parsers detect UTF-16 byte-order marks before decoding and
// strip a leading BOM.
package songlist
