package songlist

import (
	"regexp"
	"strings"

	"github.com/desertthunder/setcast/internal/models"
)

var (
	// ordinalPrefix matches a leading track number like "1.", "02)", "3 -" or "4:".
	ordinalPrefix = regexp.MustCompile(`^\s*\d{1,3}\s*[.):\-]\s*`)

	// spacedDash matches a hyphen, en-dash, or em-dash surrounded by whitespace.
	spacedDash = regexp.MustCompile(`\s+[-–—]\s+`)

	tabRun   = regexp.MustCompile(`\t+`)
	spaceRun = regexp.MustCompile(`[ ]{2,}`)

	// commaThenDash matches comma-joined artist lists followed by a
	// dash separator later in the line.
	commaThenDash = regexp.MustCompile(`,.*\s[-–—]\s`)

	numericOnly = regexp.MustCompile(`^\d+$`)
)

// looksLikeTrackLine reports whether a line plausibly lists a track: a
// leading ordinal, a title/artist separator token, tab or multi-space
// column breaks, or a comma-joined artist list followed by a separator.
// The first matching line marks the start of the track region.
func looksLikeTrackLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	switch {
	case ordinalPrefix.MatchString(trimmed):
		return true
	case spacedDash.MatchString(trimmed):
		return true
	case strings.Contains(trimmed, "\t"):
		return true
	case spaceRun.MatchString(trimmed):
		return true
	case commaThenDash.MatchString(trimmed):
		return true
	}
	return false
}

// trackRegionStart returns the index of the first line that looks like a
// track line, or -1 when no line matches. Everything above the returned
// index is treated as a header/title region.
func trackRegionStart(lines []string) int {
	for i, line := range lines {
		if looksLikeTrackLine(line) {
			return i
		}
	}
	return -1
}

// stripOrdinal removes a leading track-number prefix from a line.
func stripOrdinal(line string) string {
	return strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
}

// delimiter attempts one split strategy, returning trimmed non-empty segments.
type delimiter func(line string) []string

// delimiterOrder is the priority order for title/artist splitting. Clearly
// marked separators come before whitespace-based guesses so a multi-word
// title is not split at an interior space, and the comma sits last so
// comma-joined artist lists survive a higher-priority dash split intact.
var delimiterOrder = []delimiter{
	func(line string) []string { return segments(spacedDash.Split(line, -1)) },
	splitBareDash,
	func(line string) []string { return segments(tabRun.Split(line, -1)) },
	func(line string) []string { return segments(spaceRun.Split(line, -1)) },
	func(line string) []string { return segments(strings.Split(line, ",")) },
}

// segments trims each part and drops empties.
func segments(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// splitBareDash splits on hyphens and en-dashes that sit outside
// parentheses or brackets, so "Song (Extended - Mix) - Artist" splits only
// at the second dash.
func splitBareDash(line string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, r := range line {
		switch r {
		case '(', '[':
			depth++
			current.WriteRune(r)
		case ')', ']':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case '-', '–':
			if depth == 0 {
				parts = append(parts, current.String())
				current.Reset()
				continue
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())
	return segments(parts)
}

// splitTrackLine extracts a title/artist pair from one candidate track
// line. Delimiters are tried in priority order; the first delimiter that
// yields at least two non-empty segments whose first segment is not purely
// numeric wins. The first segment becomes the title and the remaining
// segments, joined with " - ", become the artist. When no delimiter
// succeeds the whole cleaned line is the title and the artist falls back
// to the sentinel.
func splitTrackLine(line string) (models.Song, bool) {
	clean := stripOrdinal(strings.TrimSpace(line))
	if clean == "" {
		return models.Song{}, false
	}

	for _, split := range delimiterOrder {
		segs := split(clean)
		if len(segs) < 2 || numericOnly.MatchString(segs[0]) {
			continue
		}
		return models.Song{
			Title:  segs[0],
			Artist: strings.Join(segs[1:], " - "),
		}, true
	}

	return models.Song{Title: clean, Artist: models.UnknownArtist}, true
}
