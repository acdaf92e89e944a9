package songlist

import (
	"os"
	"regexp"
	"strings"

	"github.com/desertthunder/setcast/internal/models"
)

var (
	cueTrack   = regexp.MustCompile(`(?i)^\s*TRACK\s+\d+`)
	cueTagPair = regexp.MustCompile(`(?i)^\s*(TITLE|PERFORMER)\s+"?([^"]*)"?\s*$`)
)

// CueParser extracts tracks from cue-sheet style playlist markup: TRACK
// entries followed by TITLE/PERFORMER tag pairs. The sheet-level TITLE and
// PERFORMER above the first TRACK describe the recording, not a track, and
// are skipped.
type CueParser struct{}

// Parse implements the parser contract for cue sheets.
func (p *CueParser) Parse(path string) models.ParseResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ParseResult{Error: models.ParseFileReadError}
	}
	text, err := decodeText(raw)
	if err != nil {
		return models.ParseResult{Error: models.ParseFileReadError}
	}

	var songs []models.Song
	inTrack := false
	current := models.Song{}

	flush := func() {
		if !inTrack {
			return
		}
		if current.Title == "" {
			current.Title = models.UnknownTitle
		}
		if current.Artist == "" {
			current.Artist = models.UnknownArtist
		}
		songs = append(songs, current)
	}

	for _, line := range splitLines(text) {
		if cueTrack.MatchString(line) {
			flush()
			inTrack = true
			current = models.Song{}
			continue
		}
		if !inTrack {
			continue
		}
		m := cueTagPair.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch strings.ToUpper(m[1]) {
		case "TITLE":
			current.Title = value
		case "PERFORMER":
			current.Artist = value
		}
	}
	flush()

	if len(songs) == 0 {
		return models.ParseResult{Error: models.ParseNoTracks}
	}
	return models.ParseResult{Songs: songs}
}
