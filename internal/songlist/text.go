package songlist

import (
	"os"
	"strings"

	"github.com/desertthunder/setcast/internal/models"
)

// TextParser extracts tracks from tab- and line-delimited songlists: plain
// text exports, pasted tracklists, and vendor column exports.
type TextParser struct{}

// Parse implements the parser contract for text files.
func (p *TextParser) Parse(path string) models.ParseResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ParseResult{Error: models.ParseFileReadError}
	}
	text, err := decodeText(raw)
	if err != nil {
		return models.ParseResult{Error: models.ParseFileReadError}
	}
	return parseTextContent(text)
}

// parseTextContent runs the shared line heuristics over decoded text. The
// document parser reuses it after extracting plain text from rich formats.
func parseTextContent(text string) models.ParseResult {
	lines := splitLines(text)

	if i, header := firstNonBlank(lines); header != "" && isVendorExportHeader(header) {
		return parseColumnExport(lines[i:])
	}

	start := trackRegionStart(lines)
	if start < 0 {
		return models.ParseResult{Error: models.ParseNoTracks}
	}

	var songs []models.Song
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if song, ok := splitTrackLine(line); ok {
			songs = append(songs, song)
		}
	}

	if len(songs) == 0 {
		return models.ParseResult{Error: models.ParseNoValidSongs}
	}
	return models.ParseResult{Songs: songs}
}

// isVendorExportHeader reports whether a line is the tab-delimited header of
// a library export ("Name\tArtist\t..."). The signature forces the text
// parser regardless of the file's extension.
func isVendorExportHeader(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	if !strings.Contains(lower, "\t") {
		return false
	}
	return strings.HasPrefix(lower, "name\t") && strings.Contains(lower, "artist")
}

// parseColumnExport reads a vendor column export: the header names the
// columns and each following line is one track. Only the title and artist
// columns are read; anything else the vendor emits is ignored.
func parseColumnExport(lines []string) models.ParseResult {
	header := strings.Split(strings.TrimSpace(lines[0]), "\t")
	titleCol, artistCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name", "title":
			if titleCol < 0 {
				titleCol = i
			}
		case "artist":
			if artistCol < 0 {
				artistCol = i
			}
		}
	}
	if titleCol < 0 {
		return models.ParseResult{Error: models.ParseNoTracks}
	}

	var songs []models.Song
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		song := models.Song{Title: models.UnknownTitle, Artist: models.UnknownArtist}
		if titleCol < len(cols) {
			if title := strings.TrimSpace(cols[titleCol]); title != "" {
				song.Title = title
			}
		}
		if artistCol >= 0 && artistCol < len(cols) {
			if artist := strings.TrimSpace(cols[artistCol]); artist != "" {
				song.Artist = artist
			}
		}
		songs = append(songs, song)
	}

	if len(songs) == 0 {
		return models.ParseResult{Error: models.ParseNoValidSongs}
	}
	return models.ParseResult{Songs: songs}
}

func firstNonBlank(lines []string) (int, string) {
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return i, line
		}
	}
	return -1, ""
}
