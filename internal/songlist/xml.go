package songlist

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/setcast/internal/models"
)

// XMLParser extracts tracks from structured XML collections: Traktor-style
// NML files with TITLE/ARTIST attributes on ENTRY elements, and
// XSPF-flavored documents with title/creator child elements on track
// elements. Structured entries skip the text heuristics entirely.
type XMLParser struct{}

// Parse implements the parser contract for XML collection files.
func (p *XMLParser) Parse(path string) models.ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return models.ParseResult{Error: models.ParseFileReadError}
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	dec.Strict = false

	var songs []models.Song
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed markup past this point; what was extracted so far
			// decides the outcome below.
			break
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch strings.ToLower(start.Name.Local) {
		case "entry":
			songs = append(songs, songFromAttrs(start))
		case "track":
			song, err := songFromChildren(dec, start)
			if err != nil {
				break
			}
			songs = append(songs, song)
		}
	}

	if len(songs) == 0 {
		return models.ParseResult{Error: models.ParseNoTracks}
	}
	return models.ParseResult{Songs: songs}
}

// songFromAttrs reads explicit TITLE/ARTIST attributes, defaulting missing
// values to the sentinels.
func songFromAttrs(start xml.StartElement) models.Song {
	song := models.Song{Title: models.UnknownTitle, Artist: models.UnknownArtist}
	for _, attr := range start.Attr {
		value := strings.TrimSpace(attr.Value)
		if value == "" {
			continue
		}
		switch strings.ToLower(attr.Name.Local) {
		case "title", "name":
			song.Title = value
		case "artist":
			song.Artist = value
		}
	}
	return song
}

// songFromChildren walks one track element, collecting title and
// artist/creator/performer child text until the element closes.
func songFromChildren(dec *xml.Decoder, start xml.StartElement) (models.Song, error) {
	song := songFromAttrs(start)
	depth := 1
	var field string
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return song, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch strings.ToLower(t.Name.Local) {
			case "title", "name":
				field = "title"
			case "artist", "creator", "performer":
				field = "artist"
			default:
				field = ""
			}
		case xml.EndElement:
			depth--
			field = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch field {
			case "title":
				song.Title = text
			case "artist":
				song.Artist = text
			}
		}
	}
	return song, nil
}
