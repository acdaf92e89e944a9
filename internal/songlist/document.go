package songlist

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/desertthunder/setcast/internal/models"
)

// DocumentParser extracts plain text from rich-document songlists (.rtf and
// .docx) and feeds the result through the same line heuristics as the text
// parser. DJs sending formatted tracklists is common enough that refusing
// these files would force a minimal-songlist fallback for well-formed lists.
type DocumentParser struct{}

// Parse implements the parser contract for rich documents.
func (p *DocumentParser) Parse(path string) models.ParseResult {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		text, err = extractDocxText(path)
	case ".rtf":
		text, err = extractRTFText(path)
	default:
		return models.ParseResult{Error: models.ParseFileReadError}
	}
	if err != nil {
		return models.ParseResult{Error: models.ParseFileReadError}
	}

	return parseTextContent(text)
}

// extractDocxText reads the main document part of a .docx archive and
// flattens runs of text, inserting a newline at each paragraph end.
func extractDocxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	var doc io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if doc == nil {
		return "", os.ErrNotExist
	}
	defer doc.Close()

	dec := xml.NewDecoder(doc)
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "p" {
				buf.WriteString("\n")
			}
			inText = false
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return buf.String(), nil
}

var (
	rtfGroup   = regexp.MustCompile(`\{\\\*[^{}]*\}`)
	rtfNewline = regexp.MustCompile(`\\(par|line)\b`)
	rtfControl = regexp.MustCompile(`\\[a-zA-Z]+-?\d*\s?`)
	rtfHexChar = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
)

// extractRTFText strips RTF control words and groups, preserving paragraph
// breaks. This is a best-effort plain-text pass, not an RTF renderer;
// whatever survives is handed to the line heuristics.
func extractRTFText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(raw)
	text = rtfGroup.ReplaceAllString(text, "")
	text = rtfNewline.ReplaceAllString(text, "\n")
	text = rtfHexChar.ReplaceAllString(text, "")
	text = rtfControl.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "{", "")
	text = strings.ReplaceAll(text, "}", "")
	return text, nil
}
