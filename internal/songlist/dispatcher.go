package songlist

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setcast/internal/models"
)

// sniffLimit bounds how much of a file the dispatcher reads while looking
// for a vendor export signature.
const sniffLimit = 4096

// Parser converts one raw songlist file into an ordered sequence of
// title/artist pairs or a typed parse failure. Implementations never let a
// raw fault escape; unexpected faults surface as [models.ParseUnknownError].
type Parser interface {
	Parse(path string) models.ParseResult
}

// Dispatcher owns format detection and the parser table. It is the single
// entry point for songlist parsing.
type Dispatcher struct {
	logger *log.Logger

	text Parser
	xml  Parser
	cue  Parser
	doc  Parser
}

// NewDispatcher creates a Dispatcher with the full parser roster.
func NewDispatcher(logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		text:   &TextParser{},
		xml:    &XMLParser{},
		cue:    &CueParser{},
		doc:    &DocumentParser{},
	}
}

// Parse selects a parser for the file and delegates to it.
//
// The file's leading line is checked first: a vendor export signature
// forces the text parser regardless of extension. Otherwise the parser is
// selected by extension from a fixed table, and an unrecognized extension
// fails with [models.ParseFileReadError] without invoking any parser.
// Parser panics are recovered and normalized to [models.ParseUnknownError].
func (d *Dispatcher) Parse(path string) (result models.ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			if d.logger != nil {
				d.logger.Error("parser fault recovered", "path", path, "fault", r)
			}
			result = models.ParseResult{Error: models.ParseUnknownError}
		}
	}()

	if head, err := leadingLine(path); err == nil && isVendorExportHeader(head) {
		return d.text.Parse(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".tsv":
		return d.text.Parse(path)
	case ".xml", ".nml":
		return d.xml.Parse(path)
	case ".cue":
		return d.cue.Parse(path)
	case ".rtf", ".docx":
		return d.doc.Parse(path)
	default:
		return models.ParseResult{Error: models.ParseFileReadError}
	}
}

// leadingLine reads and decodes the first line of a file for signature
// sniffing. Reading never consumes more than sniffLimit bytes.
func leadingLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLimit)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	text, err := decodeText(buf[:n])
	if err != nil {
		return "", err
	}
	lines := splitLines(text)
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}
