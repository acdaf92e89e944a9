// package formatter exports canonical songlists to other formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/setcast/internal/models"
)

// ExportToCSV converts a Songlist to CSV format with columns: Position, Title, Artist
func ExportToCSV(list *models.Songlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range list.Tracks {
		record := []string{
			fmt.Sprintf("%d", i+1),
			track.Title,
			track.Artist,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Songlist to Markdown format for show notes.
func ExportToMarkdown(list *models.Songlist) ([]byte, error) {
	var buf bytes.Buffer
	b := list.Broadcast

	buf.WriteString(fmt.Sprintf("# %s\n\n", b.Title))
	buf.WriteString(fmt.Sprintf("**DJ**: %s\n", b.DJName))
	buf.WriteString(fmt.Sprintf("**Date**: %s\n", b.Date))
	if len(b.Genres) > 0 {
		buf.WriteString(fmt.Sprintf("**Genres**: %s\n", strings.Join(b.Genres, ", ")))
	}
	if b.Description != "" {
		buf.WriteString(fmt.Sprintf("\n%s\n", b.Description))
	}

	buf.WriteString("\n## Tracklist\n\n")
	for i, track := range list.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Title, track.Artist))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Songlist to plain text format
func ExportToText(list *models.Songlist) ([]byte, error) {
	var buf bytes.Buffer
	b := list.Broadcast

	buf.WriteString(fmt.Sprintf("Set: %s\n", b.Title))
	buf.WriteString(fmt.Sprintf("DJ: %s\n", b.DJName))
	buf.WriteString(fmt.Sprintf("Date: %s\n", b.Date))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(list.Tracks)))

	for i, track := range list.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Title, track.Artist))
	}

	return buf.Bytes(), nil
}

// WriteExports writes the CSV and Markdown renditions of a Songlist next to
// its archive, returning the created paths.
func WriteExports(list *models.Songlist, baseFilepath string) ([]string, error) {
	csvData, err := ExportToCSV(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	csvFile := baseFilepath + "_tracklist.csv"
	if err := os.WriteFile(csvFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	mdData, err := ExportToMarkdown(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}
	mdFile := baseFilepath + "_shownotes.md"
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return []string{csvFile, mdFile}, nil
}
