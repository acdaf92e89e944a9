// package models defines the data model for the setcast upload pipeline
package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Sentinel values used when a track line or entry carries no usable field.
// They are valid data, not nulls; a persisted Songlist never contains empty fields.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// SonglistVersion is the schema version written into every Songlist artifact.
const SonglistVersion = "1.0"

// Song is a single entry in a set's track list. A song has no identity
// beyond its position in the list.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// ParseErrorKind is the closed enumeration of parse failure stages,
// ordered by increasing specificity: read → structural detection → extraction.
type ParseErrorKind int

const (
	ParseOK            ParseErrorKind = iota // songs are authoritative
	ParseFileReadError                       // file missing, unreadable, or unrecognized format
	ParseNoTracks                            // no track region detected
	ParseNoValidSongs                        // track region found but no song extracted
	ParseUnknownError                        // unexpected internal fault, normalized
)

func (k ParseErrorKind) String() string {
	switch k {
	case ParseOK:
		return "none"
	case ParseFileReadError:
		return "file_read_error"
	case ParseNoTracks:
		return "no_tracks_detected"
	case ParseNoValidSongs:
		return "no_valid_songs"
	case ParseUnknownError:
		return "unknown_error"
	default:
		return ""
	}
}

// ParseResult is the output of any songlist parser. Songs is authoritative
// iff Error is [ParseOK]; otherwise it is empty or unreliable and must not
// be persisted as final output.
type ParseResult struct {
	Songs []Song
	Error ParseErrorKind
}

// OK reports whether the result's songs can be trusted.
func (r ParseResult) OK() bool {
	return r.Error == ParseOK
}

// UserRole distinguishes how much per-destination detail an upload's
// terminal status exposes. It is an information-hiding boundary, not a
// capability difference.
type UserRole string

const (
	RoleDJ    UserRole = "dj"
	RoleAdmin UserRole = "admin"
)

// BroadcastMetadata describes one show submission. It is produced by the
// upstream receiver and is a read-only input to the pipeline; parsers never
// mutate it.
type BroadcastMetadata struct {
	Date         string   `json:"date"` // broadcast date, YYYY-MM-DD
	Time         string   `json:"time,omitempty"`
	DJName       string   `json:"dj_name"`
	Title        string   `json:"title"`
	Genres       []string `json:"genres,omitempty"`
	Description  string   `json:"description,omitempty"`
	ArtworkPath  string   `json:"artwork_path,omitempty"`
	Role         UserRole `json:"user_role"`
	Destinations string   `json:"destinations,omitempty"` // comma-separated override, ADMIN only
}

// Validate checks the fields the pipeline cannot proceed without.
func (m BroadcastMetadata) Validate() error {
	var missing []string
	if strings.TrimSpace(m.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(m.DJName) == "" {
		missing = append(missing, "dj_name")
	}
	if strings.TrimSpace(m.Title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required metadata fields: %s", strings.Join(missing, ", "))
	}
	if _, err := time.Parse("2006-01-02", m.Date); err != nil {
		return fmt.Errorf("invalid broadcast date %q: %w", m.Date, err)
	}
	return nil
}

// Year returns the four-digit year of the broadcast date, or "0000" if the
// date does not parse.
func (m BroadcastMetadata) Year() string {
	t, err := time.Parse("2006-01-02", m.Date)
	if err != nil {
		return "0000"
	}
	return t.Format("2006")
}

// LoadBroadcastMetadata reads a metadata record deposited by the receiver.
func LoadBroadcastMetadata(path string) (*BroadcastMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	var meta BroadcastMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %w", err)
	}
	if meta.Role == "" {
		meta.Role = RoleDJ
	}
	return &meta, nil
}

// Songlist is the canonical parsed representation of a DJ set. It is
// constructed once per upload and never mutated after upload attempts begin.
type Songlist struct {
	Broadcast BroadcastMetadata `json:"broadcast_data"`
	Tracks    []Song            `json:"track_list"`
	Version   string            `json:"version"`
	Role      UserRole          `json:"user_role"`
}

// NewSonglist builds the canonical Songlist for an upload from parsed songs.
func NewSonglist(meta BroadcastMetadata, tracks []Song) *Songlist {
	return &Songlist{
		Broadcast: meta,
		Tracks:    tracks,
		Version:   SonglistVersion,
		Role:      meta.Role,
	}
}

// NewMinimalSonglist builds the single-placeholder-track fallback used when
// parsing yields no usable tracks. The pipeline never fails an upload solely
// because its songlist could not be parsed.
func NewMinimalSonglist(meta BroadcastMetadata) *Songlist {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = UnknownTitle
	}
	artist := strings.TrimSpace(meta.DJName)
	if artist == "" {
		artist = UnknownArtist
	}
	return NewSonglist(meta, []Song{{Title: title, Artist: artist}})
}

// Save writes the Songlist artifact as indented JSON.
func (s *Songlist) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal songlist: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write songlist artifact: %w", err)
	}
	return nil
}

// LoadSonglist reads a previously persisted Songlist artifact.
func LoadSonglist(path string) (*Songlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read songlist artifact: %w", err)
	}
	var list Songlist
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse songlist artifact: %w", err)
	}
	return &list, nil
}
