package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBroadcastMetadata(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name    string
			meta    BroadcastMetadata
			wantErr bool
		}{
			{
				name: "Complete",
				meta: BroadcastMetadata{Date: "2026-08-29", DJName: "DJ Koze", Title: "Night Moves"},
			},
			{
				name:    "Missing DJ Name",
				meta:    BroadcastMetadata{Date: "2026-08-29", Title: "Night Moves"},
				wantErr: true,
			},
			{
				name:    "Missing Everything",
				meta:    BroadcastMetadata{},
				wantErr: true,
			},
			{
				name:    "Malformed Date",
				meta:    BroadcastMetadata{Date: "29/08/2026", DJName: "DJ Koze", Title: "Night Moves"},
				wantErr: true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.meta.Validate()
				if tt.wantErr && err == nil {
					t.Error("expected validation error")
				}
				if !tt.wantErr && err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			})
		}
	})

	t.Run("Year", func(t *testing.T) {
		meta := BroadcastMetadata{Date: "2026-08-29"}
		if meta.Year() != "2026" {
			t.Errorf("expected 2026, got %s", meta.Year())
		}

		meta.Date = "garbage"
		if meta.Year() != "0000" {
			t.Errorf("expected 0000 fallback, got %s", meta.Year())
		}
	})

	t.Run("Load Defaults Role To DJ", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metadata.json")
		content := `{"date": "2026-08-29", "dj_name": "DJ Koze", "title": "Night Moves"}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		meta, err := LoadBroadcastMetadata(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if meta.Role != RoleDJ {
			t.Errorf("expected default role %s, got %s", RoleDJ, meta.Role)
		}
	})
}

func TestSonglist(t *testing.T) {
	meta := BroadcastMetadata{Date: "2026-08-29", DJName: "DJ Koze", Title: "Night Moves", Role: RoleAdmin}

	t.Run("NewSonglist", func(t *testing.T) {
		list := NewSonglist(meta, []Song{{Title: "Flash", Artist: "Green Velvet"}})

		if list.Version != SonglistVersion {
			t.Errorf("expected version %s, got %s", SonglistVersion, list.Version)
		}
		if list.Role != RoleAdmin {
			t.Errorf("expected role carried over, got %s", list.Role)
		}
		if len(list.Tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(list.Tracks))
		}
	})

	t.Run("Minimal Fallback Uses Broadcast Fields", func(t *testing.T) {
		list := NewMinimalSonglist(meta)

		if len(list.Tracks) != 1 {
			t.Fatalf("expected exactly 1 track, got %d", len(list.Tracks))
		}
		if list.Tracks[0].Title != "Night Moves" || list.Tracks[0].Artist != "DJ Koze" {
			t.Errorf("unexpected placeholder track: %+v", list.Tracks[0])
		}
	})

	t.Run("Minimal Fallback Sentinels", func(t *testing.T) {
		list := NewMinimalSonglist(BroadcastMetadata{Date: "2026-08-29"})

		if list.Tracks[0].Title != UnknownTitle {
			t.Errorf("expected title sentinel, got %q", list.Tracks[0].Title)
		}
		if list.Tracks[0].Artist != UnknownArtist {
			t.Errorf("expected artist sentinel, got %q", list.Tracks[0].Artist)
		}
	})

	t.Run("Save And Load Roundtrip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songlist.json")
		list := NewSonglist(meta, []Song{{Title: "Flash", Artist: "Green Velvet"}})

		if err := list.Save(path); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := LoadSonglist(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.Broadcast.DJName != "DJ Koze" {
			t.Errorf("unexpected broadcast data: %+v", loaded.Broadcast)
		}
		if loaded.Tracks[0].Artist != "Green Velvet" {
			t.Errorf("unexpected track: %+v", loaded.Tracks[0])
		}
	})
}

func TestParseErrorKind(t *testing.T) {
	tests := []struct {
		kind ParseErrorKind
		want string
	}{
		{ParseOK, "none"},
		{ParseFileReadError, "file_read_error"},
		{ParseNoTracks, "no_tracks_detected"},
		{ParseNoValidSongs, "no_valid_songs"},
		{ParseUnknownError, "unknown_error"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestStatusKind(t *testing.T) {
	for _, s := range []StatusKind{StatusPending, StatusReceived, StatusProcessing, StatusSongsConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []StatusKind{StatusCompleted, StatusError} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestSkippedResult(t *testing.T) {
	result := SkippedResult()
	if !result.Success || !result.Skipped {
		t.Errorf("skipped result must be a successful skip: %+v", result)
	}
}
