package destinations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/setcast/internal/shared"
)

func newTestRadioco(baseURL string) *Radioco {
	cfg := shared.RadiocoConfig{
		APIKey:     "secret",
		StationID:  "s1",
		PlaylistID: "p9",
		BaseURL:    baseURL,
	}
	return NewRadioco(cfg, shared.UploadConfig{RateLimit: 1000}, nil, nil)
}

func TestRadiocoBuildMetadata(t *testing.T) {
	r := newTestRadioco("http://unused")
	meta := r.BuildMetadata(testSonglist())

	if meta.Title != "Night Moves (2026-08-29)" {
		t.Errorf("unexpected title: %q", meta.Title)
	}
	if meta.Artist != "DJ Koze" {
		t.Errorf("unexpected artist: %q", meta.Artist)
	}
	if meta.Genre != "house" {
		t.Errorf("expected first genre, got %q", meta.Genre)
	}
	if meta.PlaylistID != "p9" {
		t.Errorf("expected configured playlist id, got %q", meta.PlaylistID)
	}
	if meta.StartsAt != "2026-08-29T20:00:00Z" {
		t.Errorf("unexpected starts_at: %q", meta.StartsAt)
	}
}

func TestRadiocoUpload(t *testing.T) {
	t.Run("All Three Steps", func(t *testing.T) {
		var steps []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("missing bearer token, got %q", got)
			}
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/v2/stations/s1/media":
				steps = append(steps, "upload")
				fmt.Fprint(w, `{"id": "m42"}`)
			case r.Method == http.MethodPut && r.URL.Path == "/v2/stations/s1/media/m42/playlists":
				steps = append(steps, "assign")
				var payload map[string]string
				json.NewDecoder(r.Body).Decode(&payload)
				if payload["playlist_id"] != "p9" || payload["genre"] != "house" {
					t.Errorf("unexpected playlist payload: %v", payload)
				}
				w.WriteHeader(http.StatusNoContent)
			case r.Method == http.MethodPost && r.URL.Path == "/v2/stations/s1/schedule":
				steps = append(steps, "schedule")
				var payload map[string]string
				json.NewDecoder(r.Body).Decode(&payload)
				if payload["media_id"] != "m42" {
					t.Errorf("unexpected schedule payload: %v", payload)
				}
				w.WriteHeader(http.StatusCreated)
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		r := newTestRadioco(server.URL)
		result := r.Upload(context.Background(), testAudioFile(t), testSonglist())

		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if result.ID != "m42" {
			t.Errorf("unexpected media id: %q", result.ID)
		}
		if strings.Join(steps, ",") != "upload,assign,schedule" {
			t.Errorf("unexpected step order: %v", steps)
		}
		if !strings.Contains(result.Note, "scheduled for") {
			t.Errorf("expected schedule note, got %q", result.Note)
		}
	})

	t.Run("Schedule Step Skipped Without Time", func(t *testing.T) {
		var scheduled bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/v2/stations/s1/media":
				fmt.Fprint(w, `{"id": "m42"}`)
			case strings.HasSuffix(r.URL.Path, "/playlists"):
				w.WriteHeader(http.StatusNoContent)
			case strings.HasSuffix(r.URL.Path, "/schedule"):
				scheduled = true
			}
		}))
		defer server.Close()

		r := newTestRadioco(server.URL)
		list := testSonglist()
		list.Broadcast.Time = ""
		result := r.Upload(context.Background(), testAudioFile(t), list)

		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if scheduled {
			t.Error("expected no schedule call without a broadcast time")
		}
	})

	t.Run("Assignment Failure Aborts Remaining Steps", func(t *testing.T) {
		var scheduled bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/v2/stations/s1/media":
				fmt.Fprint(w, `{"id": "m42"}`)
			case strings.HasSuffix(r.URL.Path, "/playlists"):
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error": {"message": "playlist not found"}}`)
			case strings.HasSuffix(r.URL.Path, "/schedule"):
				scheduled = true
			}
		}))
		defer server.Close()

		r := newTestRadioco(server.URL)
		result := r.Upload(context.Background(), testAudioFile(t), testSonglist())

		if result.Success {
			t.Fatal("expected failure")
		}
		if result.ID != "m42" {
			t.Errorf("expected media id preserved for manual cleanup, got %q", result.ID)
		}
		if scheduled {
			t.Error("expected no schedule call after assignment failure")
		}
		if !strings.Contains(result.Note, "playlist assignment failed") {
			t.Errorf("expected step note, got %q", result.Note)
		}
	})
}

func TestRegistry(t *testing.T) {
	mix := newTestMixcloud("http://unused", 0)
	radio := newTestRadioco("http://unused")
	registry := NewRegistry(radio, mix)

	t.Run("Known Follows Fixed Order", func(t *testing.T) {
		known := registry.Known()
		if len(known) != 2 || known[0] != "mixcloud" || known[1] != "radioco" {
			t.Errorf("unexpected order: %v", known)
		}
	})

	t.Run("Supported", func(t *testing.T) {
		if !registry.Supported("radioco") {
			t.Error("expected radioco to be supported")
		}
		if registry.Supported("bandcamp") {
			t.Error("expected unknown destination to be unsupported")
		}
	})

	t.Run("Get", func(t *testing.T) {
		d, ok := registry.Get("mixcloud")
		if !ok || d.Name() != "mixcloud" {
			t.Errorf("expected mixcloud adapter, got %v", d)
		}
	})
}
