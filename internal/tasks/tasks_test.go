package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/setcast/internal/destinations"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/songlist"
	"github.com/desertthunder/setcast/internal/status"
	tu "github.com/desertthunder/setcast/internal/testing"
)

func newTestConfig(t *testing.T) *shared.Config {
	t.Helper()
	root := t.TempDir()
	cfg := shared.DefaultConfig()
	cfg.Storage.IncomingDir = filepath.Join(root, "incoming")
	cfg.Storage.ArtifactDir = filepath.Join(root, "artifacts")
	cfg.Storage.StatusDir = filepath.Join(root, "status")
	cfg.Storage.ArchiveDir = filepath.Join(root, "archive")
	cfg.Upload.Default = "mixcloud"
	cfg.Upload.MaxRetries = 0
	cfg.Upload.RetryDelaySeconds = 0
	return cfg
}

func seedUpload(t *testing.T, cfg *shared.Config, uploadID string, meta models.BroadcastMetadata, listContent string) {
	t.Helper()
	dir := filepath.Join(cfg.Storage.IncomingDir, uploadID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create upload dir: %v", err)
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("failed to marshal metadata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), raw, 0644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}
	key := shared.UploadKey(meta.Date, meta.DJName, meta.Title)
	if err := os.WriteFile(filepath.Join(dir, key+".mp3"), []byte("audio"), 0644); err != nil {
		t.Fatalf("failed to write audio: %v", err)
	}
	if listContent != "" {
		if err := os.WriteFile(filepath.Join(dir, key+".txt"), []byte(listContent), 0644); err != nil {
			t.Fatalf("failed to write songlist: %v", err)
		}
	}
}

func newTestEngine(cfg *shared.Config, dests ...destinations.Destination) (*UploadEngine, *status.Store) {
	store, _ := status.NewStore(cfg.Storage.StatusDir)
	engine := NewUploadEngine(EngineOpts{
		Config:   cfg,
		Parser:   songlist.NewDispatcher(nil),
		Registry: destinations.NewRegistry(dests...),
		Store:    store,
		Archiver: NewFSArchiver(cfg.Storage.ArchiveDir),
	})
	return engine, store
}

func adminMeta() models.BroadcastMetadata {
	return models.BroadcastMetadata{
		Date:   "2026-08-29",
		DJName: "DJ Koze",
		Title:  "Night Moves",
		Role:   models.RoleAdmin,
	}
}

// failingArchiver always reports an archive failure.
type failingArchiver struct{}

func (f *failingArchiver) Archive(list *models.Songlist, inputs ArchiveInputs) (string, error) {
	return "", errors.New("disk full")
}

func TestUploadEngine(t *testing.T) {
	tracklist := "1. Flash - Green Velvet\n2. Spastik - Plastikman\n"

	t.Run("Completed Run", func(t *testing.T) {
		cfg := newTestConfig(t)
		mix := &tu.MockDestination{DestName: "mixcloud"}
		radio := &tu.MockDestination{DestName: "radioco"}
		engine, store := newTestEngine(cfg, mix, radio)
		seedUpload(t, cfg, "up-1", adminMeta(), tracklist)

		if err := engine.Run(context.Background(), "up-1", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		record, err := store.Read("up-1")
		if err != nil {
			t.Fatalf("status read failed: %v", err)
		}
		if record.Status != models.StatusCompleted {
			t.Fatalf("expected completed, got %s: %s", record.Status, record.Message)
		}
		if record.Detail["track_count"] != float64(2) {
			t.Errorf("unexpected track_count: %v", record.Detail["track_count"])
		}

		results, ok := record.Detail["destinations"].(map[string]any)
		if !ok {
			t.Fatalf("expected destination breakdown, got %v", record.Detail["destinations"])
		}
		if len(results) != 2 {
			t.Errorf("expected every known destination enumerated, got %v", results)
		}
		radioResult := results["radioco"].(map[string]any)
		if radioResult["skipped"] != true {
			t.Errorf("expected unselected destination to be skipped: %v", radioResult)
		}

		if len(mix.Calls) != 1 {
			t.Errorf("expected 1 mixcloud upload, got %d", len(mix.Calls))
		}
		if len(radio.Calls) != 0 {
			t.Errorf("expected no radioco upload, got %d", len(radio.Calls))
		}

		if _, err := os.Stat(filepath.Join(cfg.Storage.IncomingDir, "up-1")); !os.IsNotExist(err) {
			t.Error("expected incoming directory to be cleared after archive")
		}

		archiveDir := filepath.Join(cfg.Storage.ArchiveDir, "2026", "2026-08-29_DJ_Koze")
		tu.AssertDirExists(t, archiveDir)
		tu.AssertFileExists(t, filepath.Join(archiveDir, "2026-08-29_DJ_Koze_Night_Moves.mp3"))
		tu.AssertFileExists(t, filepath.Join(archiveDir, "2026-08-29_DJ_Koze_Night_Moves_songlist.json"))
		tu.AssertFileExists(t, filepath.Join(archiveDir, "2026-08-29_DJ_Koze_Night_Moves_tracklist.csv"))
	})

	t.Run("DJ Role Hides Destination Breakdown", func(t *testing.T) {
		cfg := newTestConfig(t)
		engine, store := newTestEngine(cfg, &tu.MockDestination{DestName: "mixcloud"})
		meta := adminMeta()
		meta.Role = models.RoleDJ
		seedUpload(t, cfg, "up-2", meta, tracklist)

		if err := engine.Run(context.Background(), "up-2", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		record, _ := store.Read("up-2")
		if record.Status != models.StatusCompleted {
			t.Fatalf("expected completed, got %s", record.Status)
		}
		if _, ok := record.Detail["destinations"]; ok {
			t.Error("expected destination breakdown hidden for DJ role")
		}
		if _, ok := record.Detail["archive"]; ok {
			t.Error("expected archive location hidden for DJ role")
		}
		if record.Detail["track_count"] != float64(2) {
			t.Errorf("expected track_count visible to DJ, got %v", record.Detail)
		}
	})

	t.Run("Unparseable Songlist Falls Back And Completes", func(t *testing.T) {
		cfg := newTestConfig(t)
		mix := &tu.MockDestination{DestName: "mixcloud"}
		engine, store := newTestEngine(cfg, mix)
		seedUpload(t, cfg, "up-3", adminMeta(), "just some notes\nnothing structured\n")

		if err := engine.Run(context.Background(), "up-3", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		record, _ := store.Read("up-3")
		if record.Status != models.StatusCompleted {
			t.Fatalf("expected completed despite parse failure, got %s", record.Status)
		}
		if record.Detail["parse_error"] != models.ParseNoTracks.String() {
			t.Errorf("expected parse_error detail, got %v", record.Detail["parse_error"])
		}
		if record.Detail["track_count"] != float64(1) {
			t.Errorf("expected minimal songlist with 1 track, got %v", record.Detail["track_count"])
		}
		if len(mix.Calls) != 1 || len(mix.Calls[0].Tracks) != 1 {
			t.Fatalf("expected upload with minimal songlist, got %+v", mix.Calls)
		}
		if mix.Calls[0].Tracks[0].Title != "Night Moves" {
			t.Errorf("expected placeholder track from broadcast title, got %+v", mix.Calls[0].Tracks[0])
		}
	})

	t.Run("Missing Songlist Is Terminal", func(t *testing.T) {
		cfg := newTestConfig(t)
		engine, store := newTestEngine(cfg, &tu.MockDestination{DestName: "mixcloud"})
		seedUpload(t, cfg, "up-4", adminMeta(), "")

		err := engine.Run(context.Background(), "up-4", nil)
		if !errors.Is(err, shared.ErrMissingSonglist) {
			t.Fatalf("expected ErrMissingSonglist, got %v", err)
		}

		record, _ := store.Read("up-4")
		if record.Status != models.StatusError {
			t.Errorf("expected error status, got %s", record.Status)
		}
	})

	t.Run("Missing Audio Is Terminal", func(t *testing.T) {
		cfg := newTestConfig(t)
		engine, store := newTestEngine(cfg, &tu.MockDestination{DestName: "mixcloud"})
		seedUpload(t, cfg, "up-5", adminMeta(), tracklist)
		os.Remove(filepath.Join(cfg.Storage.IncomingDir, "up-5", "2026-08-29_DJ_Koze_Night_Moves.mp3"))

		err := engine.Run(context.Background(), "up-5", nil)
		if !errors.Is(err, shared.ErrMissingAudio) {
			t.Fatalf("expected ErrMissingAudio, got %v", err)
		}

		record, _ := store.Read("up-5")
		if record.Status != models.StatusError {
			t.Errorf("expected error status, got %s", record.Status)
		}
	})

	t.Run("Misnamed Audio Is Terminal", func(t *testing.T) {
		cfg := newTestConfig(t)
		engine, _ := newTestEngine(cfg, &tu.MockDestination{DestName: "mixcloud"})
		seedUpload(t, cfg, "up-12", adminMeta(), tracklist)
		dir := filepath.Join(cfg.Storage.IncomingDir, "up-12")
		if err := os.Rename(filepath.Join(dir, "2026-08-29_DJ_Koze_Night_Moves.mp3"), filepath.Join(dir, "show.mp3")); err != nil {
			t.Fatalf("failed to rename audio: %v", err)
		}

		err := engine.Run(context.Background(), "up-12", nil)
		if !errors.Is(err, shared.ErrMissingAudio) {
			t.Fatalf("expected ErrMissingAudio for misnamed file, got %v", err)
		}
	})

	t.Run("All Destinations Fail Still Completes And Archives", func(t *testing.T) {
		cfg := newTestConfig(t)
		mix := &tu.MockDestination{
			DestName: "mixcloud",
			Results:  []models.DestinationResult{{Error: "network error", Recoverable: true}},
		}
		engine, store := newTestEngine(cfg, mix)
		seedUpload(t, cfg, "up-6", adminMeta(), tracklist)

		if err := engine.Run(context.Background(), "up-6", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		record, _ := store.Read("up-6")
		if record.Status != models.StatusCompleted {
			t.Fatalf("expected completed status, got %s: %s", record.Status, record.Message)
		}
		if !strings.Contains(record.Message, "0/1") {
			t.Errorf("expected failure count in message, got %q", record.Message)
		}
		results := record.Detail["destinations"].(map[string]any)
		mixResult := results["mixcloud"].(map[string]any)
		if mixResult["recoverable"] != true {
			t.Errorf("expected recoverable failure recorded: %v", mixResult)
		}

		tu.AssertDirExists(t, filepath.Join(cfg.Storage.ArchiveDir, "2026", "2026-08-29_DJ_Koze"))
	})

	t.Run("Admin Destination Override", func(t *testing.T) {
		cfg := newTestConfig(t)
		mix := &tu.MockDestination{DestName: "mixcloud"}
		radio := &tu.MockDestination{DestName: "radioco"}
		engine, store := newTestEngine(cfg, mix, radio)
		meta := adminMeta()
		meta.Destinations = "radioco, bandcamp"
		seedUpload(t, cfg, "up-7", meta, tracklist)

		if err := engine.Run(context.Background(), "up-7", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if len(radio.Calls) != 1 {
			t.Errorf("expected radioco upload, got %d calls", len(radio.Calls))
		}
		if len(mix.Calls) != 0 {
			t.Errorf("expected mixcloud skipped, got %d calls", len(mix.Calls))
		}

		record, _ := store.Read("up-7")
		results := record.Detail["destinations"].(map[string]any)
		mixResult := results["mixcloud"].(map[string]any)
		if mixResult["skipped"] != true {
			t.Errorf("expected mixcloud recorded as skipped: %v", mixResult)
		}
	})

	t.Run("Override With Only Unknown Names Falls Back To Default", func(t *testing.T) {
		cfg := newTestConfig(t)
		mix := &tu.MockDestination{DestName: "mixcloud"}
		radio := &tu.MockDestination{DestName: "radioco"}
		engine, _ := newTestEngine(cfg, mix, radio)
		meta := adminMeta()
		meta.Destinations = "bandcamp, soundcloud"
		seedUpload(t, cfg, "up-11", meta, tracklist)

		if err := engine.Run(context.Background(), "up-11", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if len(mix.Calls) != 1 {
			t.Errorf("expected fallback to default mixcloud, got %d calls", len(mix.Calls))
		}
		if len(radio.Calls) != 0 {
			t.Errorf("expected radioco skipped, got %d calls", len(radio.Calls))
		}
	})

	t.Run("Existing Artifact Is Reused", func(t *testing.T) {
		cfg := newTestConfig(t)
		mix := &tu.MockDestination{DestName: "mixcloud"}
		engine, _ := newTestEngine(cfg, mix)
		meta := adminMeta()
		seedUpload(t, cfg, "up-8", meta, tracklist)

		confirmed := models.NewSonglist(meta, []models.Song{{Title: "Operator Edit", Artist: "Corrected"}})
		artifactDir := filepath.Join(cfg.Storage.ArtifactDir, "up-8")
		os.MkdirAll(artifactDir, 0755)
		if err := confirmed.Save(filepath.Join(artifactDir, "songlist.json")); err != nil {
			t.Fatalf("failed to seed artifact: %v", err)
		}

		if err := engine.Run(context.Background(), "up-8", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if len(mix.Calls) != 1 {
			t.Fatalf("expected 1 upload, got %d", len(mix.Calls))
		}
		if mix.Calls[0].Tracks[0].Title != "Operator Edit" {
			t.Errorf("expected reused artifact tracks, got %+v", mix.Calls[0].Tracks)
		}
	})

	t.Run("Archive Failure Keeps Upload Completed", func(t *testing.T) {
		cfg := newTestConfig(t)
		store, _ := status.NewStore(cfg.Storage.StatusDir)
		engine := NewUploadEngine(EngineOpts{
			Config:   cfg,
			Parser:   songlist.NewDispatcher(nil),
			Registry: destinations.NewRegistry(&tu.MockDestination{DestName: "mixcloud"}),
			Store:    store,
			Archiver: &failingArchiver{},
		})
		seedUpload(t, cfg, "up-9", adminMeta(), tracklist)

		if err := engine.Run(context.Background(), "up-9", nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		record, _ := store.Read("up-9")
		if record.Status != models.StatusCompleted {
			t.Fatalf("archive failure must not demote a completed upload, got %s", record.Status)
		}
		archiveNote, _ := record.Detail["archive"].(string)
		if archiveNote == "" {
			t.Error("expected archive failure noted in detail")
		}
	})

	t.Run("Progress Updates Reach Terminal Phase", func(t *testing.T) {
		cfg := newTestConfig(t)
		engine, _ := newTestEngine(cfg, &tu.MockDestination{DestName: "mixcloud"})
		seedUpload(t, cfg, "up-10", adminMeta(), tracklist)

		progress := make(chan ProgressUpdate, 50)
		if err := engine.Run(context.Background(), "up-10", progress); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}
		if len(phases) == 0 || phases[len(phases)-1] != Done {
			t.Errorf("expected final Done phase, got %v", phases)
		}
	})
}

func TestPendingUploads(t *testing.T) {
	cfg := newTestConfig(t)
	engine, store := newTestEngine(cfg, &tu.MockDestination{DestName: "mixcloud"})

	seedUpload(t, cfg, "new-upload", adminMeta(), "")
	seedUpload(t, cfg, "seen-upload", adminMeta(), "")
	store.Update("seen-upload", models.StatusCompleted, "Upload completed", nil)

	pending, err := engine.PendingUploads()
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(pending) != 1 || pending[0] != "new-upload" {
		t.Errorf("expected only the unseen upload, got %v", pending)
	}
}
