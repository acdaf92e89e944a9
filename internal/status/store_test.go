package status

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/setcast/internal/models"
)

func TestStore(t *testing.T) {
	t.Run("Update And Read Roundtrip", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		detail := map[string]any{"track_count": 12}
		if err := store.Update("upload-1", models.StatusProcessing, "Parsing songlist", detail); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		record, err := store.Read("upload-1")
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if record.Status != models.StatusProcessing {
			t.Errorf("expected status %s, got %s", models.StatusProcessing, record.Status)
		}
		if record.Message != "Parsing songlist" {
			t.Errorf("unexpected message: %q", record.Message)
		}
		if record.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
		if v, ok := record.Detail["track_count"]; !ok || v != float64(12) {
			t.Errorf("unexpected detail: %v", record.Detail)
		}
	})

	t.Run("Later Write Replaces Record", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		store.Update("upload-2", models.StatusReceived, "Upload received", nil)
		store.Update("upload-2", models.StatusCompleted, "Upload completed", nil)

		record, err := store.Read("upload-2")
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if record.Status != models.StatusCompleted {
			t.Errorf("expected terminal status, got %s", record.Status)
		}
	})

	t.Run("Missing Record", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		if _, err := store.Read("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("No Temp Files Left Behind", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(dir)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		store.Update("upload-3", models.StatusPending, "Queued", nil)

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), ".tmp") {
				t.Errorf("temp file left behind: %s", entry.Name())
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "upload-3.json")); err != nil {
			t.Errorf("expected published record file: %v", err)
		}
	})
}
