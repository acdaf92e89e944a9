package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/repositories"
	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/status"
)

func newTestHandler(t *testing.T) (*StatusHandler, *status.Store) {
	t.Helper()

	store, err := status.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create status store: %v", err)
	}

	return NewStatusHandler(store, nil, shared.NewLogger(io.Discard)), store
}

func newHistoryHandler(t *testing.T) *StatusHandler {
	t.Helper()

	store, err := status.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create status store: %v", err)
	}

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	history := repositories.NewUploadRepository(db)
	return NewStatusHandler(store, history, shared.NewLogger(io.Discard))
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestStatusHandler(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := doRequest(t, handler, http.MethodGet, "/healthz")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body["status"] != "ok" {
			t.Errorf("expected status ok, got %q", body["status"])
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := doRequest(t, handler, http.MethodPost, "/healthz")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("UploadStatus", func(t *testing.T) {
		t.Run("Found", func(t *testing.T) {
			handler, store := newTestHandler(t)

			detail := map[string]any{"track_count": 12}
			if err := store.Update("upload-1", models.StatusCompleted, "Upload completed", detail); err != nil {
				t.Fatalf("failed to write status: %v", err)
			}

			rec := doRequest(t, handler, http.MethodGet, "/status/upload-1")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}

			var record models.UploadStatusRecord
			if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
				t.Fatalf("failed to decode record: %v", err)
			}
			if record.Status != models.StatusCompleted {
				t.Errorf("expected completed status, got %q", record.Status)
			}
			if record.Detail["track_count"] != float64(12) {
				t.Errorf("expected track_count detail, got %v", record.Detail["track_count"])
			}
		})

		t.Run("NotFound", func(t *testing.T) {
			handler, _ := newTestHandler(t)

			rec := doRequest(t, handler, http.MethodGet, "/status/missing")
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
		})

		t.Run("RejectsNestedPath", func(t *testing.T) {
			handler, _ := newTestHandler(t)

			for _, target := range []string{"/status/", "/status/a/b"} {
				rec := doRequest(t, handler, http.MethodGet, target)
				if rec.Code != http.StatusNotFound {
					t.Errorf("expected 404 for %q, got %d", target, rec.Code)
				}
			}
		})
	})

	t.Run("Uploads", func(t *testing.T) {
		t.Run("UnavailableWithoutHistory", func(t *testing.T) {
			handler, _ := newTestHandler(t)

			rec := doRequest(t, handler, http.MethodGet, "/uploads")
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", rec.Code)
			}
		})

		t.Run("ListsHistory", func(t *testing.T) {
			handler := newHistoryHandler(t)

			row := &repositories.Upload{
				ID:            "upload-1",
				UploadKey:     "2026-08-29_dj_koze",
				DJName:        "DJ Koze",
				Title:         "Night Moves",
				BroadcastDate: "2026-08-29",
				Status:        models.StatusCompleted,
			}
			if err := handler.history.Record(row); err != nil {
				t.Fatalf("failed to record upload: %v", err)
			}

			rec := doRequest(t, handler, http.MethodGet, "/uploads")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var rows []repositories.Upload
			if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
				t.Fatalf("failed to decode rows: %v", err)
			}
			if len(rows) != 1 || rows[0].ID != "upload-1" {
				t.Errorf("expected one row for upload-1, got %+v", rows)
			}
		})

		t.Run("RejectsInvalidLimit", func(t *testing.T) {
			handler := newHistoryHandler(t)

			for _, target := range []string{"/uploads?limit=abc", "/uploads?limit=-1"} {
				rec := doRequest(t, handler, http.MethodGet, target)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected 400 for %q, got %d", target, rec.Code)
				}
			}
		})
	})

	t.Run("UnknownPath", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := doRequest(t, handler, http.MethodGet, "/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}
