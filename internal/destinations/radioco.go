// Radio.co implementation of [Destination]
package destinations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/shared"
)

// RadiocoMetadata is the platform metadata shape for one station upload.
type RadiocoMetadata struct {
	Title      string
	Artist     string
	Genre      string
	PlaylistID string
	StartsAt   string // RFC 3339, empty skips the schedule step
}

// Radioco runs the station's three-step protocol: upload the media file,
// assign it to a playlist, then schedule the broadcast. Each step's
// non-success response aborts the remaining steps.
type Radioco struct {
	cfg    shared.RadiocoConfig
	client *Client
	logger *log.Logger
}

// NewRadioco creates the Radio.co adapter. A nil httpClient falls back to
// [http.DefaultClient].
func NewRadioco(cfg shared.RadiocoConfig, upload shared.UploadConfig, httpClient *http.Client, logger *log.Logger) *Radioco {
	return &Radioco{
		cfg:    cfg,
		client: NewClient(httpClient, upload.RateLimit),
		logger: logger,
	}
}

// Name implements [Destination].
func (r *Radioco) Name() string {
	return "radioco"
}

// BuildMetadata derives the platform metadata from a canonical Songlist.
// It performs no I/O.
func (r *Radioco) BuildMetadata(list *models.Songlist) RadiocoMetadata {
	b := list.Broadcast

	meta := RadiocoMetadata{
		Title:      fmt.Sprintf("%s (%s)", b.Title, b.Date),
		Artist:     b.DJName,
		PlaylistID: r.cfg.PlaylistID,
	}
	if len(b.Genres) > 0 {
		meta.Genre = b.Genres[0]
	}
	if b.Time != "" {
		meta.StartsAt = fmt.Sprintf("%sT%s:00Z", b.Date, b.Time)
	}
	return meta
}

// Upload implements [Destination].
func (r *Radioco) Upload(ctx context.Context, audioPath string, list *models.Songlist) models.DestinationResult {
	meta := r.BuildMetadata(list)

	mediaID, err := r.uploadMedia(ctx, audioPath, meta)
	if err != nil {
		return models.DestinationResult{Error: err.Error(), Recoverable: isRecoverable(err)}
	}
	if r.logger != nil {
		r.logger.Info("media uploaded", "destination", r.Name(), "media_id", mediaID)
	}

	if err := r.assignPlaylist(ctx, mediaID, meta); err != nil {
		return models.DestinationResult{
			ID:          mediaID,
			Error:       err.Error(),
			Recoverable: isRecoverable(err),
			Note:        "media uploaded but playlist assignment failed",
		}
	}

	result := models.DestinationResult{Success: true, ID: mediaID}
	if meta.StartsAt != "" {
		if err := r.scheduleBroadcast(ctx, mediaID, meta); err != nil {
			return models.DestinationResult{
				ID:          mediaID,
				Error:       err.Error(),
				Recoverable: isRecoverable(err),
				Note:        "media uploaded but scheduling failed",
			}
		}
		result.Note = fmt.Sprintf("scheduled for %s", meta.StartsAt)
	}
	return result
}

// uploadMedia posts the audio file to the station library and returns the
// new media id.
func (r *Radioco) uploadMedia(ctx context.Context, audioPath string, meta RadiocoMetadata) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	audio, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audio.Close()

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}
	if err := w.WriteField("title", meta.Title); err != nil {
		return "", fmt.Errorf("failed to write title field: %w", err)
	}
	if err := w.WriteField("artist", meta.Artist); err != nil {
		return "", fmt.Errorf("failed to write artist field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/stations/%s/media", r.cfg.BaseURL, r.cfg.StationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create media request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var mediaResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mediaResp); err != nil {
		return "", fmt.Errorf("failed to decode media response: %w", err)
	}
	return mediaResp.ID, nil
}

// assignPlaylist attaches the uploaded media to the configured playlist,
// carrying the set's genre as its category.
func (r *Radioco) assignPlaylist(ctx context.Context, mediaID string, meta RadiocoMetadata) error {
	payload, err := json.Marshal(map[string]string{
		"playlist_id": meta.PlaylistID,
		"genre":       meta.Genre,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal playlist payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/stations/%s/media/%s/playlists", r.cfg.BaseURL, r.cfg.StationID, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create playlist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

// scheduleBroadcast books the uploaded media into the station schedule.
func (r *Radioco) scheduleBroadcast(ctx context.Context, mediaID string, meta RadiocoMetadata) error {
	payload, err := json.Marshal(map[string]string{
		"media_id":  mediaID,
		"title":     meta.Title,
		"starts_at": meta.StartsAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal schedule payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/stations/%s/schedule", r.cfg.BaseURL, r.cfg.StationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create schedule request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

func (r *Radioco) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
}
