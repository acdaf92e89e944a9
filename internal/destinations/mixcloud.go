// Mixcloud implementation of [Destination]
//
// Upload API based on https://www.mixcloud.com/developers/#uploads
package destinations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/retry"
	"github.com/desertthunder/setcast/internal/shared"
	"golang.org/x/oauth2"
)

const mixcloudMaxTags = 5

// MixcloudSection is one chapter marker in a show's tracklist.
type MixcloudSection struct {
	Song   string
	Artist string
}

// MixcloudMetadata is the platform metadata shape for one show upload.
type MixcloudMetadata struct {
	Name        string
	Description string
	Tags        []string
	Sections    []MixcloudSection
	Picture     string // artwork file path, empty for none
	Unlisted    bool
	PublishDate string // RFC 3339, empty publishes immediately
}

// Mixcloud uploads a show and its tracklist in one multipart request,
// followed by an edit step when the broadcast is scheduled. Quota,
// permission, and artwork failures trigger a one-shot degraded retry:
// unlisted visibility, no artwork.
type Mixcloud struct {
	cfg    shared.MixcloudConfig
	client *Client
	logger *log.Logger

	maxRetries int
	retryDelay time.Duration
}

// NewMixcloud creates the Mixcloud adapter. Requests authenticate with the
// configured OAuth2 access token.
func NewMixcloud(cfg shared.MixcloudConfig, upload shared.UploadConfig, logger *log.Logger) *Mixcloud {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	httpClient := oauth2.NewClient(context.Background(), ts)

	return &Mixcloud{
		cfg:        cfg,
		client:     NewClient(httpClient, upload.RateLimit),
		logger:     logger,
		maxRetries: upload.MaxRetries,
		retryDelay: upload.RetryDelay(),
	}
}

// Name implements [Destination].
func (m *Mixcloud) Name() string {
	return "mixcloud"
}

// BuildMetadata derives the platform metadata from a canonical Songlist.
// It performs no I/O.
func (m *Mixcloud) BuildMetadata(list *models.Songlist) MixcloudMetadata {
	b := list.Broadcast

	var desc strings.Builder
	if b.Description != "" {
		desc.WriteString(b.Description)
		desc.WriteString("\n\n")
	}
	desc.WriteString("Tracklist:\n")
	sections := make([]MixcloudSection, 0, len(list.Tracks))
	for i, track := range list.Tracks {
		fmt.Fprintf(&desc, "%d. %s - %s\n", i+1, track.Title, track.Artist)
		sections = append(sections, MixcloudSection{Song: track.Title, Artist: track.Artist})
	}

	tags := b.Genres
	if len(tags) > mixcloudMaxTags {
		tags = tags[:mixcloudMaxTags]
	}

	meta := MixcloudMetadata{
		Name:        fmt.Sprintf("%s (%s)", b.Title, b.Date),
		Description: desc.String(),
		Tags:        tags,
		Sections:    sections,
		Picture:     b.ArtworkPath,
	}
	if b.Time != "" {
		meta.PublishDate = fmt.Sprintf("%sT%s:00Z", b.Date, b.Time)
	}
	return meta
}

// Upload implements [Destination]. The first attempt uses the full
// metadata; a quota-type failure mutates the draft to unlisted visibility
// without artwork and retries exactly once.
func (m *Mixcloud) Upload(ctx context.Context, audioPath string, list *models.Songlist) models.DestinationResult {
	draft := m.BuildMetadata(list)
	fallbackUsed := false

	var key, url string
	policy := retry.Policy{
		MaxRetries:   m.maxRetries,
		InitialDelay: m.retryDelay,
		IsRetryable: func(err error) bool {
			if isQuotaError(err) {
				if fallbackUsed {
					return false
				}
				fallbackUsed = true
				draft.Unlisted = true
				draft.Picture = ""
				return true
			}
			return isTransientError(err)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			if m.logger != nil {
				m.logger.Warn("retrying mixcloud upload", "attempt", attempt, "delay", delay, "error", err)
			}
		},
	}

	err := policy.Do(ctx, func(ctx context.Context) error {
		var uploadErr error
		key, url, uploadErr = m.upload(ctx, audioPath, draft)
		return uploadErr
	})
	if err != nil {
		return models.DestinationResult{
			Error:       err.Error(),
			Recoverable: isRecoverable(err),
		}
	}

	result := models.DestinationResult{Success: true, ID: key, URL: url}
	if fallbackUsed {
		result.Note = "published unlisted without artwork after quota fallback"
	}
	return result
}

// upload performs the multipart show upload and, for scheduled broadcasts,
// the publish-date edit step. A non-success response from either step
// aborts the remainder.
func (m *Mixcloud) upload(ctx context.Context, audioPath string, meta MixcloudMetadata) (string, string, error) {
	body, contentType, err := m.encodeUpload(audioPath, meta)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/upload/", body)
	if err != nil {
		return "", "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", "", err
	}

	var uploadResp struct {
		Result struct {
			Key string `json:"key"`
			URL string `json:"url"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	if meta.PublishDate != "" {
		if err := m.schedule(ctx, uploadResp.Result.Key, meta.PublishDate); err != nil {
			return "", "", err
		}
	}

	return uploadResp.Result.Key, uploadResp.Result.URL, nil
}

// encodeUpload builds the multipart body for the show upload.
func (m *Mixcloud) encodeUpload(audioPath string, meta MixcloudMetadata) (io.Reader, string, error) {
	var buf strings.Builder
	w := multipart.NewWriter(&buf)

	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audio.Close()

	part, err := w.CreateFormFile("mp3", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", fmt.Errorf("failed to encode audio: %w", err)
	}

	fields := map[string]string{
		"name":        meta.Name,
		"description": meta.Description,
	}
	if meta.Unlisted {
		fields["unlisted"] = "1"
	}
	for i, tag := range meta.Tags {
		fields[fmt.Sprintf("tags-%d-tag", i)] = tag
	}
	for i, section := range meta.Sections {
		fields[fmt.Sprintf("sections-%d-song", i)] = section.Song
		fields[fmt.Sprintf("sections-%d-artist", i)] = section.Artist
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if meta.Picture != "" {
		picture, err := os.Open(meta.Picture)
		if err != nil {
			return nil, "", &apiError{Status: http.StatusBadRequest, Message: fmt.Sprintf("artwork unreadable: %v", err)}
		}
		defer picture.Close()
		part, err := w.CreateFormFile("picture", filepath.Base(meta.Picture))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create picture part: %w", err)
		}
		if _, err := io.Copy(part, picture); err != nil {
			return nil, "", fmt.Errorf("failed to encode picture: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return strings.NewReader(buf.String()), w.FormDataContentType(), nil
}

// schedule sets the publish date on an uploaded show.
func (m *Mixcloud) schedule(ctx context.Context, key, publishDate string) error {
	endpoint := fmt.Sprintf("%s/upload/%s/edit/", m.cfg.BaseURL, strings.Trim(key, "/"))
	form := fmt.Sprintf("publish_date=%s", publishDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return fmt.Errorf("failed to create schedule request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

// apiError is a non-2xx platform response.
type apiError struct {
	Status  int
	Type    string
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("platform returned status %d", e.Status)
}

// checkResponse converts a non-2xx response into an *apiError, decoding the
// platform's error envelope when present.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &apiError{Status: resp.StatusCode}
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Type = envelope.Error.Type
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// isQuotaError reports whether a failure is a quota, permission, or asset
// problem that a degraded (unlisted, artwork-free) retry might clear.
func isQuotaError(err error) bool {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	lower := strings.ToLower(apiErr.Type + " " + apiErr.Message)
	for _, marker := range []string{"quota", "ratelimit", "permission", "picture", "artwork"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isTransientError reports whether a failure is worth a plain retry with
// unchanged input.
func isTransientError(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return errors.Is(err, shared.ErrAPIRequest)
}

// isRecoverable classifies a terminal failure for the status record: a
// future manual re-run may succeed unless the platform rejected the
// request outright.
func isRecoverable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == http.StatusTooManyRequests || apiErr.Status == http.StatusForbidden
	}
	return true
}
