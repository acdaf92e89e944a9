package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setcast/internal/destinations"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/repositories"
	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/songlist"
	"github.com/desertthunder/setcast/internal/status"
)

// audioExts are the audio file extensions recognized during intake.
var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
}

// songlistExts are the songlist file extensions recognized during intake.
var songlistExts = map[string]bool{
	".txt":  true,
	".tsv":  true,
	".xml":  true,
	".nml":  true,
	".cue":  true,
	".rtf":  true,
	".docx": true,
}

// metadataFilename is the receiver-deposited metadata record inside each
// incoming upload directory.
const metadataFilename = "metadata.json"

// UploadEngine drives one upload through intake, parsing, destination
// uploads, and archival, writing a status record at every transition.
type UploadEngine struct {
	cfg      *shared.Config
	parser   songlist.Parser
	registry *destinations.Registry
	store    *status.Store
	history  *repositories.UploadRepository
	archiver Archiver
	logger   *log.Logger
}

// EngineOpts collects the collaborators an UploadEngine needs. History and
// Archiver are optional; a nil Archiver disables archival.
type EngineOpts struct {
	Config   *shared.Config
	Parser   songlist.Parser
	Registry *destinations.Registry
	Store    *status.Store
	History  *repositories.UploadRepository
	Archiver Archiver
	Logger   *log.Logger
}

// NewUploadEngine creates an UploadEngine from the given collaborators.
func NewUploadEngine(opts EngineOpts) *UploadEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &UploadEngine{
		cfg:      opts.Config,
		parser:   opts.Parser,
		registry: opts.Registry,
		store:    opts.Store,
		history:  opts.History,
		archiver: opts.Archiver,
		logger:   logger,
	}
}

// Run processes the upload identified by uploadID from its incoming
// directory through to a terminal status. Progress updates are sent to the
// progress channel if one is provided.
//
// The status progression is strictly one-directional: received →
// processing → songs_confirmed → completed or error. The completed record
// is written before archiving begins, so a failed archive never demotes a
// finished upload. Panics anywhere in the run are recovered into a
// terminal error status.
func (e *UploadEngine) Run(ctx context.Context, uploadID string, progress chan<- ProgressUpdate) (err error) {
	detail := map[string]any{}
	var meta *models.BroadcastMetadata

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("upload run fault recovered", "upload_id", uploadID, "fault", r)
			err = fmt.Errorf("upload run fault: %v", r)
			e.fail(uploadID, meta, detail, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	e.send(progress, intakeUpdate(uploadID))

	meta, audioPath, listPath, err := e.intake(uploadID)
	if err != nil {
		e.fail(uploadID, meta, detail, err.Error())
		return err
	}
	role := meta.Role

	if err := e.store.Update(uploadID, models.StatusReceived, "Upload received", visibleDetail(role, detail)); err != nil {
		return err
	}
	if err := e.store.Update(uploadID, models.StatusProcessing, "Parsing songlist", visibleDetail(role, detail)); err != nil {
		return err
	}
	e.send(progress, parsingUpdate(listPath))

	list, fallback := e.resolveSonglist(uploadID, *meta, listPath, detail)
	artifactPath, err := e.persistArtifact(uploadID, list)
	if err != nil {
		e.fail(uploadID, meta, detail, err.Error())
		return err
	}

	detail["track_count"] = len(list.Tracks)
	msg := fmt.Sprintf("Songlist confirmed (%d tracks)", len(list.Tracks))
	if fallback {
		msg = "Songlist unparseable, proceeding with minimal songlist"
	}
	if err := e.store.Update(uploadID, models.StatusSongsConfirmed, msg, visibleDetail(role, detail)); err != nil {
		return err
	}
	e.send(progress, songlistReadyUpdate(list, fallback))

	selected := e.resolveDestinations(*meta)
	if len(selected) == 0 {
		err := fmt.Errorf("%w: no destination is configured", shared.ErrInvalidConfig)
		e.fail(uploadID, meta, detail, err.Error())
		return err
	}

	results, succeeded := e.runDestinations(ctx, audioPath, list, selected, progress)
	detail["destinations"] = results

	// Destination failures are per-destination records, never fatal; the
	// run proceeds to archiving even when every upload failed.
	msg = fmt.Sprintf("Upload completed (%d/%d destinations succeeded)", succeeded, len(selected))
	if err := e.store.Update(uploadID, models.StatusCompleted, msg, visibleDetail(role, detail)); err != nil {
		return err
	}
	e.recordHistory(uploadID, meta, models.StatusCompleted, msg, strings.Join(selected, ","))

	if e.archiver != nil {
		e.send(progress, archivingUpdate(e.cfg.Storage.ArchiveDir))
		inputs := ArchiveInputs{AudioPath: audioPath, SonglistPath: listPath, ArtifactPath: artifactPath}
		dir, archiveErr := e.archiver.Archive(list, inputs)
		if archiveErr != nil {
			// Archival is best effort; the upload stays completed.
			e.logger.Error("archive failed", "upload_id", uploadID, "error", archiveErr)
			detail["archive"] = fmt.Sprintf("failed: %v", archiveErr)
		} else {
			detail["archive"] = dir
			e.removeIncoming(uploadID)
		}
		if err := e.store.Update(uploadID, models.StatusCompleted, msg, visibleDetail(role, detail)); err != nil {
			return err
		}
	}

	e.send(progress, completedUpdate(uploadID))
	return nil
}

// intake locates and validates the upload's input files under the incoming
// directory. Both files must carry the deterministic {date}_{dj}_{title}
// basename derived from the metadata; a missing or misnamed audio or
// songlist file is a terminal error.
func (e *UploadEngine) intake(uploadID string) (*models.BroadcastMetadata, string, string, error) {
	dir := filepath.Join(e.cfg.Storage.IncomingDir, uploadID)
	meta, err := models.LoadBroadcastMetadata(filepath.Join(dir, metadataFilename))
	if err != nil {
		return nil, "", "", err
	}
	if err := meta.Validate(); err != nil {
		return meta, "", "", fmt.Errorf("%w: %v", shared.ErrInvalidMetadata, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return meta, "", "", fmt.Errorf("failed to read upload directory: %w", err)
	}

	key := shared.UploadKey(meta.Date, meta.DJName, meta.Title)
	var audioPath, listPath string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == metadataFilename {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if strings.TrimSuffix(name, filepath.Ext(name)) != key {
			if audioExts[ext] || songlistExts[ext] {
				e.logger.Warn("ignoring file outside naming convention", "upload_id", uploadID, "file", name, "expected_key", key)
			}
			continue
		}
		switch {
		case audioExts[ext] && audioPath == "":
			audioPath = filepath.Join(dir, name)
		case songlistExts[ext] && listPath == "":
			listPath = filepath.Join(dir, name)
		}
	}

	if audioPath == "" {
		return meta, "", "", fmt.Errorf("%w: no audio file named %s.* in %s", shared.ErrMissingAudio, key, dir)
	}
	if listPath == "" {
		return meta, "", "", fmt.Errorf("%w: no songlist file named %s.* in %s", shared.ErrMissingSonglist, key, dir)
	}
	return meta, audioPath, listPath, nil
}

// resolveSonglist produces the canonical songlist for the upload. An
// existing artifact from a prior run is reused verbatim so manual re-runs
// do not re-parse. Fallback reports whether the minimal songlist was used.
func (e *UploadEngine) resolveSonglist(uploadID string, meta models.BroadcastMetadata, listPath string, detail map[string]any) (*models.Songlist, bool) {
	if existing, err := models.LoadSonglist(e.artifactPath(uploadID)); err == nil {
		e.logger.Info("reusing songlist artifact", "upload_id", uploadID)
		return existing, false
	}

	result := e.parser.Parse(listPath)
	if !result.OK() || len(result.Songs) == 0 {
		kind := result.Error
		if kind == models.ParseOK {
			kind = models.ParseNoValidSongs
		}
		e.logger.Warn("songlist parse failed", "upload_id", uploadID, "error", kind.String())
		detail["parse_error"] = kind.String()
		return models.NewMinimalSonglist(meta), true
	}
	return models.NewSonglist(meta, result.Songs), false
}

// persistArtifact writes the songlist artifact under the artifact
// directory and returns its path.
func (e *UploadEngine) persistArtifact(uploadID string, list *models.Songlist) (string, error) {
	path := e.artifactPath(uploadID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := list.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

func (e *UploadEngine) artifactPath(uploadID string) string {
	return filepath.Join(e.cfg.Storage.ArtifactDir, uploadID, "songlist.json")
}

// resolveDestinations returns the destination names selected for this
// upload. An ADMIN metadata override lists destinations by name; unknown
// names are dropped with a warning, and an override that filters down to
// nothing falls back to the configured default.
func (e *UploadEngine) resolveDestinations(meta models.BroadcastMetadata) []string {
	if meta.Role == models.RoleAdmin && strings.TrimSpace(meta.Destinations) != "" {
		var selected []string
		for _, name := range strings.Split(meta.Destinations, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if !e.registry.Supported(name) {
				e.logger.Warn("ignoring unsupported destination", "name", name)
				continue
			}
			selected = append(selected, name)
		}
		if len(selected) > 0 {
			return selected
		}
	}

	def := e.cfg.Upload.Default
	if def == "" {
		def = destinations.Order[0]
	}
	if !e.registry.Supported(def) {
		return nil
	}
	return []string{def}
}

// runDestinations invokes each selected destination strictly sequentially
// in registry order and records a result for every known destination,
// skipped ones included. It returns the per-destination results and the
// count of successful non-skipped uploads.
func (e *UploadEngine) runDestinations(ctx context.Context, audioPath string, list *models.Songlist, selected []string, progress chan<- ProgressUpdate) (map[string]models.DestinationResult, int) {
	wanted := make(map[string]bool, len(selected))
	for _, name := range selected {
		wanted[name] = true
	}

	known := e.registry.Known()
	results := make(map[string]models.DestinationResult, len(known))
	succeeded := 0

	step := 0
	for _, name := range known {
		step++
		if !wanted[name] {
			results[name] = models.SkippedResult()
			e.send(progress, destinationDoneUpdate(step, len(known), name, results[name]))
			continue
		}

		dest, _ := e.registry.Get(name)
		e.send(progress, uploadingUpdate(step, len(known), name))
		e.logger.Info("uploading to destination", "destination", name)

		result := dest.Upload(ctx, audioPath, list)
		if result.Success {
			succeeded++
			e.logger.Info("destination upload succeeded", "destination", name, "url", result.URL)
		} else {
			e.logger.Error("destination upload failed", "destination", name, "error", result.Error, "recoverable", result.Recoverable)
		}
		results[name] = result
		e.send(progress, destinationDoneUpdate(step, len(known), name, result))
	}

	return results, succeeded
}

// visibleDetail applies the role's information-hiding boundary to the
// status detail map. DJ records omit the per-destination breakdown and
// archive location; ADMIN records carry everything.
func visibleDetail(role models.UserRole, detail map[string]any) map[string]any {
	if len(detail) == 0 {
		return nil
	}
	if role == models.RoleAdmin {
		out := make(map[string]any, len(detail))
		for k, v := range detail {
			out[k] = v
		}
		return out
	}

	out := make(map[string]any, len(detail))
	for k, v := range detail {
		if k == "destinations" || k == "archive" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// fail writes a terminal error status and records it in history.
func (e *UploadEngine) fail(uploadID string, meta *models.BroadcastMetadata, detail map[string]any, msg string) {
	role := models.RoleDJ
	if meta != nil {
		role = meta.Role
	}
	if err := e.store.Update(uploadID, models.StatusError, msg, visibleDetail(role, detail)); err != nil {
		e.logger.Error("failed to write error status", "upload_id", uploadID, "error", err)
	}
	e.recordHistory(uploadID, meta, models.StatusError, msg, "")
}

// recordHistory writes the terminal history row. History is optional and
// never affects the upload's outcome.
func (e *UploadEngine) recordHistory(uploadID string, meta *models.BroadcastMetadata, st models.StatusKind, msg, dests string) {
	if e.history == nil || meta == nil {
		return
	}
	row := &repositories.Upload{
		ID:            uploadID,
		UploadKey:     shared.UploadKey(meta.Date, meta.DJName, meta.Title),
		DJName:        meta.DJName,
		Title:         meta.Title,
		BroadcastDate: meta.Date,
		Status:        st,
		Message:       msg,
		Destinations:  dests,
		CompletedAt:   sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}
	if err := e.history.Record(row); err != nil {
		e.logger.Error("failed to record upload history", "upload_id", uploadID, "error", err)
	}
}

// removeIncoming clears an upload's incoming directory after a successful
// archive. Remaining stray files go with it.
func (e *UploadEngine) removeIncoming(uploadID string) {
	dir := filepath.Join(e.cfg.Storage.IncomingDir, uploadID)
	if err := os.RemoveAll(dir); err != nil {
		e.logger.Warn("failed to remove incoming directory", "upload_id", uploadID, "error", err)
	}
}

// send delivers a progress update if a channel was provided.
func (e *UploadEngine) send(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress != nil {
		progress <- update
	}
}

// PendingUploads scans the incoming directory for upload ids that have a
// metadata record but no status record yet. The watch command polls this.
func (e *UploadEngine) PendingUploads() ([]string, error) {
	entries, err := os.ReadDir(e.cfg.Storage.IncomingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan incoming directory: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if _, err := os.Stat(filepath.Join(e.cfg.Storage.IncomingDir, id, metadataFilename)); err != nil {
			continue
		}
		if _, err := e.store.Read(id); errors.Is(err, status.ErrNotFound) {
			pending = append(pending, id)
		}
	}
	return pending, nil
}
