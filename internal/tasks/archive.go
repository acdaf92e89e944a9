package tasks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/setcast/internal/formatter"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/shared"
)

// ArchiveInputs names the files an upload run hands to the archiver.
type ArchiveInputs struct {
	AudioPath    string
	SonglistPath string
	ArtifactPath string
}

// Archiver relocates an upload's inputs to durable storage. It is an
// injectable collaborator so tests can substitute the directory handling.
type Archiver interface {
	Archive(list *models.Songlist, inputs ArchiveInputs) (string, error)
}

// FSArchiver archives uploads under {root}/{year}/{date}_{dj}/ using the
// same filename-normalization convention as intake. The date/DJ directory
// may be shared across uploads from the same DJ on the same date; the
// date+DJ+title key is assumed unique, and a file already present under an
// identical key gets a generated suffix rather than being overwritten.
type FSArchiver struct {
	root string
}

// NewFSArchiver creates an FSArchiver rooted at root.
func NewFSArchiver(root string) *FSArchiver {
	return &FSArchiver{root: root}
}

// Archive copies the inputs into the archive, removes the originals, and
// for ADMIN uploads writes tracklist exports alongside them. The archive
// directory path is returned even on partial failure so the caller can
// report how far the relocation got.
func (a *FSArchiver) Archive(list *models.Songlist, inputs ArchiveInputs) (string, error) {
	b := list.Broadcast
	dir := filepath.Join(a.root, b.Year(), shared.ArchiveDirName(b.Date, b.DJName))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return dir, fmt.Errorf("failed to create archive directory: %w", err)
	}

	key := shared.UploadKey(b.Date, b.DJName, b.Title)
	moves := []struct {
		src  string
		name string
	}{
		{inputs.AudioPath, key + filepath.Ext(inputs.AudioPath)},
		{inputs.SonglistPath, key + filepath.Ext(inputs.SonglistPath)},
		{inputs.ArtifactPath, key + "_songlist.json"},
	}

	for _, m := range moves {
		if m.src == "" {
			continue
		}
		if err := relocate(m.src, collisionFree(filepath.Join(dir, m.name))); err != nil {
			return dir, err
		}
	}

	if list.Role == models.RoleAdmin {
		if _, err := formatter.WriteExports(list, filepath.Join(dir, key)); err != nil {
			return dir, fmt.Errorf("failed to write tracklist exports: %w", err)
		}
	}

	return dir, nil
}

// collisionFree returns path unchanged unless a file already exists there,
// in which case a short generated suffix is inserted before the extension.
func collisionFree(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	return base + "_" + shared.GenerateID()[:8] + ext
}

// relocate copies src to dst then removes src. A plain rename is avoided
// because the archive may live on a different filesystem.
func relocate(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}

	in.Close()
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove original %s: %w", src, err)
	}
	return nil
}
