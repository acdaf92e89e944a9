package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/songlist"
	"github.com/urfave/cli/v3"
)

// Parse runs songlist parsing standalone and prints the extracted tracks.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: songlist path", shared.ErrMissingArgument)
	}

	dispatcher := songlist.NewDispatcher(r.logger)
	result := dispatcher.Parse(path)

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Songs []models.Song `json:"songs"`
			Error string        `json:"error,omitempty"`
		}{Songs: result.Songs, Error: errorField(result)}, cmd.Bool("pretty"))
	}

	if !result.OK() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, result.Error.String())
	}

	r.writePlainHeader(fmt.Sprintf("Parsed %d tracks from %s", len(result.Songs), path))
	for i, song := range result.Songs {
		r.writePlain("%3d. %s - %s\n", i+1, song.Title, song.Artist)
	}
	return nil
}

func errorField(result models.ParseResult) string {
	if result.OK() {
		return ""
	}
	return result.Error.String()
}
