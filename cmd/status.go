package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/status"
	"github.com/urfave/cli/v3"
)

// StatusGet prints the current status record for one upload id.
func (r *Runner) StatusGet(ctx context.Context, cmd *cli.Command) error {
	uploadID := cmd.StringArg("id")
	if uploadID == "" {
		return fmt.Errorf("%w: upload id", shared.ErrMissingArgument)
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}

	record, err := store.Read(uploadID)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			return fmt.Errorf("%w: %s", shared.ErrUploadNotFound, uploadID)
		}
		return err
	}

	return r.writeJSON(record, cmd.Bool("pretty"))
}

// StatusList lists recent uploads from history, newest first.
func (r *Runner) StatusList(ctx context.Context, cmd *cli.Command) error {
	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	uploads, err := history.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(uploads, true)
	}

	if len(uploads) == 0 {
		r.writePlain("No uploads recorded\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("%d uploads", len(uploads)))
	for _, u := range uploads {
		marker := " "
		switch u.Status {
		case models.StatusCompleted:
			marker = "✓"
		case models.StatusError:
			marker = "✗"
		}
		r.writePlain("%s %s  %s  %s: %s (%s)\n", marker, u.ID, u.BroadcastDate, u.DJName, u.Title, u.Status)
	}
	return nil
}
