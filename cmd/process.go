package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Process runs the full pipeline for one received upload.
func (r *Runner) Process(ctx context.Context, cmd *cli.Command) error {
	uploadID := cmd.StringArg("id")
	if uploadID == "" {
		return fmt.Errorf("%w: upload id", shared.ErrMissingArgument)
	}

	engine, cleanup, err := r.buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	r.logger.Info("processing upload", "upload_id", uploadID)
	r.writePlain("Processing upload %s...\n\n", uploadID)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	runErr := engine.Run(ctx, uploadID, progressCh)
	close(progressCh)
	<-done

	if runErr != nil {
		return runErr
	}

	if cmd.Bool("json") {
		store, err := r.openStore()
		if err != nil {
			return err
		}
		record, err := store.Read(uploadID)
		if err != nil {
			return err
		}
		return r.writeJSON(record, true)
	}

	r.writePlainHeader("Upload Complete!")
	return nil
}

// Watch polls the incoming directory and processes new uploads as they
// appear. Runs until the context is canceled unless --once is set.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	interval := r.config.Upload.PollInterval()
	if s := cmd.Int("interval"); s > 0 {
		interval = time.Duration(s) * time.Second
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	scan := func() {
		pending, err := engine.PendingUploads()
		if err != nil {
			r.logger.Error("scan failed", "error", err)
			return
		}
		for _, id := range pending {
			r.logger.Info("found pending upload", "upload_id", id)
			if err := engine.Run(ctx, id, nil); err != nil {
				r.logger.Error("upload failed", "upload_id", id, "error", err)
			}
		}
	}

	if cmd.Bool("once") {
		scan()
		return nil
	}

	r.logger.Info("watching incoming directory", "dir", r.config.Storage.IncomingDir, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scan()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			scan()
		}
	}
}
