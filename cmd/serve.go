package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/setcast/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the read-only status HTTP server. Blocks until the context
// is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}

	handler := server.NewStatusHandler(store, nil, r.logger)
	if db, history, err := r.openHistory(); err != nil {
		r.logger.Warn("upload history unavailable", "error", err)
	} else {
		defer db.Close()
		handler = server.NewStatusHandler(store, history, r.logger)
	}

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	host := r.config.Server.Host
	if h := cmd.String("host"); h != "" {
		host = h
	}
	port := r.config.Server.Port
	if p := cmd.Int("port"); p > 0 {
		port = p
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	r.logger.Info("status server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server failed: %w", err)
	}
	return nil
}
