// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// processCommand runs the pipeline for one received upload
func processCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Process one received upload end to end",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the terminal status record as JSON",
			},
		},
		Action: r.Process,
	}
}

// watchCommand polls the incoming directory for new uploads
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the incoming directory and process uploads as they arrive",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "interval",
				Usage: "Poll interval in seconds (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Scan once and exit instead of polling",
			},
		},
		Action: r.Watch,
	}
}

// parseCommand runs songlist parsing standalone, without uploading
func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "parse",
		Usage: "Parse a songlist file and print the extracted tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Parse,
	}
}

// statusCommand inspects upload status records and history
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Upload status operations",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the current status record for an upload id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.StatusGet,
			},
			{
				Name:  "list",
				Usage: "List recent uploads from history",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of uploads to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StatusList,
			},
		},
	}
}

// setupCommand handles setup operations for config and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "dirs",
				Usage:  "Create the storage directory layout",
				Action: r.SetupDirs,
			},
		},
	}
}

// serveCommand starts the read-only status HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve upload status over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing upload history.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing uploads",
		Action:  r.TUI,
	}
}
