// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the configuration file and cache backend.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the cache",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand runs the Spotify OAuth flow.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch your liked tracks from Spotify into the cache",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Refetch even when a cached snapshot exists",
			},
		},
		Action: r.Fetch,
	}
}

func enrichCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Resolve mood and feature data for fetched tracks",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Discard cached enrichments and re-resolve everything",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Provider requests per second",
				Value: 5,
			},
		},
		Action: r.Enrich,
	}
}

func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Derive mood labels from enrichment data",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Recompute labels for already classified tracks",
			},
		},
		Action: r.Classify,
	}
}

func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Compute target playlist memberships",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Build,
	}
}

func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Preview playlist changes without applying them",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the diff report to a file",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save the diff report to an auto-named .diff file",
			},
		},
		Action: r.Diff,
	}
}

func applyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Apply pending playlist changes to Spotify",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Skip the confirmation prompt",
			},
		},
		Action: r.Apply,
	}
}

func pipelineCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pipeline",
		Usage: "Run every stage in order: fetch, enrich, classify, build, diff",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Apply the resulting changes instead of previewing",
			},
		},
		Action: r.Pipeline,
	}
}

// rulesCommand manages custom playlist rule sets.
func rulesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Manage custom playlist rule sets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored rule sets",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.RulesList,
			},
			{
				Name:  "add",
				Usage: "Add or update a rule set from a JSON file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RulesAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a rule set by id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RulesDelete,
			},
			{
				Name:  "preview",
				Usage: "Evaluate a rule set file against the cached library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.RulesPreview,
			},
		},
	}
}

// jobsCommand manages background pipeline jobs.
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Manage background pipeline jobs",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Run a pipeline step as a background job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "step"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Block until the job finishes",
					},
				},
				Action: r.JobsSubmit,
			},
			{
				Name:  "status",
				Usage: "Show a job by id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.JobsStatus,
			},
			{
				Name:  "list",
				Usage: "List all jobs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.JobsList,
			},
			{
				Name:   "watch",
				Usage:  "Watch jobs in an interactive terminal UI",
				Flags:  []cli.Flag{configFlag()},
				Action: r.JobsWatch,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the pipeline API over HTTP",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the fetched library to CSV",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
				Value:   "liked_tracks.csv",
			},
		},
		Action: r.Export,
	}
}
