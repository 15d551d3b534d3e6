// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func (r *Runner) configFlag() cli.Flag {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   path,
	}
}

// setupCommand handles setup operations for the mock backend database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{r.configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Flags:  []cli.Flag{r.configFlag()},
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Flags:  []cli.Flag{r.configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the mock persistence service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the mock list backend over SQLite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from [server] in config)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database path (default from [database] in config)",
			},
		},
		Action: r.Serve,
	}
}

// authCommand manages the signed-in user.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in user",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create a user on the backend and sign in as them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in as an existing user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the signed-in user",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in user",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// listsCommand handles custom list operations through the list cache.
func listsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"ls", "l"},
		Usage:   "Custom list operations",
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"mine"},
				Usage:   "Show the signed-in user's lists",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"q"},
						Usage:   "Match name or description",
					},
					&cli.StringFlag{
						Name:  "visibility",
						Usage: "all, public or private",
						Value: "all",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Keep lists carrying any of these tags",
					},
					&cli.StringFlag{
						Name:    "sort",
						Aliases: []string{"s"},
						Usage:   "recent, name, items, created or updated",
						Value:   "recent",
					},
				}, jsonFlags()...),
				Action: r.ListsLs,
			},
			{
				Name:   "public",
				Usage:  "Show every public list",
				Flags:  jsonFlags(),
				Action: r.ListsPublic,
			},
			{
				Name:  "show",
				Usage: "Show a list with movie details",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  jsonFlags(),
				Action: r.ListsShow,
			},
			{
				Name:  "create",
				Usage: "Create a list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "List description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the list public",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Tag to attach (repeatable)",
					},
				}, jsonFlags()...),
				Action: r.ListsCreate,
			},
			{
				Name:  "update",
				Usage: "Change a list's name, description, visibility or tags",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "New description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Set visibility (--public=false makes it private)",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Replace tags (repeatable)",
					},
				}, jsonFlags()...),
				Action: r.ListsUpdate,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ListsDelete,
			},
			{
				Name:  "add",
				Usage: "Add a movie to a list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "movie"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "notes",
						Aliases: []string{"n"},
						Usage:   "Notes for the entry",
					},
				},
				Action: r.ListsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a movie from a list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "movie"},
				},
				Action: r.ListsRemove,
			},
			{
				Name:  "notes",
				Usage: "Set the notes of a list entry",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "movie"},
					&cli.StringArg{Name: "notes"},
				},
				Action: r.ListsNotes,
			},
			{
				Name:  "containing",
				Usage: "Show your lists that hold a movie",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "movie"},
				},
				Flags:  jsonFlags(),
				Action: r.ListsContaining,
			},
			{
				Name:  "export",
				Usage: "Export one list, or every list with --all",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown, txt or xlsx",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every list you own",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers for --all",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "List fetches per second for --all",
						Value: 5,
					},
				},
				Action: r.ListsExport,
			},
		},
	}
}

// moviesCommand resolves movie details through the metadata service.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"movie", "m"},
		Usage:   "Movie metadata lookups",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show details for a movie id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "lists",
						Usage: "Also show which of your lists hold it",
					},
				}, jsonFlags()...),
				Action: r.MoviesShow,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive list browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive list browser",
		Action:  r.TUI,
	}
}
