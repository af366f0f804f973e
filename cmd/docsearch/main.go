package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/bunchhieng/docsearch/internal/app"
	"github.com/bunchhieng/docsearch/internal/cli"
	"github.com/bunchhieng/docsearch/internal/config"
	"github.com/bunchhieng/docsearch/internal/tui"
	ucli "github.com/urfave/cli/v2"
)

var version = "dev"

// runtimeEnv carries what the Before hook prepares for the commands.
type runtimeEnv struct {
	cfg    *config.Config
	logger io.Closer
}

func main() {
	env := &runtimeEnv{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(env).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(env *runtimeEnv) *ucli.App {
	return &ucli.App{
		Name:    "docsearch",
		Usage:   "search saved documentation or ask questions about it",
		Version: version,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "db-path",
				Usage:   "database file path (default: config directory)",
				EnvVars: []string{"DOCSEARCH_DB_PATH"},
			},
			&ucli.StringFlag{
				Name:    "config",
				Usage:   "config file path",
				EnvVars: []string{"DOCSEARCH_CONFIG"},
			},
			&ucli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&ucli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to this file",
			},
		},
		Before: func(c *ucli.Context) error {
			return env.setup(c)
		},
		After: func(c *ucli.Context) error {
			if env.logger != nil {
				return env.logger.Close()
			}
			return nil
		},
		Action: func(c *ucli.Context) error {
			if c.Args().Present() {
				return ucli.Exit(fmt.Sprintf("unknown command: %s", c.Args().First()), 1)
			}
			return env.runTUI(c)
		},
		Commands: []*ucli.Command{
			{
				Name:   "tui",
				Usage:  "open the interactive search box (default)",
				Action: env.runTUI,
			},
			{
				Name:      "add",
				Usage:     "add or update a document",
				ArgsUsage: "<url>",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "title", Usage: "document title"},
					&ucli.StringFlag{Name: "tags", Usage: "comma-separated tags"},
					&ucli.StringFlag{Name: "content", Usage: "markdown content"},
					&ucli.StringFlag{Name: "html", Usage: "saved HTML page to convert, or - for stdin"},
				},
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					if c.NArg() != 1 {
						return ucli.Exit("usage: docsearch add <url> [--title ...] [--tags t1,t2] [--html file]", 1)
					}
					return cmds.Add(c.Context, c.Args().First(), cli.AddOptions{
						Title:    c.String("title"),
						Tags:     c.String("tags"),
						Content:  c.String("content"),
						HTMLFile: c.String("html"),
						Stdin:    os.Stdin,
					})
				}),
			},
			{
				Name:  "list",
				Usage: "list documents, newest first",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "tag", Usage: "filter by tag"},
					&ucli.IntFlag{Name: "limit", Usage: "limit number of results"},
				},
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					return cmds.List(c.Context, c.String("tag"), c.Int("limit"))
				}),
			},
			{
				Name:      "show",
				Usage:     "print a document",
				ArgsUsage: "<id>",
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					if c.NArg() != 1 {
						return ucli.Exit("usage: docsearch show <id>", 1)
					}
					return cmds.Show(c.Context, c.Args().First())
				}),
			},
			{
				Name:      "open",
				Usage:     "open a document in the browser",
				ArgsUsage: "<id>",
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					if c.NArg() != 1 {
						return ucli.Exit("usage: docsearch open <id>", 1)
					}
					return cmds.Open(c.Context, c.Args().First())
				}),
			},
			{
				Name:      "rm",
				Usage:     "delete documents",
				ArgsUsage: "<id> [id...]",
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					if c.NArg() == 0 {
						return ucli.Exit("usage: docsearch rm <id> [id...]", 1)
					}
					return cmds.Remove(c.Context, c.Args().Slice()...)
				}),
			},
			{
				Name:      "search",
				Usage:     "full-text search",
				ArgsUsage: "<query>",
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					return cmds.Search(c.Context, strings.Join(c.Args().Slice(), " "))
				}),
			},
			{
				Name:      "ask",
				Usage:     "answer a question from the saved documents",
				ArgsUsage: "<question>",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "recent", Usage: "list recent questions instead"},
					&ucli.DurationFlag{Name: "delay", Usage: "delay between streamed words"},
				},
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					if c.Bool("recent") {
						return cmds.Recent()
					}
					return cmds.Ask(c.Context, strings.Join(c.Args().Slice(), " "), c.Duration("delay"))
				}),
			},
			{
				Name:      "links",
				Usage:     "extract links from a markdown file or stdin",
				ArgsUsage: "[file]",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "json", Usage: "print as JSON"},
				},
				Action: func(c *ucli.Context) error {
					var r io.Reader = os.Stdin
					if c.NArg() > 0 && c.Args().First() != "-" {
						f, err := os.Open(c.Args().First())
						if err != nil {
							return err
						}
						defer f.Close()
						r = f
					}
					return cli.NewCommands(nil, os.Stdout).Links(r, c.Bool("json"))
				},
			},
			{
				Name:  "export",
				Usage: "export all documents as JSON to stdout",
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					return cmds.Export(c.Context, os.Stdout)
				}),
			},
			{
				Name:      "import",
				Usage:     "import documents from a JSON file",
				ArgsUsage: "<file>",
				Action: env.withCommands(func(c *ucli.Context, cmds *cli.Commands) error {
					if c.NArg() != 1 {
						return ucli.Exit("usage: docsearch import <file.json>", 1)
					}
					return cmds.Import(c.Context, c.Args().First())
				}),
			},
			{
				Name:  "config",
				Usage: "print the config path, or write the defaults with --init",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "init", Usage: "write the current config to the config path"},
				},
				Action: func(c *ucli.Context) error {
					path, err := env.configPath(c)
					if err != nil {
						return err
					}
					if c.Bool("init") {
						if _, err := os.Stat(path); err == nil {
							return ucli.Exit(fmt.Sprintf("config already exists: %s", path), 1)
						}
						if err := env.cfg.Save(path); err != nil {
							return err
						}
					}
					fmt.Println(path)
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "show version",
				Action: func(c *ucli.Context) error {
					cli.NewCommands(nil, os.Stdout).Version(version)
					return nil
				},
			},
		},
	}
}

func (env *runtimeEnv) configPath(c *ucli.Context) (string, error) {
	if p := c.String("config"); p != "" {
		return p, nil
	}
	return config.Path()
}

// setup loads the config and installs the logger. The TUI owns the
// terminal, so it logs to a file.
func (env *runtimeEnv) setup(c *ucli.Context) error {
	path, err := env.configPath(c)
	if err != nil {
		env.cfg = config.Default()
	} else if env.cfg, err = config.LoadFile(path); err != nil {
		return err
	}

	if c.IsSet("db-path") {
		env.cfg.DBPath = c.String("db-path")
	}
	if c.IsSet("log-level") {
		env.cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-file") {
		env.cfg.LogFile = c.String("log-file")
	}

	logFile := env.cfg.LogFile
	if logFile == "" && isTUI(c) {
		if logFile, err = app.DefaultLogPath(); err != nil {
			return err
		}
	}

	env.logger, err = app.SetupLogger(os.Stderr, logFile, env.cfg.LogLevel)
	return err
}

// isTUI reports whether the invocation runs the interactive UI.
func isTUI(c *ucli.Context) bool {
	first := c.Args().First()
	return first == "" || first == "tui"
}

func (env *runtimeEnv) runTUI(c *ucli.Context) error {
	s, err := app.NewStorage(env.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer s.Close()

	slog.Info("starting tui", "version", version)
	return tui.Run(s, tui.Options{
		AutoFocus:        env.cfg.ShouldAutoFocus(),
		StallThreshold:   env.cfg.Stall(),
		Placeholder:      env.cfg.Placeholder,
		PlaceholderAskAI: env.cfg.PlaceholderAskAI,
		Translations:     env.cfg.Translations,
	})
}

func (env *runtimeEnv) withCommands(fn func(*ucli.Context, *cli.Commands) error) ucli.ActionFunc {
	return func(c *ucli.Context) error {
		s, err := app.NewStorage(env.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer s.Close()

		return fn(c, cli.NewCommands(s, os.Stdout))
	}
}
