package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/stallerud/ansuz/internal"
	pkgconfig "github.com/stallerud/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// No config file: defaults only.
		return cfg, cfg.Validate()
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func link(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: link <note-path> [query]")
	}
	return internal.RunLink(ctx, cfg, internal.LinkParams{
		Path:     path,
		Cursor:   int(cmd.Int("cursor")),
		SelStart: int(cmd.Int("sel-start")),
		SelEnd:   int(cmd.Int("sel-end")),
		Hint:     cmd.Args().Get(1),
	}, os.Stdin, os.Stdout)
}

func find(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunFind(ctx, cfg, cmd.Args().First(), os.Stdin, os.Stdout)
}

func ensureID(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ensure-id <note-path>")
	}
	return internal.RunEnsureID(cfg, path, os.Stdout)
}

func audit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunAudit(ctx, cfg, cmd.String("dir"), cmd.Bool("recursive"), !cmd.IsSet("recursive"), os.Stdin, os.Stdout)
}

func linked(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunLinked(cfg, cmd.String("dir"), os.Stdout)
}

func syncIndex(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunSync(cfg, os.Stdout)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(cfg)
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Bridge between a filename-encoded note vault and a graph index with id-based linking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with the vault watcher",
				Action: serve,
			},
			{
				Name:      "link",
				Usage:     "Insert a reference into a note, creating the target when needed",
				ArgsUsage: "<note-path> [query]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "cursor", Value: -1, Usage: "Insertion offset (default: end of note)"},
					&cli.IntFlag{Name: "sel-start", Value: -1, Usage: "Selection start offset"},
					&cli.IntFlag{Name: "sel-end", Value: -1, Usage: "Selection end offset"},
				},
				Action: link,
			},
			{
				Name:      "find",
				Usage:     "Resolve a query to a note path, creating the note when needed",
				ArgsUsage: "[query]",
				Action:    find,
			},
			{
				Name:      "ensure-id",
				Usage:     "Assign a fresh identifier block to a note",
				ArgsUsage: "<note-path>",
				Action:    ensureID,
			},
			{
				Name:  "audit",
				Usage: "List notes missing an identifier block",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Subdirectory to scan (default: vault root)"},
					&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "Descend into subdirectories"},
				},
				Action: audit,
			},
			{
				Name:  "linked",
				Usage: "List indexed nodes under a vault directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Subdirectory (default: vault root)"},
				},
				Action: linked,
			},
			{
				Name:   "sync",
				Usage:  "Run one vault-to-index reconciliation pass",
				Action: syncIndex,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
