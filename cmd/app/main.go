package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/dagaz/internal"
	"github.com/starford/dagaz/internal/cache"
	"github.com/starford/dagaz/internal/derive"
	"github.com/starford/dagaz/internal/docservice"
	"github.com/starford/dagaz/internal/engine"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/query"
	"github.com/starford/dagaz/internal/storage"
	pkgconfig "github.com/starford/dagaz/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "dagaz",
		Usage: "Documentation repository health: scanning, link graph, staleness checks, and derived indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("DAGAZ_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Docs root directory (overrides config)",
				Sources: cli.EnvVars("DAGAZ_DOCS_ROOT"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			checkCommand(),
			indexCommand(),
			searchCommand(),
			tagCommand(),
			statusCommand(),
			newCommand(),
			archiveCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the config file when it exists and applies CLI overrides.
// A missing file at the default location falls back to defaults; an
// explicitly given path must exist.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Docs.Root = root
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// cliLogger keeps command output clean: warnings and errors only, to stderr.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// buildSnapshot runs one full pipeline pass for a CLI command.
func buildSnapshot(ctx context.Context, cmd *cli.Command) (*engine.Snapshot, *internal.Config, storage.Provider, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := storage.NewFS(cfg.Docs.Root, ".md")
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cliLogger()
	eng, err := internal.NewEngine(store, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Cache.Path != "" {
		if db, cerr := cache.Open(cfg.Cache.Path); cerr == nil {
			defer db.Close()
			eng.UseCache(db)
		} else {
			logger.Warn("cache unavailable", slog.String("error", cerr.Error()))
		}
	}
	snap, err := eng.Rebuild(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return snap, cfg, store, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server with file watching",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return internal.Run(ctx, internal.WithConfig(cfg))
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run health checks and print the report; exits non-zero on errors",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap, _, _, err := buildSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			fmt.Print(snap.Report.Format())
			if snap.Report.HasErrors() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Generate INDEX.md, CHANGELOG.md, and ROADMAP.md",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory for generated files",
				Value: ".",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap, cfg, _, err := buildSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			out := cmd.String("out")
			if err := derive.WriteAll(out, snap.Listings, snap.Report, time.Now(), cfg.Docs.ChangelogDays); err != nil {
				return err
			}
			fmt.Printf("wrote INDEX.md, CHANGELOG.md, ROADMAP.md to %s\n", out)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search documents by keyword",
		ArgsUsage: "<query>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			q := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if q == "" {
				return fmt.Errorf("usage: dagaz search <query>")
			}
			snap, _, _, err := buildSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			for _, doc := range query.ByKeyword(snap.Collection, q) {
				fmt.Printf("%s\t%s\n", doc.Path, doc.Title)
			}
			return nil
		},
	}
}

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "List documents carrying a tag",
		ArgsUsage: "<tag>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tag := cmd.Args().First()
			if tag == "" {
				return fmt.Errorf("usage: dagaz tag <tag>")
			}
			snap, _, _, err := buildSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			for _, doc := range query.ByTag(snap.Collection, tag) {
				fmt.Println(doc.Path)
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show a repository overview, or one document's summary",
		ArgsUsage: "[path]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap, _, _, err := buildSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			if path := cmd.Args().First(); path != "" {
				sum, err := query.Summarize(snap.Collection, snap.Graph, snap.Report, path)
				if err != nil {
					return err
				}
				out, _ := json.MarshalIndent(sum, "", "  ")
				fmt.Println(string(out))
				return nil
			}
			errs, warns, infos := snap.Report.Counts()
			fmt.Printf("%d documents, %d failed files\n", snap.Collection.Len(), len(snap.Failures))
			fmt.Printf("issues: %d errors, %d warnings, %d info\n", errs, warns, infos)
			for _, c := range query.Counts(snap.Collection) {
				fmt.Printf("  %-16s %d\n", c.Category, c.Count)
			}
			return nil
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a draft document from the template",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"k"},
				Usage:   "Category directory for the new document",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			title := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if title == "" {
				return fmt.Errorf("usage: dagaz new [--category <cat>] <title>")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(cfg.Docs.Root, ".md")
			if err != nil {
				return err
			}
			rel, err := docservice.NewService(store).New(cmd.String("category"), title, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(rel)
			return nil
		},
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Archive a document under archive/<year>/",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "reason",
				Usage: "Reason recorded in the archived frontmatter",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("usage: dagaz archive [--reason <why>] <path>")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(cfg.Docs.Root, ".md")
			if err != nil {
				return err
			}
			dest, err := docservice.NewService(store).Archive(path, cmd.String("reason"), time.Now())
			if err != nil {
				return err
			}
			fmt.Println(dest)
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(cfg.Docs.Root, ".md")
			if err != nil {
				return err
			}
			eng, err := internal.NewEngine(store, cfg, cliLogger())
			if err != nil {
				return err
			}
			return mcpserver.New(store, eng).ServeStdio()
		},
	}
}
