package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/starford/harvest/internal"
	pkgconfig "github.com/starford/harvest/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

// loadConfig reads the config file. A missing file at the default path means
// built-in defaults; an explicitly named file must exist.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path := cmd.String("config")
	load := pkgconfig.Load[internal.Config]
	if path == defaultConfigPath {
		load = pkgconfig.LoadOptional[internal.Config]
	}
	cfg := internal.NewDefaultConfig()
	if err := load(path, cfg); err != nil {
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

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func browse(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunBrowse(ctx, internal.WithConfig(cfg))
}

func list(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunList(os.Stdout, cfg, internal.ListOptions{
		Query: cmd.String("query"),
		Tags:  cmd.StringSlice("tag"),
		Mode:  cmd.String("mode"),
	})
}

func seed(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if dir == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir = cfg.Catalog.Dir
	}
	if dir == "" {
		return fmt.Errorf("seed: no directory given and catalog.dir is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	written, err := internal.RunSeed(dir)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("wrote %d farm files to %s", len(written), dir)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "harvest",
		Usage:  "Local farm catalog with search, tag filters and list/map browsing",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve catalog tools over MCP stdio",
				Action: mcp,
			},
			{
				Name:   "browse",
				Usage:  "Browse the catalog in the terminal",
				Action: browse,
			},
			{
				Name:   "list",
				Usage:  "Print the filtered catalog",
				Action: list,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search text"},
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Required tag (repeatable)"},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "View mode: list or map", Value: "list"},
				},
			},
			{
				Name:   "seed",
				Usage:  "Write the built-in farms into a catalog directory",
				Action: seed,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Catalog directory (defaults to catalog.dir)"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
