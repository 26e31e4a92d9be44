package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/halvard/tavla/internal"
	pkgconfig "github.com/halvard/tavla/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		// Defaults carry the app when no config file is present.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}
	if dir := cmd.String("data"); dir != "" {
		opts = append(opts, internal.WithDataDir(dir))
	}
	return opts, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Path to the board data directory (overrides config)",
			Sources: cli.EnvVars("TAVLA_DATA_DIR"),
		},
	}

	cmd := &cli.Command{
		Name:   "tavla",
		Usage:  "Hierarchical visual board with canvas storage, full-text search, and live updates",
		Action: serve,
		Flags:  flags,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP board server",
				Action: serve,
				Flags:  flags,
			},
			{
				Name:   "mcp",
				Usage:  "Serve board tools over MCP stdio",
				Action: mcp,
				Flags:  flags,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
