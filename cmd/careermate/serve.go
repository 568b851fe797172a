package main

import (
	"context"
	"fmt"
	"log"

	"github.com/rizzrioo06/careermate/internal/config"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort        int
	serveConfigFile  string
	serveSkipMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Apply pending database migrations, then start the HTTP server that exposes the
CareerMate REST API. Settings come from --config, then the environment, then defaults;
--port overrides all of them.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Optional JSON config file")
	serveCmd.Flags().BoolVar(&serveSkipMigrate, "skip-migrate", false, "Do not apply migrations on startup")
	rootCmd.AddCommand(serveCmd)
}

// loadServerConfig resolves the server configuration. A port of zero means
// the flag was not given.
func loadServerConfig(path string, port int) (*config.Config, error) {
	base := &config.Config{}
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		base = fileCfg
	}

	cfg := base.MergeWithDefaults(config.FromEnv())
	if port != 0 {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := 0
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	cfg, err := loadServerConfig(serveConfigFile, port)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !serveSkipMigrate {
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	srv, err := server.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// migrate applies all pending migrations to the database at url.
func migrate(ctx context.Context, url string) error {
	database, err := db.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Println("[migrate] database is up to date")
	return nil
}
