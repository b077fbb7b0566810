package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/harikeshranjan/TodoX/internal/auth"
	"github.com/harikeshranjan/TodoX/internal/config"
	"github.com/harikeshranjan/TodoX/internal/core"
	"github.com/harikeshranjan/TodoX/internal/storage"
	"github.com/harikeshranjan/TodoX/internal/web"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TodoX API server",
		Long: `Start the TodoX API server.

Examples:
  todox serve
  todox serve --addr :3000 --config todox.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("no signing secret configured: set JWT_SECRET or auth.jwt_secret")
			}

			ctx := context.Background()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer store.Close(ctx)

			issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TTL())
			authenticator := auth.New(store, issuer)
			tasks := core.NewTaskService(store)

			server := web.NewServer(authenticator, tasks, web.Options{
				SecureCookies: cfg.Server.SecureCookies,
				CookieTTL:     cfg.Auth.TTL(),
			})

			fmt.Printf("Starting TodoX API (%s store) at http://localhost%s\n", cfg.Store.Driver, cfg.Server.Addr)
			return server.Run(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	return cmd
}

// openStore constructs the configured backend. The handle is built
// once here and passed down explicitly; nothing else opens connections.
func openStore(ctx context.Context, cfg *config.Config) (core.Store, error) {
	switch cfg.Store.Driver {
	case "mongo":
		return storage.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Store.SQLitePath)
	case "memory":
		log.Printf("Warning: memory store selected, data will not survive a restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
