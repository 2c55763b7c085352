package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/flashcard-frenzy/app"
	authservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/application"
	authjwt "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/flashcard-frenzy/config"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "frenzy",
		Usage: "multiplayer flashcard quiz server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"FRENZY_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP and live match server",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			obs, err := observability.Init(config.ToObsConfig(cfg))
			if err != nil {
				return fmt.Errorf("failed to initialize observability: %w", err)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx, cfg, obs)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			runErr := application.Run(ctx)
			stop()
			if err := application.Close(); err != nil {
				obs.Provider.Logger.Error("Error during shutdown", "error", err)
			}
			if runErr != nil {
				return runErr
			}
			obs.Provider.Logger.Info("Application shut down gracefully")
			return nil
		},
	}
}

// tokenCommand mints a bearer token for local testing.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "user id (token subject)"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "name", Usage: "display name stored in user metadata"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, defaults to jwt.default_ttl"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("jwt.secret is required")
			}

			obs := observability.NewNoop()
			service := authservice.NewService(
				authjwt.NewProvider(cfg.JWT.Secret),
				authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL},
				obs.Provider.Logger,
				obs.Registry.Tracer,
			)

			identity := session.Identity{UserID: c.String("user"), Email: c.String("email")}
			if name := c.String("name"); name != "" {
				identity.Metadata = map[string]string{"name": name}
			}

			token, err := service.IssueToken(context.Background(), identity, c.Duration("ttl"))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(token)
		},
	}
}
