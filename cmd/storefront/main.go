// Command storefront serves and inspects the session-scoped cart, wishlist
// and chat state of the marketplace storefront.
//
//	storefront serve                 # HTTP API (default)
//	storefront migrate               # create/upgrade the SQLite schema
//	storefront slots --session tab-1 # dump a session's slots
//	storefront catalog               # fetch the catalog and print identities
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tbourn/marketplace-state/internal/config"
	"github.com/tbourn/marketplace-state/internal/sysutil"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "storefront",
		Usage:   "Marketplace client state service",
		Version: sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` before reading configuration",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			// A missing .env is normal outside development.
			_ = godotenv.Load(c.String("env-file"))
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			slotsCommand(),
			catalogCommand(),
		},
		Action: func(c *cli.Context) error {
			return runServe(c)
		},
	}
}

// loadConfig reads configuration and installs the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}
