package main

import (
	"fmt"
	"os"

	"github.com/joestump/recipe-manager/internal/config"
	"github.com/joestump/recipe-manager/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "recipe-manager",
		Short:         "A small recipe catalogue",
		Long:          "Recipe Manager serves a JSON API for recipes and an HTMX UI on top of it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and sets up the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.Env, cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}
