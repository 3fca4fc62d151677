package main

import (
	"context"

	"github.com/spf13/cobra"

	"pokedex-api/internal/config"
)

const version = "1.0.0"

type runFunc func(ctx context.Context, cfg *config.Config) error

// newRootCmd builds the pokedex-api command. Flags are bound into viper so
// they take precedence over env vars and the config file.
func newRootCmd(run runFunc) *cobra.Command {
	v := config.NewViper()
	var configPath string

	cmd := &cobra.Command{
		Use:          "pokedex-api",
		Short:        "Cache-backed REST proxy in front of PokeAPI",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	flags.Int("port", 3000, "HTTP listen port")
	flags.String("pokeapi-url", "", "PokeAPI base URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("server.port", flags.Lookup("port"))
	_ = v.BindPFlag("pokeapi.base_url", flags.Lookup("pokeapi-url"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	return cmd
}
