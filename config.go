/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	port          int
	prefix        string
	profile       bool
	redisAddress  string
	redisPassword string
	splitDelay    time.Duration
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.splitDelay < 0 {
		return fmt.Errorf("invalid split delay (must not be negative): %s", c.splitDelay)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHINNY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "shinny",
		Short:         "A signup sheet and live team balancer for weekly pickup hockey.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	cmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs := cmd.Flags()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SHINNY_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SHINNY_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SHINNY_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SHINNY_PROFILE)")
	fs.StringVar(&cfg.redisAddress, "redis-address", "localhost:6379", "address of the redis instance holding the roster (env: SHINNY_REDIS_ADDRESS)")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "password for the redis instance holding the roster (env: SHINNY_REDIS_PASSWORD)")
	fs.DurationVar(&cfg.splitDelay, "split-delay", 0, "artificial suspense before a team split responds (env: SHINNY_SPLIT_DELAY)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SHINNY_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SHINNY_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SHINNY_VERSION)")

	// Persistent so the watch subcommand inherits it.
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SHINNY_VERBOSE)")

	for _, set := range []*pflag.FlagSet{fs, pf} {
		set.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(f.Name, f)
			_ = v.BindEnv(f.Name)
			if !f.Changed && v.IsSet(f.Name) {
				_ = set.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})
	}

	cmd.AddCommand(newWatchCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("shinny v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
