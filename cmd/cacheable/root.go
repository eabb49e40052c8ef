package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/pkg/logging"
)

// app carries what the persistent pre-run resolved for subcommands.
type app struct {
	settings *viper.Viper
	config   cache.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		configPath string
		logLevel   string
		pretty     bool
	)

	root := &cobra.Command{
		Use:          "cacheable",
		Short:        "Model caching for bun repositories",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Setup(logging.Config{
				Level:  logging.Level(logLevel),
				Pretty: pretty,
				Output: cmd.ErrOrStderr(),
			})

			v, err := cache.ReadSettings(configPath)
			if err != nil {
				return err
			}
			cfg, err := cache.LoadConfig(v)
			if err != nil {
				return err
			}

			a.settings = v
			a.config = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, json, toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", string(logging.LevelInfo), "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&pretty, "log-pretty", false, "human readable logs")

	root.AddCommand(
		newServeCmd(a),
		newGetCmd(a),
		newForgetCmd(a),
	)

	return root
}

// facade builds a facade over the configured store, logging through zerolog.
func (a *app) facade() (*cache.Facade, error) {
	return cache.NewFromConfig(a.config, cache.WithLogger(logging.CacheLogger("cache")))
}

var errLocalDriver = errors.New("store is local to this process")

// sharedFacade is facade for commands that inspect entries written by another
// process, which only a redis store can see.
func (a *app) sharedFacade() (*cache.Facade, error) {
	if a.config.Driver != cache.DriverRedis {
		return nil, fmt.Errorf("%w: driver %q, set cacheable.driver to %q", errLocalDriver, a.config.Driver, cache.DriverRedis)
	}
	return a.facade()
}
