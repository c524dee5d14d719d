package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/hookmgr/internal/app"
	"github.com/dshills/hookmgr/internal/config"
)

const globalUsage = `Load Lua plugins and trigger events on an in-process event manager.

Plugins are listed in a TOML or YAML configuration file:

	[[plugins]]
	name = "audit"
	path = "plugins/audit.lua"

Environment:

	HOOKMGR_LOG_LEVEL   override the configured log level
	HOOKMGR_LOG_FORMAT  override the configured log format (text or json)
`

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "path to a TOML or YAML configuration file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "", "log format (text, json)")
}

// loadConfig reads the configuration named by the flags. Flags override
// both the file and the environment.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if o.configPath == "" {
		cfg = config.Default()
		cfg.ApplyEnv(config.OSEnv)
	} else {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, errors.Wrapf(err, "loading config %s", o.configPath)
		}
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the application described by the flags.
func (o *globalOptions) newApp(ctx context.Context, logOut io.Writer) (*app.Application, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, app.Options{Config: cfg, LogOutput: logOut})
	if err != nil {
		return nil, errors.Wrap(err, "starting hookctl")
	}
	return a, nil
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	o := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "hookctl",
		Short:         "Trigger events on Lua plugins",
		Long:          globalUsage,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	o.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newTriggerCmd(o),
		newListCmd(o),
		newWatchCmd(o),
	)
	return cmd
}
