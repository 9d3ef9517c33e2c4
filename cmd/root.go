// cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/robustdom/internal/config"
	"github.com/xkilldash9x/robustdom/internal/observability"
)

type contextKey string

var stderr = zapcore.Lock(os.Stderr)

const configKey contextKey = "config"

// NewRootCommand builds a fresh command tree. Every call returns independent
// flag state.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "robustdom",
		Short:        "Self-healing element lookups against a live browser.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "robustdom"}, stderr)
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			if err := applyFlagOverrides(cmd, cfg); err != nil {
				return err
			}

			// Command output owns stdout.
			observability.Initialize(cfg.Logger(), stderr)
			observability.GetLogger().Debug("Starting robustdom.", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, config.Interface(cfg)))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is robustdom.yaml in . or $HOME)")
	root.PersistentFlags().Bool("headed", false, "show the browser window")
	root.PersistentFlags().Duration("wait-timeout", 0, "how long handles keep re-trying a lookup")
	root.SetVersionTemplate("robustdom {{.Version}}\n")

	root.AddCommand(newProbeCmd(), newCollectCmd(), newGridCmd(), newVersionCmd())
	return root
}

// Execute runs the CLI under ctx.
func Execute(ctx context.Context) error {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
		}
		return err
	}
	return nil
}

// initializeConfig reads the config file, if any. A missing default file is
// not an error; a missing explicit one is.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return err
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName("robustdom")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg config.Interface) error {
	flags := cmd.Flags()
	if flags.Changed("headed") {
		headed, err := flags.GetBool("headed")
		if err != nil {
			return err
		}
		cfg.SetBrowserHeadless(!headed)
	}
	if flags.Changed("wait-timeout") {
		d, err := flags.GetDuration("wait-timeout")
		if err != nil {
			return err
		}
		cfg.SetWaitTimeout(d)
	}
	if f := flags.Lookup("output-dir"); f != nil && f.Changed {
		cfg.SetLauncherOutputDir(f.Value.String())
	}
	return nil
}

// configFrom returns the configuration stored by the root pre-run.
func configFrom(cmd *cobra.Command) (config.Interface, error) {
	cfg, ok := cmd.Context().Value(configKey).(config.Interface)
	if !ok {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return cfg, nil
}
