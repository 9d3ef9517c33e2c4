// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/robustdom/internal/driver"
)

// EnvPrefix is the prefix for every environment override, e.g.
// ROBUSTDOM_WAIT_TIMEOUT=30s.
const EnvPrefix = "ROBUSTDOM"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Wait() WaitConfig
	Launcher() LauncherConfig

	// Setters for values commonly overridden by CLI flags.
	SetBrowserHeadless(bool)
	SetWaitTimeout(d time.Duration)
	SetLauncherOutputDir(dir string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	WaitCfg     WaitConfig     `mapstructure:"wait" yaml:"wait"`
	LauncherCfg LauncherConfig `mapstructure:"launcher" yaml:"launcher"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Wait() WaitConfig         { return c.WaitCfg }
func (c *Config) Launcher() LauncherConfig { return c.LauncherCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)       { c.BrowserCfg.Headless = b }
func (c *Config) SetWaitTimeout(d time.Duration)  { c.WaitCfg.Timeout = d }
func (c *Config) SetLauncherOutputDir(dir string) { c.LauncherCfg.OutputDir = dir }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome instance handles run against.
type BrowserConfig struct {
	Headless         bool                `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors  bool                `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath         string              `mapstructure:"exec_path" yaml:"exec_path"`
	Args             []string            `mapstructure:"args" yaml:"args"`
	Viewport         map[string]int      `mapstructure:"viewport" yaml:"viewport"`
	StartupTimeout   time.Duration       `mapstructure:"startup_timeout" yaml:"startup_timeout"`
	OperationTimeout time.Duration       `mapstructure:"operation_timeout" yaml:"operation_timeout"`
	Capabilities     driver.Capabilities `mapstructure:"capabilities" yaml:"capabilities"`
}

// WaitConfig bounds how long handles keep re-trying acquisition.
type WaitConfig struct {
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	// Implicit is the driver-level implicit wait applied to new pages.
	Implicit time.Duration `mapstructure:"implicit" yaml:"implicit"`
}

// LauncherConfig describes the driver-hosting process started by the grid command.
type LauncherConfig struct {
	Interpreter string   `mapstructure:"interpreter" yaml:"interpreter"`
	Classpath   []string `mapstructure:"classpath" yaml:"classpath"`
	EntryPoint  string   `mapstructure:"entry_point" yaml:"entry_point"`
	OutputDir   string   `mapstructure:"output_dir" yaml:"output_dir"`
	Args        []string `mapstructure:"args" yaml:"args"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "robustdom")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.startup_timeout", "30s")
	v.SetDefault("browser.operation_timeout", "15s")
	v.SetDefault("browser.capabilities.xpath", true)
	v.SetDefault("browser.capabilities.css", true)

	// -- Wait --
	v.SetDefault("wait.timeout", "10s")
	v.SetDefault("wait.interval", "250ms")
	v.SetDefault("wait.implicit", "0s")

	// -- Launcher --
	v.SetDefault("launcher.interpreter", "java")
	v.SetDefault("launcher.classpath", []string{})
	v.SetDefault("launcher.entry_point", "org.openqa.grid.selenium.GridLauncherV3")
	v.SetDefault("launcher.output_dir", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
// Every key can be overridden from the environment with the ROBUSTDOM_ prefix.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// A single string from the environment arrives unsplit.
	if len(cfg.LauncherCfg.Classpath) == 1 {
		cfg.LauncherCfg.Classpath = strings.Split(cfg.LauncherCfg.Classpath[0], string(os.PathListSeparator))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.WaitCfg.Validate(); err != nil {
		return fmt.Errorf("wait configuration invalid: %w", err)
	}
	if c.BrowserCfg.OperationTimeout < 0 {
		return fmt.Errorf("browser.operation_timeout must not be negative")
	}
	return nil
}

// Validate checks the WaitConfig settings.
func (w *WaitConfig) Validate() error {
	if w.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if w.Timeout > 0 && w.Interval <= 0 {
		return fmt.Errorf("interval must be a positive duration when timeout is set")
	}
	if w.Implicit < 0 {
		return fmt.Errorf("implicit must not be negative")
	}
	return nil
}

// Validate checks the launcher settings. It is only called by commands that
// actually start a process.
func (l *LauncherConfig) Validate() error {
	if l.Interpreter == "" {
		return fmt.Errorf("launcher.interpreter is required")
	}
	if l.EntryPoint == "" {
		return fmt.Errorf("launcher.entry_point is required")
	}
	return nil
}
