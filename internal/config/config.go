package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when flags, environment or the config file
// describe a launcher that cannot start.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	ModeExec  = "exec"
	ModeChild = "child"

	envPrefix = "LAUNCHER"
)

// Config holds settings for the launcher.
type Config struct {
	Profile    string          // Name of the applied profile (e.g., "railway")
	Mode       string          // "exec" replaces the process, "child" supervises it
	ConfigFile string          // Config file actually read, empty if none
	DotEnv     DotEnvResult    // Keys exported from the .env file
	Log        LogConfig       // Logger settings
	Server     ServerConfig    // Streamlit invocation
	Preflight  PreflightConfig // Checks performed before launch
	Health     HealthConfig    // Readiness probing of the launched server
	Status     StatusConfig    // Side HTTP server, child mode only
}

// LogConfig holds logger settings.
type LogConfig struct {
	Type   string // Logger implementation, only "slog"
	Level  string // debug, info, warn, error
	ToFile bool   // Write to File instead of stdout
	File   string // Log file path
}

// ServerConfig describes how the Streamlit server is invoked.
type ServerConfig struct {
	PortEnv           string   // Environment variable holding the port (e.g., "PORT")
	DefaultPort       string   // Used when PortEnv is unset or empty
	Command           []string // argv prefix, e.g. ["streamlit"] or ["python", "-m", "streamlit"]
	App               string   // Script passed to "run"
	DisableUsageStats bool     // Emit --browser.gatherUsageStats=false
	DisableCORS       bool     // Emit --server.enableCORS=false
	DisableXSRF       bool     // Emit --server.enableXsrfProtection=false
	ExtraArgs         []string // Appended after the generated flags
}

// PreflightConfig holds the optional start-up checks.
type PreflightConfig struct {
	Strict          bool          // Abort on any failed check, like "set -e"
	Banner          bool          // Print a start-up banner to stderr
	StartupDelay    time.Duration // Sleep before launching
	RequiredEnv     []string      // Variables that must be set and non-empty
	ImportCheck     bool          // Import Modules with Python before launching
	Python          string        // Interpreter used for the import check
	Modules         []string      // Modules that must import cleanly
	ImportTimeout   time.Duration // Upper bound for the import check
	DatabaseCheck   bool          // Ping the database before launching
	DatabaseURLEnv  string        // Environment variable holding the database URL
	DatabaseTimeout time.Duration // Upper bound for the database ping
}

// HealthConfig holds readiness probe settings for child mode.
type HealthConfig struct {
	Enabled          bool
	Path             string        // Health endpoint of the launched server
	Interval         time.Duration // Interval between probes
	Timeout          time.Duration // Timeout for a single probe
	FailureThreshold int           // Consecutive failures before the server is marked down
}

// StatusConfig holds the side HTTP server settings for child mode.
type StatusConfig struct {
	Enabled bool
	Port    string // Must differ from the Streamlit port
}

// flagKeys maps flag names to the viper keys they override.
var flagKeys = map[string]string{
	"profile":       "profile",
	"mode":          "mode",
	"port-env":      "server.port_env",
	"port-default":  "server.default_port",
	"app":           "server.app",
	"command":       "server.command",
	"strict":        "preflight.strict",
	"banner":        "preflight.banner",
	"startup-delay": "preflight.startup_delay",
	"import-check":  "preflight.import_check",
	"db-check":      "preflight.database_check",
	"health":        "health.enabled",
	"status":        "status.enabled",
	"status-port":   "status.port",
	"log-level":     "log.level",
}

// NewConfig initializes configuration with priority:
// 1. Command-line flags
// 2. LAUNCHER_* environment variables
// 3. Config file (YAML)
// 4. Profile defaults
// 5. Built-in defaults
//
// Arguments after "--" are passed to the server untouched.
func NewConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("launcher", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", "", "Path to a YAML config file")
	dotenvPath := fs.String("dotenv", "", "Path to a .env file (default .env)")
	fs.String("profile", "", "Launch profile (streamlit, railway, railway-debug, proxy, minimal)")
	fs.String("mode", "", "Launch mode: exec or child")
	fs.String("port-env", "", "Environment variable holding the port")
	fs.String("port-default", "", "Port used when the port variable is unset or empty")
	fs.String("app", "", "Streamlit script to run")
	fs.String("command", "", "Server command, whitespace separated")
	fs.Bool("strict", false, "Abort on any failed preflight step")
	fs.Bool("banner", false, "Print a start-up banner")
	fs.Duration("startup-delay", 0, "Delay before launching")
	fs.Bool("import-check", false, "Check Python imports before launching")
	fs.Bool("db-check", false, "Ping DATABASE_URL before launching")
	fs.Bool("health", false, "Probe the server health endpoint (child mode)")
	fs.Bool("status", false, "Serve /healthz and /metrics (child mode)")
	fs.String("status-port", "", "Port of the status server")
	fs.String("log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if *dotenvPath == "" {
		*dotenvPath = os.Getenv(envPrefix + "_DOTENV")
	}
	if *dotenvPath == "" {
		*dotenvPath = ".env"
	}
	dotenv, err := LoadDotEnv(*dotenvPath)
	if err != nil {
		return nil, fmt.Errorf("error loading dotenv: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := readConfigFile(v, *configPath); err != nil {
		return nil, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			flagErr = fmt.Errorf("%w: flag -%s is not readable", ErrInvalidConfig, f.Name)
			return
		}
		v.Set(key, getter.Get())
	})
	if flagErr != nil {
		return nil, flagErr
	}

	profile, ok := LookupProfile(v.GetString("profile"))
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile %q (known: %s)",
			ErrInvalidConfig, v.GetString("profile"), strings.Join(ProfileNames(), ", "))
	}
	profile.apply(v)

	cfg := &Config{
		Profile:    profile.Name,
		Mode:       strings.ToLower(v.GetString("mode")),
		ConfigFile: v.ConfigFileUsed(),
		DotEnv:     dotenv,
		Log:        loadLogConfig(v),
		Server:     loadServerConfig(v, fs.Args()),
		Preflight:  loadPreflightConfig(v),
		Health:     loadHealthConfig(v),
		Status:     loadStatusConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile reads an explicit config file, or launcher.yaml from the
// working directory or /etc/launcher. A missing default file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("launcher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/launcher")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &configFileNotFoundError) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func loadLogConfig(v *viper.Viper) LogConfig {
	return LogConfig{
		Type:   v.GetString("log.type"),
		Level:  strings.ToLower(v.GetString("log.level")),
		ToFile: v.GetBool("log.to_file"),
		File:   v.GetString("log.file"),
	}
}

func loadServerConfig(v *viper.Viper, extra []string) ServerConfig {
	extraArgs := v.GetStringSlice("server.extra_args")
	extraArgs = append(extraArgs, extra...)

	return ServerConfig{
		PortEnv:           v.GetString("server.port_env"),
		DefaultPort:       strings.TrimSpace(v.GetString("server.default_port")),
		Command:           v.GetStringSlice("server.command"),
		App:               strings.TrimSpace(v.GetString("server.app")),
		DisableUsageStats: v.GetBool("server.disable_usage_stats"),
		DisableCORS:       v.GetBool("server.disable_cors"),
		DisableXSRF:       v.GetBool("server.disable_xsrf"),
		ExtraArgs:         extraArgs,
	}
}

func loadPreflightConfig(v *viper.Viper) PreflightConfig {
	return PreflightConfig{
		Strict:          v.GetBool("preflight.strict"),
		Banner:          v.GetBool("preflight.banner"),
		StartupDelay:    v.GetDuration("preflight.startup_delay"),
		RequiredEnv:     v.GetStringSlice("preflight.required_env"),
		ImportCheck:     v.GetBool("preflight.import_check"),
		Python:          v.GetString("preflight.python"),
		Modules:         v.GetStringSlice("preflight.modules"),
		ImportTimeout:   v.GetDuration("preflight.import_timeout"),
		DatabaseCheck:   v.GetBool("preflight.database_check"),
		DatabaseURLEnv:  v.GetString("preflight.database_url_env"),
		DatabaseTimeout: v.GetDuration("preflight.database_timeout"),
	}
}

func loadHealthConfig(v *viper.Viper) HealthConfig {
	return HealthConfig{
		Enabled:          v.GetBool("health.enabled"),
		Path:             v.GetString("health.path"),
		Interval:         v.GetDuration("health.interval"),
		Timeout:          v.GetDuration("health.timeout"),
		FailureThreshold: v.GetInt("health.failure_threshold"),
	}
}

func loadStatusConfig(v *viper.Viper) StatusConfig {
	return StatusConfig{
		Enabled: v.GetBool("status.enabled"),
		Port:    v.GetString("status.port"),
	}
}

// Validate reports the first setting that makes the launcher unusable.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeExec, ModeChild:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.Log.Type != "slog" {
		return fmt.Errorf("%w: unsupported logger type %q", ErrInvalidConfig, c.Log.Type)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	if c.Server.PortEnv == "" {
		return fmt.Errorf("%w: server.port_env must not be empty", ErrInvalidConfig)
	}
	if c.Server.DefaultPort == "" {
		return fmt.Errorf("%w: server.default_port must not be empty", ErrInvalidConfig)
	}
	if len(c.Server.Command) == 0 {
		return fmt.Errorf("%w: server.command must not be empty", ErrInvalidConfig)
	}
	if c.Server.App == "" {
		return fmt.Errorf("%w: server.app must not be empty", ErrInvalidConfig)
	}
	if c.Preflight.StartupDelay < 0 {
		return fmt.Errorf("%w: preflight.startup_delay must not be negative", ErrInvalidConfig)
	}
	if c.Preflight.ImportCheck && (c.Preflight.Python == "" || len(c.Preflight.Modules) == 0) {
		return fmt.Errorf("%w: import check needs preflight.python and preflight.modules", ErrInvalidConfig)
	}
	if c.Health.Interval <= 0 || c.Health.Timeout <= 0 {
		return fmt.Errorf("%w: health interval and timeout must be positive", ErrInvalidConfig)
	}
	if c.Health.FailureThreshold < 1 {
		return fmt.Errorf("%w: health.failure_threshold must be at least 1", ErrInvalidConfig)
	}
	if c.Status.Enabled && c.Status.Port == "" {
		return fmt.Errorf("%w: status.port must be set when the status server is enabled", ErrInvalidConfig)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", DefaultProfile)
	v.SetDefault("mode", ModeExec)
	v.SetDefault("log.type", "slog")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.to_file", false)
	v.SetDefault("log.file", "logs/launcher.log")
	v.SetDefault("server.port_env", "PORT")
	v.SetDefault("server.default_port", "8501")
	v.SetDefault("server.command", []string{"streamlit"})
	v.SetDefault("server.app", "app.py")
	v.SetDefault("server.disable_usage_stats", true)
	v.SetDefault("server.disable_cors", false)
	v.SetDefault("server.disable_xsrf", false)
	v.SetDefault("server.extra_args", []string{})
	v.SetDefault("preflight.strict", false)
	v.SetDefault("preflight.banner", false)
	v.SetDefault("preflight.startup_delay", time.Duration(0))
	v.SetDefault("preflight.required_env", []string{})
	v.SetDefault("preflight.import_check", false)
	v.SetDefault("preflight.python", "python")
	v.SetDefault("preflight.modules", []string{
		"streamlit", "pandas", "plotly", "pytz", "requests",
		"dateutil", "dotenv", "web3", "eth_account", "py_clob_client",
		"httpx", "psycopg2",
	})
	v.SetDefault("preflight.import_timeout", 60*time.Second)
	v.SetDefault("preflight.database_check", false)
	v.SetDefault("preflight.database_url_env", "DATABASE_URL")
	v.SetDefault("preflight.database_timeout", 5*time.Second)
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.path", "/_stcore/health")
	v.SetDefault("health.interval", 10*time.Second)
	v.SetDefault("health.timeout", 2*time.Second)
	v.SetDefault("health.failure_threshold", 3)
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.port", "9090")
}
