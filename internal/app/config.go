package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the terminal configuration, loadable from environment
// variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"127.0.0.1:8090" usage:"Local API listen address"`
	DatabaseURL string `usage:"PostgreSQL URL for the receipt journal; empty keeps receipts in memory" flag:"database-url"`
	StateDir    string `usage:"Directory for the saved session (default: user config dir)" flag:"state-dir"`
	Backend     BackendConfig
	Poll        PollConfig
	Notify      NotifyConfig
	Login       LoginConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// BackendConfig points the terminal at the restaurant REST API.
type BackendConfig struct {
	URL     string        `default:"http://localhost:5000/api" usage:"Backend REST API base URL" flag:"backend-url"`
	Timeout time.Duration `default:"10s" usage:"Per-request backend timeout" flag:"backend-timeout"`
}

// PollConfig controls the background refreshes.
type PollConfig struct {
	Pending time.Duration `default:"5s"  usage:"Pending orders refresh interval" flag:"poll-pending"`
	Kitchen time.Duration `default:"15s" usage:"Kitchen display refresh interval" flag:"poll-kitchen"`
}

// NotifyConfig controls on-screen notifications.
type NotifyConfig struct {
	TTL time.Duration `default:"3s" usage:"How long a notification stays visible" flag:"notify-ttl"`
}

// LoginConfig throttles login attempts per client.
type LoginConfig struct {
	MaxAttempts int           `default:"10" usage:"Login attempts allowed per window" flag:"login-max-attempts"`
	Window      time.Duration `default:"1m" usage:"Login throttle window" flag:"login-window"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"0s" usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"10s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then fills and checks derived values.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/pos/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish applies defaults that depend on the environment and validates.
func (c *Config) finish() error {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "state dir: set POS_STATE_DIR")
		}
		c.StateDir = filepath.Join(dir, "pos-terminal")
	}
	if c.Backend.URL == "" {
		return errors.New("backend URL is required: set POS_BACKEND_URL")
	}
	if c.Poll.Pending <= 0 || c.Poll.Kitchen <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.Login.MaxAttempts <= 0 || c.Login.Window <= 0 {
		return errors.New("login throttle must be positive")
	}
	return nil
}
