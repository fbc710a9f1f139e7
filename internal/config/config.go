package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete cardshop configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Shop    ShopConfig    `mapstructure:"shop"`
	Storage StorageConfig `mapstructure:"storage"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig controls how the remote commerce endpoint is reached
type APIConfig struct {
	// BaseURL is the full URL of the single endpoint; the action travels
	// as a query parameter.
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ShopConfig controls the purchase form
type ShopConfig struct {
	// PayTypes lists the payment channels offered, in display order.
	// The first entry is the default selection.
	PayTypes []string `mapstructure:"pay_types"`
	// ContactType is the numeric contact kind sent with an order (1 = QQ).
	ContactType int `mapstructure:"contact_type"`
}

// StorageConfig controls where the local session store lives
type StorageConfig struct {
	// Dir holds the session keys and debug.log. Empty means <config dir>/data.
	Dir string `mapstructure:"dir"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// Theme is a built-in theme name or a path to a YAML theme file.
	Theme string `mapstructure:"theme"`
	// CopyFeedbackMs is how long a copied card code stays marked as copied.
	CopyFeedbackMs int `mapstructure:"copy_feedback_ms"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultBaseURL is the endpoint the storefront was built against.
const DefaultBaseURL = "https://shopv2.coolteam.top/api.php"

// Default returns the default configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 0,
		},
		Shop: ShopConfig{
			PayTypes:    []string{"alipay", "wxpay"},
			ContactType: 1,
		},
		Storage: StorageConfig{
			Dir: "",
		},
		TUI: TUIConfig{
			Theme:          "default",
			CopyFeedbackMs: 1500,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// CopyFeedback returns the copy feedback window as a duration.
func (c *TUIConfig) CopyFeedback() time.Duration {
	return time.Duration(c.CopyFeedbackMs) * time.Millisecond
}

// ResolveDir returns the storage directory with "~" expanded and the
// default applied.
func (s *StorageConfig) ResolveDir() string {
	dir := strings.TrimSpace(s.Dir)
	if dir == "" {
		return filepath.Join(ConfigDir(), "data")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.timeout", defaults.API.Timeout)

	viper.SetDefault("shop.pay_types", defaults.Shop.PayTypes)
	viper.SetDefault("shop.contact_type", defaults.Shop.ContactType)

	viper.SetDefault("storage.dir", defaults.Storage.Dir)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.copy_feedback_ms", defaults.TUI.CopyFeedbackMs)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults
// if it cannot be loaded
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the directory holding config.yaml
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cardshop")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cardshop"
	}
	return filepath.Join(home, ".config", "cardshop")
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidPayTypes returns every payment channel the endpoint understands
func ValidPayTypes() []string {
	return []string{"alipay", "wxpay", "qqpay", "bank"}
}
