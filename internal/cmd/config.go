package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coolteam/cardshop/internal/config"
	"github.com/coolteam/cardshop/internal/tui/styles"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify cardshop configuration",
	Long: `View or modify cardshop configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  cardshop config set api.base_url https://shop.example.com/api.php
  cardshop config set shop.pay_types alipay,wxpay
  cardshop config set tui.theme nord

Valid keys:
  api.base_url          - Shop API endpoint (http or https URL)
  api.timeout           - Per-request timeout, e.g. 10s (0 disables it)
  shop.pay_types        - Comma-separated payment methods offered at checkout
                          Options: alipay, wxpay, qqpay, bank
  shop.contact_type     - Contact type sent with orders (1 = QQ)
  storage.dir           - Session store directory (default: <config dir>/data)
  tui.theme             - Built-in theme name or path to a theme YAML file
  tui.copy_feedback_ms  - How long "copied" is shown, in milliseconds
  logging.enabled       - Write debug.log in the storage directory (true/false)
  logging.level         - debug, info, warn or error
  logging.max_size_mb   - Rotate debug.log at this size
  logging.max_backups   - Rotated files to keep
  logging.compress      - Gzip rotated files (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/cardshop/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// configKeys maps every settable key to its value kind.
var configKeys = map[string]string{
	"api.base_url":         "string",
	"api.timeout":          "duration",
	"shop.pay_types":       "list",
	"shop.contact_type":    "int",
	"storage.dir":          "string",
	"tui.theme":            "string",
	"tui.copy_feedback_ms": "int",
	"logging.enabled":      "bool",
	"logging.level":        "string",
	"logging.max_size_mb":  "int",
	"logging.max_backups":  "int",
	"logging.compress":     "bool",
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(w, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintln(w, "# Config file: (none - using defaults)")
	}

	if _, err := config.Load(); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, _ = fmt.Fprint(w, string(out))
	return nil
}

func parseConfigValue(key, value string) (any, error) {
	kind, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'cardshop config set --help' to see valid keys", key)
	}

	switch kind {
	case "bool":
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 10s", key)
		}
		return d.String(), nil
	case "list":
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	value, err := parseConfigValue(key, raw)
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, value)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	fs := newFs()
	if err := fs.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	settings := viper.AllSettings()
	delete(settings, "config")
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := afero.WriteFile(fs, configFile, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Set %s = %v\n", key, value)
	_, _ = fmt.Fprintf(w, "Config saved to %s\n", configFile)
	return nil
}

const defaultConfigFile = `# cardshop configuration

api:
  # Shop endpoint; every request is sent as <base_url>?action=<name>
  base_url: %s
  # Per-request timeout such as 10s; 0 waits as long as the server does
  timeout: 0s

shop:
  # Payment methods offered at checkout, first one preselected
  # Options: %s
  pay_types: [alipay, wxpay]
  # Contact type sent with orders (1 = QQ)
  contact_type: 1

storage:
  # Session store (admin token, last contact, order history).
  # Empty means <config dir>/data
  dir: ""

tui:
  # Built-in theme (%s) or a path to a theme YAML file
  theme: default
  # How long "copied" is shown next to a card code
  copy_feedback_ms: 1500

logging:
  # Write debug.log into the storage directory
  enabled: false
  level: info
  max_size_mb: 10
  max_backups: 3
  compress: false
`

func runConfigInit(cmd *cobra.Command, _ []string) error {
	fs := newFs()
	configFile := config.ConfigFile()

	if _, err := fs.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'cardshop config set' to modify values", configFile)
	}
	if err := fs.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(defaultConfigFile,
		config.DefaultBaseURL,
		strings.Join(config.ValidPayTypes(), ", "),
		strings.Join(styles.BuiltinThemes(), ", "),
	)
	if err := afero.WriteFile(fs, configFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(w, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintf(w, "Default path: %s (not created)\n", config.ConfigFile())
	}

	_, _ = fmt.Fprintln(w, "\nSearch paths:")
	_, _ = fmt.Fprintf(w, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	_, _ = fmt.Fprintln(w, "  2. ./config.yaml (current directory)")
	_, _ = fmt.Fprintln(w, "\nEnvironment variables: CARDSHOP_* (e.g., CARDSHOP_API_BASE_URL)")
	return nil
}
