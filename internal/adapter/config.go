package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "labeldesk"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Labels  LabelsConfig  `mapstructure:"labels"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	DataDir string        `mapstructure:"data_dir"` // Empty keeps state in memory only
}

// ServerConfig holds label server configuration
type ServerConfig struct {
	URL           string        `mapstructure:"url"`
	OrdersPath    string        `mapstructure:"orders_path"`
	LabelsPath    string        `mapstructure:"labels_path"`
	CSRFToken     string        `mapstructure:"csrf_token"`
	SessionCookie string        `mapstructure:"session_cookie"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// OrdersConfig selects where the order queue comes from
type OrdersConfig struct {
	FromServer bool     `mapstructure:"from_server"`
	Files      []string `mapstructure:"files"` // .xlsx workbooks
}

// LabelsConfig holds label download configuration
type LabelsConfig struct {
	DownloadDir       string   `mapstructure:"download_dir"`
	OpenAfterDownload bool     `mapstructure:"open_after_download"`
	Viewer            string   `mapstructure:"viewer"`      // Empty uses the system default
	ViewerArgs        []string `mapstructure:"viewer_args"` // Passed before the file path
}

// UIConfig holds UI configuration
type UIConfig struct {
	MessageTimeout time.Duration `mapstructure:"message_timeout"`
	DefaultStatus  string        `mapstructure:"default_status"` // any, downloaded, not_downloaded
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			OrdersPath: "/api/orders",
			LabelsPath: "/get_cdek_labels",
			Timeout:    120 * time.Second,
		},
		Orders: OrdersConfig{
			FromServer: true,
			Files:      []string{},
		},
		Labels: LabelsConfig{
			DownloadDir: defaultDownloadPath(),
			ViewerArgs:  []string{},
		},
		UI: UIConfig{
			MessageTimeout: 7 * time.Second,
			DefaultStatus:  "any",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		DataDir: defaultDataPath(),
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultDataPath returns the default directory of the state database
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "data")
	}
}

func defaultDownloadPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Downloads")
}

// ConfigFile returns the path SaveConfig writes to
func ConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. LABELDESK_SERVER_URL
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, val := range configValues(cfg) {
		v.SetDefault(key, val)
	}
}

func configValues(cfg *Config) map[string]any {
	return map[string]any{
		"server.url":                 cfg.Server.URL,
		"server.orders_path":         cfg.Server.OrdersPath,
		"server.labels_path":         cfg.Server.LabelsPath,
		"server.csrf_token":          cfg.Server.CSRFToken,
		"server.session_cookie":      cfg.Server.SessionCookie,
		"server.timeout":             cfg.Server.Timeout.String(),
		"orders.from_server":         cfg.Orders.FromServer,
		"orders.files":               cfg.Orders.Files,
		"labels.download_dir":        cfg.Labels.DownloadDir,
		"labels.open_after_download": cfg.Labels.OpenAfterDownload,
		"labels.viewer":              cfg.Labels.Viewer,
		"labels.viewer_args":         cfg.Labels.ViewerArgs,
		"ui.message_timeout":         cfg.UI.MessageTimeout.String(),
		"ui.default_status":          cfg.UI.DefaultStatus,
		"logging.file":               cfg.Logging.File,
		"logging.level":              cfg.Logging.Level,
		"data_dir":                   cfg.DataDir,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, ConfigFile())
}

func saveConfig(v *viper.Viper, cfg *Config, configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	for key, val := range configValues(cfg) {
		v.Set(key, val)
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds the session cookie
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}

	return nil
}

// ServerConfigured returns true if a label server URL is set
func (c *Config) ServerConfigured() bool {
	return c.Server.URL != ""
}

// IsConfigured returns true if orders can be loaded from somewhere
func (c *Config) IsConfigured() bool {
	return (c.Orders.FromServer && c.ServerConfigured()) || len(c.Orders.Files) > 0
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// ClearData removes the local state database, including requested label marks
func ClearData(cfg *Config) error {
	if cfg.DataDir == "" {
		return nil
	}
	if err := os.RemoveAll(ExpandPath(cfg.DataDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}
