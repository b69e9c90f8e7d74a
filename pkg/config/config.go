package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName   = "pocketdl"
	envPrefix = "POCKETDL"
)

// ErrMissingToken is returned by Validate when no API token is configured.
var ErrMissingToken = errors.New("no access token configured (use --token or POCKETDL_TOKEN)")

// Config holds everything a run needs. It is built once per command and
// passed down explicitly.
type Config struct {
	Token     string        `mapstructure:"token"`
	APIURL    string        `mapstructure:"api_url"`
	StaticURL string        `mapstructure:"static_url"`
	VerifySSL bool          `mapstructure:"verify_ssl"`
	Timeout   time.Duration `mapstructure:"timeout"`

	Download DownloadConfig `mapstructure:"download"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DownloadConfig controls which episodes are fetched and how files are laid out.
type DownloadConfig struct {
	OutputDir         string        `mapstructure:"output_dir"`
	Year              int           `mapstructure:"year"`
	ShowAll           bool          `mapstructure:"show_all"`
	Podcast           string        `mapstructure:"podcast"` // fuzzy podcast filter
	SaveMetadata      bool          `mapstructure:"save_metadata"`
	DryRun            bool          `mapstructure:"dry_run"`
	OrganizeByPodcast bool          `mapstructure:"organize_by_podcast"`
	WriteTags         bool          `mapstructure:"write_tags"`
	ArtworkSize       int           `mapstructure:"artwork_size"`
	RequestInterval   time.Duration `mapstructure:"request_interval"`
}

// StorageConfig locates the download history and artwork cache.
type StorageConfig struct {
	HistoryDB string `mapstructure:"history_db"`
	CacheDB   string `mapstructure:"cache_db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dataDir := defaultDataPath()
	return &Config{
		APIURL:    "https://api.pocketcasts.com",
		StaticURL: "https://static.pocketcasts.com",
		VerifySSL: true,
		Timeout:   30 * time.Second,
		Download: DownloadConfig{
			OutputDir:       "./downloads",
			Year:            time.Now().Year(),
			WriteTags:       true,
			ArtworkSize:     600,
			RequestInterval: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			HistoryDB: filepath.Join(dataDir, "history.db"),
			CacheDB:   filepath.Join(dataDir, "artwork.db"),
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// New returns a viper instance seeded with the defaults and environment
// bindings. Commands bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (explicit path, or config.yaml from the user
// config dir or the working directory) and unmarshals the merged result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Validate checks settings required to talk to the API.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if !c.Download.ShowAll && (c.Download.Year < 1900 || c.Download.Year > 9999) {
		return fmt.Errorf("invalid year: %d", c.Download.Year)
	}
	if c.Download.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	return nil
}

// MetadataLabel names the JSON export for this run.
func (c *Config) MetadataLabel() string {
	if c.Download.ShowAll {
		return "all"
	}
	return fmt.Sprintf("%d", c.Download.Year)
}

func (c *Config) normalize() {
	c.Token = strings.TrimSpace(c.Token)
	c.Download.OutputDir = expandHome(c.Download.OutputDir)
	c.Storage.HistoryDB = expandHome(c.Storage.HistoryDB)
	c.Storage.CacheDB = expandHome(c.Storage.CacheDB)
	c.Logging.File = expandHome(c.Logging.File)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("token", cfg.Token)
	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("static_url", cfg.StaticURL)
	v.SetDefault("verify_ssl", cfg.VerifySSL)
	v.SetDefault("timeout", cfg.Timeout)

	v.SetDefault("download.output_dir", cfg.Download.OutputDir)
	v.SetDefault("download.year", cfg.Download.Year)
	v.SetDefault("download.show_all", cfg.Download.ShowAll)
	v.SetDefault("download.podcast", cfg.Download.Podcast)
	v.SetDefault("download.save_metadata", cfg.Download.SaveMetadata)
	v.SetDefault("download.dry_run", cfg.Download.DryRun)
	v.SetDefault("download.organize_by_podcast", cfg.Download.OrganizeByPodcast)
	v.SetDefault("download.write_tags", cfg.Download.WriteTags)
	v.SetDefault("download.artwork_size", cfg.Download.ArtworkSize)
	v.SetDefault("download.request_interval", cfg.Download.RequestInterval)

	v.SetDefault("storage.history_db", cfg.Storage.HistoryDB)
	v.SetDefault("storage.cache_db", cfg.Storage.CacheDB)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return "."
}

// defaultDataPath returns the directory for the history database and cache
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}
