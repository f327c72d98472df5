// Package config defines the explicit configuration struct shared by the
// CLI and the application service. No package carries implicit global state:
// the loaded Config is passed into constructors.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults for the engineering org this tool inventories.
const (
	DefaultDataDirName   = ".secretsctl"
	DefaultRegion        = "us-east-1"
	DefaultDynamoDBTable = "PlatformAccountsTable"
	DefaultMainProfile   = "brighthive-main"

	CatalogFileName = "catalog.json"
)

// Config holds every tunable of the tool. All fields can be overridden with
// SECRETSCTL_* environment variables.
type Config struct {
	// RootDir is the base directory; DataDir and BackupDir default beneath it.
	RootDir   string `mapstructure:"root"`
	DataDir   string `mapstructure:"data_dir"`
	BackupDir string `mapstructure:"backup_dir"`

	// AWS inventory settings, consumed by the excluded AWS collaborators.
	Region        string `mapstructure:"region"`
	DynamoDBTable string `mapstructure:"dynamodb_table"`
	MainProfile   string `mapstructure:"profile_main"`
	// Profiles maps environment labels (dev/stg/prod) to AWS profile names.
	Profiles map[string]string `mapstructure:"-"`

	LogLevel  string `mapstructure:"log_level"`
	LogToFile bool   `mapstructure:"log_to_file"`
}

// Load builds the configuration from defaults plus SECRETSCTL_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SECRETSCTL")
	v.AutomaticEnv()

	v.SetDefault("root", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("backup_dir", "")
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("dynamodb_table", DefaultDynamoDBTable)
	v.SetDefault("profile_main", DefaultMainProfile)
	v.SetDefault("profile_dev", "brighthive-development")
	v.SetDefault("profile_stg", "brighthive-staging")
	v.SetDefault("profile_prod", "brighthive-production")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_to_file", false)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Profiles = map[string]string{
		"dev":  v.GetString("profile_dev"),
		"stg":  v.GetString("profile_stg"),
		"prod": v.GetString("profile_prod"),
	}

	if cfg.RootDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfg.RootDir = filepath.Join(homeDir, DefaultDataDirName)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.RootDir, "data")
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.RootDir, "backups")
	}

	return cfg, nil
}

// CatalogPath is the location of the JSON catalog document.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, CatalogFileName)
}

// IndexDir is the directory holding the bleve index and materialized
// index artifacts.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// OrganizedDir is the directory holding aliases and per-secret metadata
// files.
func (c *Config) OrganizedDir() string {
	return filepath.Join(c.DataDir, "organized")
}
