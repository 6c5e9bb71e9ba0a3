package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/paperstack-cli/internal/project"
)

// Global configuration structure.
type Global struct {
	ListenAddr        string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	UploadsDir        string   `mapstructure:"uploads_dir" yaml:"uploads_dir"`
	MaxUploadMB       int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
	ProjectName       string   `mapstructure:"project_name" yaml:"project_name"`
	DefaultTechnology string   `mapstructure:"default_technology" yaml:"default_technology"`
	PreviewChars      int      `mapstructure:"preview_chars" yaml:"preview_chars"`
	LogLevel          string   `mapstructure:"log_level" yaml:"log_level"`

	// Generation history (SQLite). Empty disables recording.
	HistoryDB string `mapstructure:"history_db" yaml:"history_db"`

	// REPL/conversation sessions
	SessionStore  string `mapstructure:"session_store" yaml:"session_store"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	SessionTTLSec int    `mapstructure:"session_ttl_sec" yaml:"session_ttl_sec"`

	// Archive publishing
	S3Bucket   string `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	S3Region   string `mapstructure:"s3_region" yaml:"s3_region"`
	S3Prefix   string `mapstructure:"s3_prefix" yaml:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`

	// Generation events
	NATSURL     string `mapstructure:"nats_url" yaml:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject" yaml:"nats_subject"`

	// Running generated apps
	RunEnabled      bool `mapstructure:"run_enabled" yaml:"run_enabled"`
	RunTimeoutSec   int  `mapstructure:"run_timeout_sec" yaml:"run_timeout_sec"`
	RunRetentionSec int  `mapstructure:"run_retention_sec" yaml:"run_retention_sec"`
}

// MaxUploadBytes converts the configured ceiling to bytes.
func (c *Global) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".paperstack"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.paperstack/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PAPERSTACK")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("uploads_dir", "uploads")
	v.SetDefault("max_upload_mb", 16)
	v.SetDefault("allowed_extensions", []string{"pdf"})
	v.SetDefault("project_name", "research-app")
	v.SetDefault("default_technology", "MERN Stack")
	v.SetDefault("preview_chars", 800)
	v.SetDefault("log_level", "info")
	v.SetDefault("history_db", "")
	v.SetDefault("session_store", "memory")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("session_ttl_sec", 3600)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_prefix", "archives/")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", "paperstack.generations")
	v.SetDefault("run_enabled", false)
	v.SetDefault("run_timeout_sec", 600)
	v.SetDefault("run_retention_sec", 3600)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid max_upload_mb: %d", c.MaxUploadMB)
	}
	if c.ProjectName != "" && !project.ValidName(c.ProjectName) {
		return nil, fmt.Errorf("invalid project_name: %q", c.ProjectName)
	}
	return &c, nil
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{
		"listen_addr", "uploads_dir", "max_upload_mb", "allowed_extensions",
		"project_name", "default_technology", "preview_chars", "log_level",
		"history_db", "session_store", "redis_addr", "session_ttl_sec",
		"s3_bucket", "s3_region", "s3_prefix", "s3_endpoint",
		"nats_url", "nats_subject", "run_enabled", "run_timeout_sec",
		"run_retention_sec",
	}
}

// Set assigns one key from its string form, validating enumerations and
// numeric values.
func Set(c *Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "listen_addr":
		c.ListenAddr = val
	case "uploads_dir":
		c.UploadsDir = val
	case "max_upload_mb":
		i, err := atoi()
		if err != nil {
			return err
		}
		if i == 0 {
			return fmt.Errorf("invalid int for %s: must be positive", key)
		}
		c.MaxUploadMB = i
	case "allowed_extensions":
		var exts []string
		for _, e := range strings.Split(val, ",") {
			e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
			if e != "" {
				exts = append(exts, e)
			}
		}
		if len(exts) == 0 {
			return fmt.Errorf("allowed_extensions cannot be empty")
		}
		c.AllowedExtensions = exts
	case "project_name":
		if !project.ValidName(val) {
			return fmt.Errorf("invalid project_name: %s (use letters, digits, '.', '_' or '-')", val)
		}
		c.ProjectName = val
	case "default_technology":
		c.DefaultTechnology = val
	case "preview_chars":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.PreviewChars = i
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "history_db":
		c.HistoryDB = val
	case "session_store":
		switch strings.ToLower(val) {
		case "memory", "redis":
			c.SessionStore = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid session_store: %s (use memory or redis)", val)
		}
	case "redis_addr":
		c.RedisAddr = val
	case "session_ttl_sec":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.SessionTTLSec = i
	case "s3_bucket":
		c.S3Bucket = val
	case "s3_region":
		c.S3Region = val
	case "s3_prefix":
		c.S3Prefix = val
	case "s3_endpoint":
		c.S3Endpoint = val
	case "nats_url":
		c.NATSURL = val
	case "nats_subject":
		c.NATSSubject = val
	case "run_enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for run_enabled: %v", val)
		}
		c.RunEnabled = b
	case "run_timeout_sec":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.RunTimeoutSec = i
	case "run_retention_sec":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.RunRetentionSec = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
