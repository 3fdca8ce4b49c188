package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"

	"portfoliosync/apperrors"
)

// Environment keys.
const (
	KeyMongoURI         = "MONGODB_URI"
	KeyDatabaseURL      = "DATABASE_URL"
	KeyGitHubUsername   = "GITHUB_USERNAME"
	KeyLeetCodeUsername = "LEETCODE_USERNAME"
	KeyGitHubToken      = "GITHUB_TOKEN"
	KeySyncToken        = "SYNC_TOKEN"
	KeyGeminiAPIKey     = "GEMINI_API_KEY"
	KeyGeminiModel      = "GEMINI_MODEL"
	KeySiteURL          = "SITE_URL"
	KeyDeployHookURL    = "DEPLOY_HOOK_URL"
	KeyLeetCodeAPIURL   = "LEETCODE_API_URL"
	KeyPort             = "PORT"
	KeyLogLevel         = "LOG_LEVEL"
	KeyHTTPTimeout      = "HTTP_TIMEOUT"
	KeySyncInterval     = "SYNC_INTERVAL"
	KeyMetricsEnabled   = "METRICS_ENABLED"
)

const (
	DefaultSiteURL        = "https://akash-portfolio-sage.vercel.app"
	DefaultLeetCodeAPIURL = "https://alfa-leetcode-api.onrender.com"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultPort           = "8080"
	DefaultLogLevel       = "info"
	DefaultHTTPTimeout    = 30 * time.Second
)

// Config holds all configuration for the application. Values that only some
// stages need are left empty when unset; stages call Require on entry.
type Config struct {
	StoreURI         string
	GitHubUsername   string
	LeetCodeUsername string
	GitHubToken      string
	SyncToken        string
	GeminiAPIKey     string
	GeminiModel      string
	SiteURL          string `validate:"url"`
	DeployHookURL    string `validate:"url"`
	LeetCodeAPIURL   string `validate:"url"`
	Port             string
	LogLevel         string `validate:"in:debug,info,warn,error"`
	HTTPTimeout      time.Duration
	SyncInterval     time.Duration
	MetricsEnabled   bool
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load reads configuration from the environment and an optional .env file in
// the working directory.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetDefault(KeySiteURL, DefaultSiteURL)
	v.SetDefault(KeyLeetCodeAPIURL, DefaultLeetCodeAPIURL)
	v.SetDefault(KeyGeminiModel, DefaultGeminiModel)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeySyncInterval, time.Duration(0))
	v.SetDefault(KeyMetricsEnabled, true)

	c.StoreURI = v.GetString(KeyMongoURI)
	if c.StoreURI == "" {
		c.StoreURI = v.GetString(KeyDatabaseURL)
	}
	c.GitHubUsername = v.GetString(KeyGitHubUsername)
	c.LeetCodeUsername = v.GetString(KeyLeetCodeUsername)
	c.GitHubToken = v.GetString(KeyGitHubToken)
	c.SyncToken = v.GetString(KeySyncToken)
	c.GeminiAPIKey = v.GetString(KeyGeminiAPIKey)
	c.GeminiModel = v.GetString(KeyGeminiModel)
	c.SiteURL = strings.TrimSuffix(v.GetString(KeySiteURL), "/")
	c.DeployHookURL = v.GetString(KeyDeployHookURL)
	c.LeetCodeAPIURL = strings.TrimSuffix(v.GetString(KeyLeetCodeAPIURL), "/")
	c.Port = v.GetString(KeyPort)
	c.LogLevel = strings.ToLower(v.GetString(KeyLogLevel))
	c.HTTPTimeout = v.GetDuration(KeyHTTPTimeout)
	c.SyncInterval = v.GetDuration(KeySyncInterval)
	c.MetricsEnabled = v.GetBool(KeyMetricsEnabled)

	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}

	return c.Validate()
}

// Validate checks the format of the values that are set.
func (c *Config) Validate() error {
	vd := validate.Struct(c)
	if !vd.Validate() {
		return apperrors.Configf("config", "invalid configuration: %s", vd.Errors.Error())
	}
	return nil
}

// Require returns a ConfigError for the first key in keys whose value is empty.
func (c *Config) Require(keys ...string) error {
	for _, key := range keys {
		if c.value(key) == "" {
			return apperrors.Config(key)
		}
	}
	return nil
}

// HasStore reports whether a database connection string is configured.
func (c *Config) HasStore() bool {
	return c.StoreURI != ""
}

func (c *Config) value(key string) string {
	switch key {
	case KeyMongoURI, KeyDatabaseURL:
		return c.StoreURI
	case KeyGitHubUsername:
		return c.GitHubUsername
	case KeyLeetCodeUsername:
		return c.LeetCodeUsername
	case KeyGitHubToken:
		return c.GitHubToken
	case KeySyncToken:
		return c.SyncToken
	case KeyGeminiAPIKey:
		return c.GeminiAPIKey
	case KeyGeminiModel:
		return c.GeminiModel
	case KeySiteURL:
		return c.SiteURL
	case KeyDeployHookURL:
		return c.DeployHookURL
	case KeyLeetCodeAPIURL:
		return c.LeetCodeAPIURL
	case KeyPort:
		return c.Port
	case KeyLogLevel:
		return c.LogLevel
	}
	return ""
}
