package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pinecrest/jamfctl/internal/jamf"
)

type Config struct {
	Server      Server      `mapstructure:"server"`
	Credentials Credentials `mapstructure:"credentials"`
	Search      Search      `mapstructure:"search"`
	Export      Export      `mapstructure:"export"`
}

type Server struct {
	URL        string        `mapstructure:"url"`
	APIRoot    string        `mapstructure:"api_root"`
	ProAPIRoot string        `mapstructure:"pro_api_root"`
	Insecure   bool          `mapstructure:"insecure"`
	CAFile     string        `mapstructure:"ca_file"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Credentials struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	APIToken string `mapstructure:"api_token"`
}

type Search struct {
	DefaultField string `mapstructure:"default_field"`
}

type Export struct {
	Format  string `mapstructure:"format"`
	Output  string `mapstructure:"output"`
	Details bool   `mapstructure:"details"`
}

// defaults is registered with viper so that every key is known to it;
// AutomaticEnv only overrides keys viper knows about when unmarshaling.
var defaults = map[string]any{
	"server.url":            "",
	"server.api_root":       jamf.DefaultAPIRoot,
	"server.pro_api_root":   jamf.DefaultProAPIRoot,
	"server.insecure":       false,
	"server.ca_file":        "",
	"server.timeout":        jamf.DefaultTimeout,
	"credentials.username":  "",
	"credentials.password":  "",
	"credentials.api_token": "",
	"search.default_field":  "serial",
	"export.format":         "csv",
	"export.output":         "",
	"export.details":        false,
}

// SetDefaults registers every config key and its default with viper.
func SetDefaults() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// BindEnv makes JAMF_-prefixed environment variables override config keys,
// e.g. JAMF_SERVER_URL for server.url. The password and API token also
// accept the shorter JAMF_PASSWORD and JAMF_API_TOKEN.
func BindEnv() {
	viper.SetEnvPrefix("JAMF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("credentials.password", "JAMF_CREDENTIALS_PASSWORD", "JAMF_PASSWORD")
	_ = viper.BindEnv("credentials.api_token", "JAMF_CREDENTIALS_API_TOKEN", "JAMF_API_TOKEN")
}

func Load() (*Config, error) {
	SetDefaults()
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasPassword reports whether a password is configured for the username.
func (c *Config) HasPassword() bool {
	return c.Credentials.Password != ""
}

// SessionOptions maps the config onto jamf session options.
func (c *Config) SessionOptions(logger *zap.Logger) jamf.Options {
	return jamf.Options{
		ServerURL:  c.Server.URL,
		APIRoot:    c.Server.APIRoot,
		ProAPIRoot: c.Server.ProAPIRoot,
		Credentials: jamf.Credentials{
			Username: c.Credentials.Username,
			Password: c.Credentials.Password,
			APIToken: c.Credentials.APIToken,
		},
		Insecure: c.Server.Insecure,
		CAFile:   c.Server.CAFile,
		Timeout:  c.Server.Timeout,
		Logger:   logger,
	}
}
