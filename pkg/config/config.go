// Package config loads the Vaulth JSON configuration file and the small set
// of environment overrides layered on top of it.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// DefaultPath is used when no config path is given on the command line or
// through VAULTH_CONFIG.
const DefaultPath = "vaulth.json"

// ProviderNames is the closed set of OAuth2 providers Vaulth knows about.
// Provider names are never taken from request input; everything keyed by a
// provider name must come from this list.
var ProviderNames = []string{"google", "microsoft", "facebook", "twitter", "github", "discord"}

type Config struct {
	Port        uint16 `mapstructure:"port"`
	DatabaseURL string `mapstructure:"databaseUrl"`
	UserAgent   string `mapstructure:"userAgent"`
	LogLevel    string `mapstructure:"logLevel"`
	RootURI     string `mapstructure:"rootUri"`

	Token TokenConfig `mapstructure:"token"`
	TLS   *TLSConfig  `mapstructure:"tls"`
	Hash  HashConfig  `mapstructure:"hash"`

	Clients map[string]ClientConfig `mapstructure:"clients"`

	Google    *OAuth2Config `mapstructure:"google"`
	Microsoft *OAuth2Config `mapstructure:"microsoft"`
	Facebook  *OAuth2Config `mapstructure:"facebook"`
	Twitter   *OAuth2Config `mapstructure:"twitter"`
	GitHub    *OAuth2Config `mapstructure:"github"`
	Discord   *OAuth2Config `mapstructure:"discord"`
}

type TokenConfig struct {
	PublicKey  string `mapstructure:"publicKey"`
	PrivateKey string `mapstructure:"privateKey"`
	// Duration is the token lifetime in minutes. It is echoed verbatim as
	// expires_in by the token endpoint.
	Duration int64 `mapstructure:"duration"`
}

type TLSConfig struct {
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type HashConfig struct {
	HashLen  *uint32 `mapstructure:"hashLen"`
	SaltLen  *uint32 `mapstructure:"saltLen"`
	Lanes    *uint8  `mapstructure:"lanes"`
	MemCost  *uint32 `mapstructure:"memCost"`
	TimeCost *uint32 `mapstructure:"timeCost"`
	Secret   string  `mapstructure:"secret"`
}

type ClientConfig struct {
	ClientSecret string   `mapstructure:"clientSecret"`
	RedirectURLs []string `mapstructure:"redirectUrls"`
}

type OAuth2Config struct {
	ClientID     string `mapstructure:"clientId"`
	ClientSecret string `mapstructure:"clientSecret"`
}

// Env holds the environment overrides. VAULTH_LOG takes precedence over the
// logLevel config key; VAULTH_CONFIG is a fallback for the config path.
type Env struct {
	Log    string `envconfig:"LOG"`
	Config string `envconfig:"CONFIG"`
}

// ReadEnv loads a .env file when one is present and decodes the VAULTH_*
// variables.
func ReadEnv() (*Env, error) {
	_ = godotenv.Load()

	var env Env
	if err := envconfig.Process("vaulth", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &env, nil
}

// Read loads and validates the JSON config at path.
func Read(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []string

	if c.Port == 0 {
		errs = append(errs, "port is required")
	}
	if c.DatabaseURL == "" {
		errs = append(errs, "databaseUrl is required")
	}
	if c.RootURI == "" {
		errs = append(errs, "rootUri is required")
	}
	if c.Token.PublicKey == "" || c.Token.PrivateKey == "" {
		errs = append(errs, "token.publicKey and token.privateKey are required")
	}
	if c.Token.Duration <= 0 {
		errs = append(errs, "token.duration must be a positive number of minutes")
	}
	if c.TLS != nil && (c.TLS.Cert == "" || c.TLS.Key == "") {
		errs = append(errs, "tls requires both cert and key")
	}
	for id, client := range c.Clients {
		if client.ClientSecret == "" {
			errs = append(errs, fmt.Sprintf("client %q has no clientSecret", id))
		}
		if len(client.RedirectURLs) == 0 {
			errs = append(errs, fmt.Sprintf("client %q has no redirectUrls", id))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}

	c.RootURI = strings.TrimRight(c.RootURI, "/")
	return nil
}

// Provider returns the credentials configured for the named provider, or nil.
func (c *Config) Provider(name string) *OAuth2Config {
	switch name {
	case "google":
		return c.Google
	case "microsoft":
		return c.Microsoft
	case "facebook":
		return c.Facebook
	case "twitter":
		return c.Twitter
	case "github":
		return c.GitHub
	case "discord":
		return c.Discord
	default:
		return nil
	}
}

// ConfiguredProviders returns the names of all providers with credentials,
// in a stable order.
func (c *Config) ConfiguredProviders() []string {
	var names []string
	for _, name := range ProviderNames {
		if c.Provider(name) != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MaskSecret renders a secret for logs without exposing it.
func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
