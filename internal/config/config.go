package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
)

// ErrMissingCredential is returned when a required key in [bitcasa] is empty.
var ErrMissingCredential = errors.New("missing credential")

// Proxy modes accepted in the [proxy] section
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeBasic  = "basic"
	ProxyModeNTLM   = "ntlm"
)

// Config holds the connection settings read from the [bitcasa] and [proxy]
// sections of the config file, plus the access token once known.
type Config struct {
	APIBaseURL  string
	ClientID    string
	Secret      string
	RedirectURL string
	Username    string
	Password    string
	AccessToken string

	// Proxy settings
	ProxyMode     string
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string // comma-separated bypass list
	ProxyWarmup   bool
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		APIBaseURL: constants.DefaultAPIBaseURL,
		ProxyMode:  ProxyModeNone,
	}
}

// FromStore reads the credential and proxy sections out of a loaded store.
// BITCASA_API_URL overrides api-url.
func FromStore(s SectionStore) (*Config, error) {
	cfg := NewConfig()

	creds, ok := s.ReadSection(constants.CredentialsSection)
	if !ok {
		return nil, fmt.Errorf("%w: no [%s] section in config", ErrMissingCredential, constants.CredentialsSection)
	}
	if v := strings.TrimSpace(creds["api-url"]); v != "" {
		cfg.APIBaseURL = v
	}
	cfg.ClientID = strings.TrimSpace(creds["client-id"])
	cfg.Secret = strings.TrimSpace(creds["secret"])
	cfg.RedirectURL = strings.TrimSpace(creds["redirect-url"])
	cfg.Username = creds["username"]
	cfg.Password = creds["password"]

	if proxy, ok := s.ReadSection(constants.ProxySection); ok {
		if v := strings.TrimSpace(proxy["mode"]); v != "" {
			cfg.ProxyMode = strings.ToLower(v)
		}
		cfg.ProxyHost = strings.TrimSpace(proxy["host"])
		if v := strings.TrimSpace(proxy["port"]); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy port %q: %w", v, err)
			}
			cfg.ProxyPort = port
		}
		cfg.ProxyUser = proxy["user"]
		cfg.ProxyPassword = proxy["password"]
		cfg.NoProxy = proxy["no-proxy"]
		cfg.ProxyWarmup = strings.EqualFold(strings.TrimSpace(proxy["warmup"]), "true")
	}

	if v := os.Getenv("BITCASA_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// Validate checks the settings every API call needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("%w: api-url", ErrMissingCredential)
	}
	switch c.ProxyMode {
	case ProxyModeNone, ProxyModeSystem:
	case ProxyModeBasic, ProxyModeNTLM:
		if c.ProxyHost == "" || c.ProxyPort == 0 {
			return fmt.Errorf("proxy mode %s requires host and port", c.ProxyMode)
		}
	default:
		return fmt.Errorf("unknown proxy mode: %s", c.ProxyMode)
	}
	return nil
}

// ValidateForLogin checks the settings needed to obtain a new access token.
func (c *Config) ValidateForLogin() error {
	if err := c.Validate(); err != nil {
		return err
	}
	required := []struct{ key, value string }{
		{"client-id", c.ClientID},
		{"secret", c.Secret},
		{"redirect-url", c.RedirectURL},
		{"username", c.Username},
		{"password", c.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingCredential, r.key)
		}
	}
	return nil
}
