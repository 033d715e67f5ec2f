package cli

import (
	"context"
	"fmt"

	"github.com/bitcasaclient/bitcasa-cli/internal/api"
	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	ihttp "github.com/bitcasaclient/bitcasa-cli/internal/http"
)

// configPath returns the --config value or the default location.
func configPath() string {
	if cfgFile != "" {
		return config.ExpandPath(cfgFile)
	}
	return config.DefaultConfigPath()
}

// tokenPath returns the --token-file value or the default location.
func tokenPath() string {
	if tokenFile != "" {
		return config.ExpandPath(tokenFile)
	}
	return config.DefaultTokenPath()
}

// loadSettings reads the config file, which must exist, and resolves the
// client settings from it.
func loadSettings() (*config.Store, *config.Config, error) {
	store, err := config.LoadStore(configPath())
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.FromStore(store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", store.Path(), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration in %s: %w", store.Path(), err)
	}

	if ihttp.NeedsProxyPassword(cfg) {
		password, err := promptProxyPassword(cfg.ProxyUser)
		if err != nil {
			return nil, nil, err
		}
		cfg.ProxyPassword = password
	}
	return store, cfg, nil
}

// getAPIClient loads configuration and creates an API client carrying an
// access token, logging in first if no token has been saved yet.
func getAPIClient(ctx context.Context) (*api.Client, *config.Store, error) {
	store, cfg, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	path := tokenPath()
	token, err := config.ReadTokenFile(path)
	if err != nil {
		return nil, nil, err
	}
	if token != "" {
		GetLogger().Debugf("Found %s, using...", path)
		client.SetAccessToken(token)
		return client, store, nil
	}

	if err := login(ctx, client, cfg, path); err != nil {
		return nil, nil, err
	}
	return client, store, nil
}

// login runs the OAuth login with the configured credentials and saves the
// resulting token to path.
func login(ctx context.Context, client *api.Client, cfg *config.Config, path string) error {
	if err := cfg.ValidateForLogin(); err != nil {
		return err
	}

	token, err := client.Login(ctx, cfg.Username, cfg.Password, cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	GetLogger().Debugf("Writing: %s", path)
	if err := config.WriteTokenFile(path, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
