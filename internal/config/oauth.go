package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// OAuthClientPathEnv overrides the search for the OAuth client file
const OAuthClientPathEnv = "LEAD_ALLOCATOR_OAUTH_CLIENT"

// OAuthClientConfig is a Google "installed application" client secret file as
// downloaded from the cloud console
type OAuthClientConfig struct {
	Installed OAuthInstalled `json:"installed" validate:"required"`
}

// OAuthInstalled holds the fields the desktop flow needs. The console adds
// others (project_id, cert URLs) which are kept only so the file round-trips.
type OAuthInstalled struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id,omitempty"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url,omitempty" validate:"omitempty,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

func oauthFileName(env string) string {
	if env == "" {
		return "oauthClient.json"
	}
	return "oauthClient." + env + ".json"
}

// LoadOAuthClient loads the OAuth client for env. The path in
// LEAD_ALLOCATOR_OAUTH_CLIENT wins over oauthClient[.env].json.
func LoadOAuthClient(env string) (*OAuthClientConfig, error) {
	path := os.Getenv(OAuthClientPathEnv)
	if path == "" {
		var err error
		if path, err = locate(oauthFileName(env)); err != nil {
			return nil, fmt.Errorf("failed to find oauth client file: %w", err)
		}
	}

	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads and validates an OAuth client file
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var cfg OAuthClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file %s: %w", path, err)
	}

	if err := ValidateOAuthClient(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}
	return nil
}
