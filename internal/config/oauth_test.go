package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOAuthClient() *OAuthClientConfig {
	return &OAuthClientConfig{
		Installed: OAuthInstalled{
			ClientID:                "test-client-id.apps.googleusercontent.com",
			ProjectID:               "test-project",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "test-secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestValidateOAuthClient_ValidConfig(t *testing.T) {
	assert.NoError(t, ValidateOAuthClient(validOAuthClient()))
}

func TestValidateOAuthClient_Invalid(t *testing.T) {
	missingID := validOAuthClient()
	missingID.Installed.ClientID = ""

	badURL := validOAuthClient()
	badURL.Installed.AuthURI = "not-a-valid-url"

	noRedirects := validOAuthClient()
	noRedirects.Installed.RedirectURIs = nil

	badCertURL := validOAuthClient()
	badCertURL.Installed.AuthProviderX509CertURL = "certs"

	for name, cfg := range map[string]*OAuthClientConfig{
		"missing client id": missingID,
		"invalid url":       badURL,
		"no redirect uris":  noRedirects,
		"invalid cert url":  badCertURL,
	} {
		t.Run(name, func(t *testing.T) {
			err := ValidateOAuthClient(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "oauthClient.test.json")

	content := `{
  "installed": {
    "client_id": "id.apps.googleusercontent.com",
    "project_id": "lead-allocator",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "secret",
    "redirect_uris": ["http://localhost"]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "lead-allocator", cfg.Installed.ProjectID)
	assert.Equal(t, []string{"http://localhost"}, cfg.Installed.RedirectURIs)
}

func TestLoadOAuthClientFromPath_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := LoadOAuthClientFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse oauth client file")
}

func TestValidateOAuthClient_OptionalConsoleFields(t *testing.T) {
	cfg := validOAuthClient()
	cfg.Installed.ProjectID = ""
	cfg.Installed.AuthProviderX509CertURL = ""
	assert.NoError(t, ValidateOAuthClient(cfg))
}

func TestLoadOAuthClient_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	data := `{"installed":{"client_id":"id","auth_uri":"https://a.example.com/auth","token_uri":"https://a.example.com/token","client_secret":"s","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))
	t.Setenv(OAuthClientPathEnv, path)

	cfg, err := LoadOAuthClient("prod")
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.Installed.ClientID)
}

func TestOAuthFileName(t *testing.T) {
	assert.Equal(t, "oauthClient.json", oauthFileName(""))
	assert.Equal(t, "oauthClient.test.json", oauthFileName("test"))
}
