package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validOAuthClient = `{
  "installed": {
    "client_id": "ads-client.apps.googleusercontent.com",
    "project_id": "ad-distributor",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost"]
  }
}`

func writeOAuthClient(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oauthClient.test.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadOAuthClientFromPath_Valid(t *testing.T) {
	cfg, err := LoadOAuthClientFromPath(writeOAuthClient(t, validOAuthClient))
	require.NoError(t, err)

	assert.Equal(t, "ads-client.apps.googleusercontent.com", cfg.Installed.ClientID)
	assert.Equal(t, "ad-distributor", cfg.Installed.ProjectID)
	assert.Equal(t, "test-secret", cfg.Installed.ClientSecret)
	assert.Equal(t, []string{"http://localhost"}, cfg.Installed.RedirectURIs)
}

func TestLoadOAuthClientFromPath_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		contents    string
		errContains string
	}{
		{
			name:        "malformed json",
			contents:    `{"installed": {"client_id": "x" "project_id": "y"}}`,
			errContains: "failed to parse oauth client file",
		},
		{
			name: "missing secret",
			contents: `{"installed": {
  "client_id": "x", "project_id": "y",
  "auth_uri": "https://accounts.google.com/o/oauth2/auth",
  "token_uri": "https://oauth2.googleapis.com/token",
  "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
  "redirect_uris": ["http://localhost"]}}`,
			errContains: "validation failed",
		},
		{
			name: "no redirect uris",
			contents: `{"installed": {
  "client_id": "x", "project_id": "y", "client_secret": "z",
  "auth_uri": "https://accounts.google.com/o/oauth2/auth",
  "token_uri": "https://oauth2.googleapis.com/token",
  "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
  "redirect_uris": []}}`,
			errContains: "validation failed",
		},
		{
			name: "auth uri is not a url",
			contents: `{"installed": {
  "client_id": "x", "project_id": "y", "client_secret": "z",
  "auth_uri": "not-a-valid-url",
  "token_uri": "https://oauth2.googleapis.com/token",
  "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
  "redirect_uris": ["http://localhost"]}}`,
			errContains: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOAuthClientFromPath(writeOAuthClient(t, tt.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadOAuthClientFromPath_FileNotFound(t *testing.T) {
	_, err := LoadOAuthClientFromPath("/nonexistent/oauthClient.json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read oauth client file")
}

func TestFindInSearchPath_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("oauthClient.local.json", []byte(validOAuthClient), 0644))

	cfg, err := LoadOAuthClientWithEnv("local")
	require.NoError(t, err)
	assert.Equal(t, "ad-distributor", cfg.Installed.ProjectID)
}
