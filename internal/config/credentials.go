package config

import (
	"os"

	json "github.com/goccy/go-json"
)

// Credentials caches the client's login state. Absence of the file (or an
// empty token) means guest mode.
type Credentials struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	Email     string `json:"email,omitempty"`
}

// LoadCredentials reads the cached credentials. A missing file is not an
// error; it returns empty credentials.
func LoadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(CredentialsPath())
	if os.IsNotExist(err) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveCredentials persists the client login state.
func SaveCredentials(creds *Credentials) error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(CredentialsPath(), data, 0o600)
}

// ClearCredentials removes the cached token, returning the client to
// guest mode.
func ClearCredentials() error {
	err := os.Remove(CredentialsPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
