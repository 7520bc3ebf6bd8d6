package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"

	"chronicle/pkg/models"
)

// keyringService is the service name under which tokens are stored.
const keyringService = "chronicle"

// EnvPassphrase unlocks the encrypted token file fallback.
const EnvPassphrase = "CHRONICLE_PASSPHRASE"

// tokenKey identifies a remote's token in the keyring and token file.
func tokenKey(remote models.Remote) string {
	return fmt.Sprintf("%s:%s/%s", remote.Provider, remote.Owner, remote.Repo)
}

// ResolveToken returns the API token for a remote, trying in order: the
// literal config value, the configured environment variable, the OS
// keyring, and the encrypted token file. An empty result is not an error;
// public repositories work without a token.
func ResolveToken(remote models.Remote) string {
	if remote.Token != "" {
		return remote.Token
	}
	if remote.TokenEnv != "" {
		if token := os.Getenv(remote.TokenEnv); token != "" {
			return token
		}
	}
	if token, err := keyring.Get(keyringService, tokenKey(remote)); err == nil && token != "" {
		return token
	}
	if token, err := tokenFromFile(remote); err == nil {
		return token
	}
	return ""
}

// StoreToken saves a token in the OS keyring, falling back to the encrypted
// token file when no keyring backend is available.
func StoreToken(remote models.Remote, token string) error {
	if err := keyring.Set(keyringService, tokenKey(remote), token); err == nil {
		return nil
	}
	return tokenToFile(remote, token)
}

// DeleteToken removes a stored token from both backends.
func DeleteToken(remote models.Remote) error {
	keyringErr := keyring.Delete(keyringService, tokenKey(remote))
	fileErr := os.Remove(tokenFilePath(remote))
	if keyringErr == nil || fileErr == nil {
		return nil
	}
	return fmt.Errorf("no stored token for %s", tokenKey(remote))
}

func tokenFilePath(remote models.Remote) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	name := fmt.Sprintf("%s_%s_%s.token", remote.Provider, remote.Owner, remote.Repo)
	return filepath.Join(home, ".chronicle", "tokens", name)
}

func tokenFromFile(remote models.Remote) (string, error) {
	passphrase := os.Getenv(EnvPassphrase)
	if passphrase == "" {
		return "", fmt.Errorf("%s is not set", EnvPassphrase)
	}
	data, err := os.ReadFile(tokenFilePath(remote))
	if err != nil {
		return "", err
	}
	return Decrypt(string(data), passphrase)
}

func tokenToFile(remote models.Remote, token string) error {
	passphrase := os.Getenv(EnvPassphrase)
	if passphrase == "" {
		return fmt.Errorf("keyring unavailable and %s is not set", EnvPassphrase)
	}
	encrypted, err := Encrypt(token, passphrase)
	if err != nil {
		return err
	}
	path := tokenFilePath(remote)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	return os.WriteFile(path, []byte(encrypted), 0600)
}
