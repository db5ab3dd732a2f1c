// Package credentials loads the fixed set of session tokens the crawl
// injects as cookies. Values come from environment variables first, then
// from the OS keyring (with a plain-file fallback for CI and headless
// environments where no keyring daemon is available).
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"

	"github.com/bbachinco/yeoshin/internal/config"
)

const (
	// KeyringService is the service name for keyring storage.
	KeyringService = "yeoshin-cli"
	// FallbackFile is the file-based token store relative to $HOME.
	FallbackFile = ".yeoshin/tokens.json"
)

// ErrAllMissing is returned when not a single credential token has a
// value. Authentication cannot even be attempted in that case.
var ErrAllMissing = errors.New("no credential tokens configured")

// Set maps token names to secret values. Only populated tokens appear.
type Set map[string]string

var fileFallbackCache *bool

func useFileFallback() bool {
	if fileFallbackCache != nil {
		return *fileFallbackCache
	}
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileFallbackCache = &result
		return true
	}
	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := err != nil
	fileFallbackCache = &result
	if !result {
		keyring.Delete(KeyringService, testKey)
	}
	return result
}

func fallbackPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(home, FallbackFile)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", err
	}
	return path, nil
}

func readFallback() (map[string]string, error) {
	path, err := fallbackPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	tokens := map[string]string{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("corrupt token file %s: %w", path, err)
	}
	return tokens, nil
}

func writeFallback(tokens map[string]string) error {
	path, err := fallbackPath()
	if err != nil {
		return err
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Load resolves every known token name and returns the populated set plus
// the names that had no value anywhere. An entirely empty set is fatal.
func Load() (Set, []string, error) {
	set := Set{}
	var missing []string

	for _, name := range config.CookieNames {
		if v := lookup(name); v != "" {
			set[name] = v
		} else {
			missing = append(missing, name)
		}
	}

	if len(set) == 0 {
		return nil, missing, ErrAllMissing
	}
	for _, name := range missing {
		log.Warn().Str("token", name).Msg("Credential token has no value")
	}
	return set, missing, nil
}

// lookup resolves one token: environment first, then keyring/file store.
func lookup(name string) string {
	envName := config.CookieEnvVars[name]
	if envName == "" {
		envName = name
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}

	if useFileFallback() {
		tokens, err := readFallback()
		if err != nil {
			log.Debug().Err(err).Str("token", name).Msg("Token file unreadable")
			return ""
		}
		return tokens[name]
	}

	v, err := keyring.Get(KeyringService, name)
	if err != nil {
		return ""
	}
	return v
}

// Store persists a token value to the keyring or file fallback.
func Store(name, value string) error {
	if !known(name) {
		return fmt.Errorf("unknown credential token %q", name)
	}
	if useFileFallback() {
		tokens, err := readFallback()
		if err != nil {
			return err
		}
		tokens[name] = value
		return writeFallback(tokens)
	}
	if err := keyring.Set(KeyringService, name, value); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Delete removes a stored token.
func Delete(name string) error {
	if !known(name) {
		return fmt.Errorf("unknown credential token %q", name)
	}
	if useFileFallback() {
		tokens, err := readFallback()
		if err != nil {
			return err
		}
		delete(tokens, name)
		return writeFallback(tokens)
	}
	err := keyring.Delete(KeyringService, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

func known(name string) bool {
	for _, n := range config.CookieNames {
		if n == name {
			return true
		}
	}
	return false
}
