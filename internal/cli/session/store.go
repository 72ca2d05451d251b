// Package session caches the tokens issued by a login so later invocations can reuse them.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fzdarsky/cognito-srp/internal/config"
	"github.com/fzdarsky/cognito-srp/pkg/protocol"
)

const tokenFileMode = 0o600 // Owner read/write only

// Key identifies one cached login.
type Key struct {
	PoolID   string
	ClientID string
	Username string
}

// Tokens is the cached form of an AuthenticationResult.
type Tokens struct {
	AccessToken  string    `yaml:"access_token"`
	IDToken      string    `yaml:"id_token"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	TokenType    string    `yaml:"token_type,omitempty"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

// NewTokens stamps result with its absolute expiry.
func NewTokens(result *protocol.AuthenticationResult, now time.Time) *Tokens {
	return &Tokens{
		AccessToken:  result.AccessToken,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		TokenType:    result.TokenType,
		ExpiresAt:    now.Add(time.Duration(result.ExpiresIn) * time.Second).UTC(),
	}
}

// Expired reports whether the access token is no longer valid at now.
func (t *Tokens) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Store manages token files in the OS cache directory.
type Store struct {
	dir string
}

// NewStore creates a store in the user cache directory.
func NewStore() (*Store, error) {
	cacheDir, err := config.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(cacheDir)
}

// NewStoreAt creates a store rooted at dir.
func NewStoreAt(dir string) (*Store, error) {
	if err := config.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Save writes tokens for key with 0600 permissions.
func (s *Store) Save(key Key, tokens *Tokens) error {
	data, err := yaml.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}

	if err := os.WriteFile(s.tokenFilename(key), data, tokenFileMode); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// Load returns the tokens cached for key, or nil when there are none.
func (s *Store) Load(key Key) (*Tokens, error) {
	data, err := os.ReadFile(s.tokenFilename(key)) // #nosec G304 - filename is generated from a hash of key
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}

	var tokens Tokens
	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse cached tokens: %w", err)
	}
	return &tokens, nil
}

// Delete removes the tokens cached for key. Missing files are not an error.
func (s *Store) Delete(key Key) error {
	if err := os.Remove(s.tokenFilename(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}

// tokenFilename is tokens-<first 8 bytes of SHA-256(pool|client|user) as hex>.yaml.
func (s *Store) tokenFilename(key Key) string {
	hash := sha256.Sum256([]byte(key.PoolID + "|" + key.ClientID + "|" + key.Username))
	return filepath.Join(s.dir, fmt.Sprintf("tokens-%x.yaml", hash[:8]))
}
