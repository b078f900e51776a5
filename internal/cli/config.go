package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for every auctionctl environment variable
const EnvPrefix = "AUCTIONCTL"

// Config holds CLI configuration. Flags override the environment.
type Config struct {
	ServerURL string `envconfig:"SERVER" default:"http://localhost:8080"`
	Token     string `envconfig:"TOKEN"`
	TokenFile string `envconfig:"TOKEN_FILE"`
	Output    string `envconfig:"OUTPUT" default:"text"`
	Verbose   bool   `envconfig:"VERBOSE"`
}

// DefaultConfig reads AUCTIONCTL_* variables over the built-in defaults
func DefaultConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, err
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile()
	}
	return &c, nil
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not logged in yet
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// ClearToken forgets the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".auctionctl", "token")
	}
	return filepath.Join(home, ".auctionctl", "token")
}
