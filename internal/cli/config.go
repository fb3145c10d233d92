package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL      string
	CookieFile     string
	CSRFCookieName string
	CSRFHeaderName string
	Output         string
	Verbose        bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      getEnvOrDefault("AGAME_SERVER", "http://localhost:8080"),
		CookieFile:     getEnvOrDefault("AGAME_COOKIE_FILE", defaultCookieFile()),
		CSRFCookieName: "agame_csrf",
		CSRFHeaderName: "X-CSRFToken",
		Output:         "text",
		Verbose:        false,
	}
}

// LoadCookies reads the saved cookies. A missing file yields no cookies.
func (c *Config) LoadCookies() (map[string]string, error) {
	cookies := map[string]string{}

	data, err := os.ReadFile(c.CookieFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cookies, nil // No cookie file is fine
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, err
	}
	return cookies, nil
}

// SaveCookies writes cookies to the cookie file, readable only by the owner
func (c *Config) SaveCookies(cookies map[string]string) error {
	dir := filepath.Dir(c.CookieFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.CookieFile, data, 0600)
}

func defaultCookieFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agame/cookies.json"
	}
	return filepath.Join(home, ".agame", "cookies.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
