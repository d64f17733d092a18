// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dagaz/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Docs  DocsConfig        `yaml:"docs"`
	Cache CacheConfig       `yaml:"cache"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DocsConfig describes the documentation repository and how to check it.
type DocsConfig struct {
	// Root is the repository directory holding the Markdown tree.
	Root string `yaml:"root"`
	// Ignore lists glob patterns excluded from scanning.
	Ignore []string `yaml:"ignore"`
	// Roots are the reachability roots for the orphan check.
	Roots []string `yaml:"roots"`
	// DefaultCadence is the review cadence for documents that declare none
	// ("90d", "12w", or a Go duration). Empty disables the default.
	DefaultCadence string `yaml:"default_cadence"`
	// Categories maps path segments to category names.
	Categories map[string]string `yaml:"categories"`
	// FallbackCategory is assigned when no inference rule matches.
	FallbackCategory string `yaml:"fallback_category"`
	// ResolveIdentifiers enables resolving bare references against titles
	// and filename slugs.
	ResolveIdentifiers bool `yaml:"resolve_identifiers"`
	// ChangelogDays is the window for the generated changelog.
	ChangelogDays int `yaml:"changelog_days"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	); err != nil {
		return err
	}
	if c.ChangelogDays < 0 {
		return fmt.Errorf("docs: changelog_days must not be negative")
	}
	if _, err := c.Cadence(); err != nil {
		return fmt.Errorf("docs: default_cadence: %w", err)
	}
	return nil
}

// Cadence parses DefaultCadence; zero when unset.
func (c *DocsConfig) Cadence() (time.Duration, error) {
	if c.DefaultCadence == "" {
		return 0, nil
	}
	return parser.ParseCadence(c.DefaultCadence)
}

// Rules builds the category inference rules from configuration.
func (c *DocsConfig) Rules() parser.Rules {
	rules := parser.DefaultRules()
	if len(c.Categories) > 0 {
		rules.PathMap = c.Categories
	}
	if c.FallbackCategory != "" {
		rules.Fallback = c.FallbackCategory
	}
	return rules
}

// CacheConfig holds the scan cache configuration. An empty path disables
// the cache.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Docs: DocsConfig{
			Root:           "./docs",
			Roots:          []string{"index.md"},
			DefaultCadence: "180d",
			ChangelogDays:  30,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
