package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the settings that would otherwise fail late at startup
func (c *Config) Validate() error {
	var problems []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	for _, origin := range c.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			problems = append(problems, fmt.Errorf("server.corsOrigins entry %q needs an http or https scheme", origin))
		}
	}

	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
		if c.Database.Database == "" {
			problems = append(problems, errors.New("database.database is required for sqlite"))
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Username == "" || c.Database.Database == "" {
			problems = append(problems, errors.New("database host, username and database are required for postgres"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	switch strings.ToLower(c.Logger.Format) {
	case "json", "console":
	default:
		problems = append(problems, fmt.Errorf("unsupported logger.format %q", c.Logger.Format))
	}

	if c.Envelope.PasswordLength <= 0 {
		problems = append(problems, errors.New("envelope.passwordLength must be positive"))
	}
	if c.Envelope.Lifetime <= 0 {
		problems = append(problems, errors.New("envelope.lifetime must be positive"))
	}

	switch c.Auth.CredentialMode {
	case "plaintext", "bcrypt":
	default:
		problems = append(problems, fmt.Errorf("unsupported auth.credentialMode %q", c.Auth.CredentialMode))
	}
	if c.Auth.RequireToken && c.Auth.TokenSecret == "" {
		problems = append(problems, errors.New("auth.tokenSecret is required when auth.requireToken is set"))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}
	return nil
}

// IsProduction reports whether the production profile is active
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
