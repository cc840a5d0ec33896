package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output format %q (want auto|text|markdown|json)", c.OutputFormat)
	}

	if c.IsProduction() && c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required in the production environment\nHint: set GOADMIN_API_BASE_URL or api.base_url in goadmin.yaml")
	}

	base := c.ResolveBaseURL()
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url %q", base)
	}

	if c.API.Timeout < 0 || (c.API.Timeout > 0 && c.API.Timeout < time.Millisecond) {
		return fmt.Errorf("invalid api.timeout %s", c.API.Timeout)
	}

	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("invalid ui.port %d", c.UI.Port)
	}
	return nil
}
