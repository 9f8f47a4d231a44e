package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"

	"github.com/pinecrest/jamfctl/internal/jamf"
)

// ValidationError reports a config problem with a suggested fix.
type ValidationError struct {
	Field      string // dotted path, e.g. "server.url"
	Message    string // what's wrong
	Suggestion string // how to fix it
}

// Validate checks the config. exportFormats lists the formats the export
// command supports; an empty list skips that check.
func (c *Config) Validate(exportFormats []string) []ValidationError {
	var errs []ValidationError

	if c.Server.URL == "" {
		errs = append(errs, ValidationError{
			Field:      "server.url",
			Message:    "url is required",
			Suggestion: "set the URL of your JAMF server, e.g. https://jamf.example.org:8443, or export JAMF_SERVER_URL",
		})
	} else if u, err := url.Parse(c.Server.URL); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:      "server.url",
			Message:    fmt.Sprintf("invalid url %q", c.Server.URL),
			Suggestion: "include the scheme and host, e.g. https://jamf.example.org:8443",
		})
	}

	if c.Server.CAFile != "" {
		if _, err := os.Stat(c.Server.CAFile); err != nil {
			errs = append(errs, ValidationError{
				Field:      "server.ca_file",
				Message:    fmt.Sprintf("file not found: %s", c.Server.CAFile),
				Suggestion: "point ca_file at a PEM bundle or remove it to use the system roots",
			})
		}
		if c.Server.Insecure {
			errs = append(errs, ValidationError{
				Field:      "server.insecure",
				Message:    "insecure disables verification, so ca_file is ignored",
				Suggestion: "set insecure: false when using ca_file",
			})
		}
	}

	if c.Server.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:      "server.timeout",
			Message:    "timeout must not be negative",
			Suggestion: "use a duration such as 30s",
		})
	}

	if c.Credentials.Username == "" && c.Credentials.APIToken == "" {
		errs = append(errs, ValidationError{
			Field:      "credentials.username",
			Message:    "username or api_token is required",
			Suggestion: "set credentials.username and export JAMF_CREDENTIALS_PASSWORD, or set credentials.api_token",
		})
	}

	if c.Search.DefaultField != "" {
		if _, err := jamf.ParseSearchField(c.Search.DefaultField); err != nil {
			errs = append(errs, ValidationError{
				Field:      "search.default_field",
				Message:    fmt.Sprintf("unknown search field %q", c.Search.DefaultField),
				Suggestion: "use one of serial, name, udid, asset_tag",
			})
		}
	}

	if len(exportFormats) > 0 && c.Export.Format != "" && !slices.Contains(exportFormats, c.Export.Format) {
		errs = append(errs, ValidationError{
			Field:      "export.format",
			Message:    fmt.Sprintf("unknown export format %q", c.Export.Format),
			Suggestion: fmt.Sprintf("use one of %v", exportFormats),
		})
	}

	return errs
}
