package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinecrest/jamfctl/internal/config"
	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/ui"
	"github.com/pinecrest/jamfctl/internal/wizard"
)

// promptPassword is replaced in tests.
var promptPassword = wizard.PromptPassword

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("Failed to load config", err.Error(), "run 'jamfctl init' to create a config file")
		return nil, err
	}
	return cfg, nil
}

// connect authenticates with the configured credentials, prompting for the
// password when only a username is configured.
func connect(ctx context.Context, cfg *config.Config) (*jamf.Session, error) {
	if cfg.Credentials.APIToken == "" && cfg.Credentials.Username != "" && !cfg.HasPassword() {
		password, err := promptPassword(cfg.Credentials.Username)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		cfg.Credentials.Password = password
	}

	sess, err := jamf.Authenticate(ctx, cfg.SessionOptions(logger))
	if err != nil {
		reportError(err)
		return nil, err
	}
	return sess, nil
}

// withSession runs fn with an authenticated session and invalidates the
// token afterwards, whether or not fn succeeded.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, devices *jamf.DeviceService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	sess, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("invalidating token", zap.Error(cerr))
		}
	}()

	if err := fn(ctx, jamf.NewDeviceService(sess)); err != nil {
		reportError(err)
		return err
	}
	return nil
}

// reportError prints err with a title and hint chosen by its type.
func reportError(err error) {
	title, hint := describeError(err)
	ui.PrintError(title, err.Error(), hint)
}

func describeError(err error) (title, hint string) {
	var (
		authErr    *jamf.AuthError
		notFound   *jamf.NotFoundError
		validation *jamf.ValidationError
		schemaErr  *jamf.SchemaError
		apiErr     *jamf.APIError
	)
	switch {
	case errors.Is(err, jamf.ErrNoCredentials):
		return "No credentials", "set credentials.username and JAMF_PASSWORD, or JAMF_API_TOKEN"
	case errors.Is(err, jamf.ErrInvalidated):
		return "Session closed", "the token was invalidated; run the command again"
	case errors.As(err, &schemaErr):
		return "Unexpected response from JAMF", "the server version may not be supported; rerun with -v for details"
	case errors.As(err, &authErr):
		if authErr.StatusCode != 0 {
			return "Authentication failed", "check the username and password, and that the account has API access"
		}
		return "Could not reach JAMF", "check server.url and your network connection"
	case errors.As(err, &notFound):
		switch notFound.Kind {
		case "":
			return "Device not found", "try 'jamfctl devices search' with a different field"
		case "building", "department", "site":
			return "Unknown " + notFound.Kind, "run 'jamfctl locations' to list valid names"
		}
		return "Unknown " + notFound.Kind, "check the id in JAMF"
	case errors.As(err, &validation):
		return "Rejected", ""
	case errors.As(err, &apiErr):
		return fmt.Sprintf("JAMF returned %d", apiErr.StatusCode), "rerun with -v to see the request"
	}
	return "Command failed", ""
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid device id %q", s)
	}
	return id, nil
}
