package wizard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
)

// Run executes the interactive wizard and returns the user's answers.
// formats lists the export formats to offer.
func Run(detection DetectionResult, formats []string) (*WizardAnswers, error) {
	answers := &WizardAnswers{
		ServerURL:    detection.ServerURL,
		Username:     detection.Username,
		APIRoot:      "/uapi/",
		DefaultField: "serial",
		ExportFormat: "csv",
		APIToken:     detection.TokenSet,
	}

	var hints []string
	if detection.EnvFile != "" {
		hints = append(hints, fmt.Sprintf("Environment file found: %s", detection.EnvFile))
	}
	if detection.PasswordSet {
		hints = append(hints, "Password supplied by JAMF_PASSWORD")
	}
	if detection.TokenSet {
		hints = append(hints, "API token supplied by JAMF_API_TOKEN")
	}

	desc := "Address of your JAMF Pro server, including the port."
	if len(hints) > 0 {
		desc += "\n\nAuto-detected:\n  " + strings.Join(hints, "\n  ")
	}

	// Step 1: Server
	serverForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("JAMF server URL").
				Description(desc).
				Placeholder("https://jamf.example.org:8443").
				Validate(validateURL).
				Value(&answers.ServerURL),
			huh.NewInput().
				Title("API username").
				Description("The password is read from JAMF_PASSWORD or prompted for.").
				Value(&answers.Username),
			huh.NewConfirm().
				Title("Skip TLS certificate verification?").
				Description("Only for lab servers with self-signed certificates.").
				Value(&answers.Insecure),
		),
	)
	if err := serverForm.Run(); err != nil {
		return nil, err
	}

	// Step 2: Defaults
	formatOptions := make([]huh.Option[string], len(formats))
	for i, f := range formats {
		formatOptions[i] = huh.NewOption(strings.ToUpper(f), f)
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default search field").
				Options(
					huh.NewOption("Serial number", "serial"),
					huh.NewOption("Device name", "name"),
					huh.NewOption("UDID", "udid"),
					huh.NewOption("Asset tag", "asset_tag"),
				).
				Value(&answers.DefaultField),
			huh.NewSelect[string]().
				Title("Export format").
				Options(formatOptions...).
				Value(&answers.ExportFormat),
			huh.NewInput().
				Title("Export file (optional)").
				Description("Leave empty to name the file after the format, e.g. devices.csv").
				Value(&answers.ExportOutput),
			huh.NewConfirm().
				Title("Include detail fields in exports?").
				Description("Fetches every device's detail record; slower on large fleets.").
				Value(&answers.ExportDetails),
		),
	}

	if !answers.Insecure {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("CA bundle (optional)").
				Description("PEM file for servers signed by a private CA").
				Value(&answers.CAFile),
		))
	}

	form := huh.NewForm(groups...)
	if err := form.Run(); err != nil {
		return nil, err
	}

	return answers, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return errors.New("enter a URL like https://jamf.example.org:8443")
	}
	return nil
}

// PromptPassword asks for the API password without echoing it.
func PromptPassword(username string) (string, error) {
	var password string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Password for %s", username)).
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).Run()
	return password, err
}
