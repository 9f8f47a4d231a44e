package wizard

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DetectionResult holds what was found in the working directory and
// environment.
type DetectionResult struct {
	ExistingConfig string // path if a config file already exists
	EnvFile        string // path of a .env file, if any

	ServerURL string
	Username  string

	// PasswordSet and TokenSet report whether a secret is already supplied
	// by the environment or .env, so the wizard need not mention it.
	PasswordSet bool
	TokenSet    bool
}

// Detector abstracts filesystem and environment lookups for testing.
type Detector interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Getenv(key string) string
}

// OSDetector uses the real OS for detection.
type OSDetector struct{}

func (OSDetector) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSDetector) ReadFile(path string) ([]byte, error)  { return os.ReadFile(path) }
func (OSDetector) Getenv(key string) string              { return os.Getenv(key) }

var configPaths = []string{"jamfctl.yml", "jamfctl.yaml"}

// Detect looks for an existing config, a .env file and JAMF_ variables.
// Values in the process environment win over .env.
func Detect(d Detector) DetectionResult {
	if d == nil {
		d = OSDetector{}
	}

	result := DetectionResult{}

	for _, p := range configPaths {
		if _, err := d.Stat(p); err == nil {
			result.ExistingConfig = p
			break
		}
	}

	vars := map[string]string{}
	if data, err := d.ReadFile(".env"); err == nil {
		result.EnvFile = ".env"
		if parsed, err := godotenv.Unmarshal(string(data)); err == nil {
			vars = parsed
		}
	}
	lookup := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(d.Getenv(k)); v != "" {
				return v
			}
		}
		for _, k := range keys {
			if v := strings.TrimSpace(vars[k]); v != "" {
				return v
			}
		}
		return ""
	}

	result.ServerURL = lookup("JAMF_SERVER_URL")
	result.Username = lookup("JAMF_CREDENTIALS_USERNAME", "JAMF_USERNAME")
	result.PasswordSet = lookup("JAMF_CREDENTIALS_PASSWORD", "JAMF_PASSWORD") != ""
	result.TokenSet = lookup("JAMF_CREDENTIALS_API_TOKEN", "JAMF_API_TOKEN") != ""

	return result
}
