package wizard

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerateConfigMinimal(t *testing.T) {
	answers := WizardAnswers{
		ServerURL: "https://jamf.example.org:8443",
		Username:  "sean",
	}

	out, err := GenerateConfig(answers)
	require.NoError(t, err)

	assert.Contains(t, out, "url: https://jamf.example.org:8443")
	assert.Contains(t, out, "api_root: /uapi/")
	assert.Contains(t, out, "username: sean")
	assert.Contains(t, out, "default_field: serial")
	assert.Contains(t, out, "format: csv")
	assert.Contains(t, out, "details: false")
	assert.NotContains(t, out, "insecure:")
	assert.NotContains(t, out, "ca_file:")
	assert.NotContains(t, out, "JAMF_API_TOKEN")
}

func TestGenerateConfigFull(t *testing.T) {
	answers := WizardAnswers{
		ServerURL:     "https://jamf.example.org:8443",
		APIRoot:       "/api/",
		Insecure:      true,
		CAFile:        "/etc/ssl/jamf.pem",
		Username:      "sean",
		APIToken:      true,
		DefaultField:  "udid",
		ExportFormat:  "xlsx",
		ExportOutput:  "ipads.xlsx",
		ExportDetails: true,
	}

	out, err := GenerateConfig(answers)
	require.NoError(t, err)

	assert.Contains(t, out, "api_root: /api/")
	assert.Contains(t, out, "insecure: true")
	assert.Contains(t, out, "ca_file: /etc/ssl/jamf.pem")
	assert.Contains(t, out, "JAMF_API_TOKEN")
	assert.Contains(t, out, "default_field: udid")
	assert.Contains(t, out, "output: ipads.xlsx")
	assert.Contains(t, out, "details: true")
}

func TestGenerateConfigIsValidYAML(t *testing.T) {
	out, err := GenerateConfig(WizardAnswers{ServerURL: "https://jamf.example.org"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "server")
	assert.Contains(t, doc, "credentials")
	assert.NotContains(t, out, "password")
}

func TestGenerateConfigReadableByViper(t *testing.T) {
	out, err := GenerateConfig(WizardAnswers{
		ServerURL:    "https://jamf.example.org",
		Username:     "sean",
		ExportFormat: "json",
	})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(out)))
	assert.Equal(t, "https://jamf.example.org", v.GetString("server.url"))
	assert.Equal(t, "sean", v.GetString("credentials.username"))
	assert.Equal(t, "json", v.GetString("export.format"))
}
