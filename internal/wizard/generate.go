package wizard

import (
	"bytes"
	"text/template"
)

// WizardAnswers holds all user responses from the wizard.
type WizardAnswers struct {
	// Server settings
	ServerURL string
	APIRoot   string
	Insecure  bool
	CAFile    string

	// Credentials; the password is never written to the config file.
	Username string
	APIToken bool

	// Search and export defaults
	DefaultField  string
	ExportFormat  string
	ExportOutput  string
	ExportDetails bool
}

const configTemplate = `# jamfctl configuration
# Secrets belong in the environment or .env:
#   JAMF_PASSWORD=...{{ if .APIToken }}
#   JAMF_API_TOKEN=...{{ end }}

server:
  url: {{ .ServerURL }}
  api_root: {{ .APIRoot }}
{{- if .Insecure }}
  insecure: true
{{- end }}
{{- if .CAFile }}
  ca_file: {{ .CAFile }}
{{- end }}

credentials:
{{- if .Username }}
  username: {{ .Username }}
{{- else }}
  username: ""
{{- end }}

search:
  default_field: {{ .DefaultField }}

export:
  format: {{ .ExportFormat }}
{{- if .ExportOutput }}
  output: {{ .ExportOutput }}
{{- end }}
  details: {{ if .ExportDetails }}true{{ else }}false{{ end }}
`

// GenerateConfig renders the YAML config from wizard answers.
func GenerateConfig(answers WizardAnswers) (string, error) {
	if answers.APIRoot == "" {
		answers.APIRoot = "/uapi/"
	}
	if answers.DefaultField == "" {
		answers.DefaultField = "serial"
	}
	if answers.ExportFormat == "" {
		answers.ExportFormat = "csv"
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", err
	}

	return buf.String(), nil
}
