package wizard

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockDetector implements Detector for testing.
type mockDetector struct {
	files map[string]string
	env   map[string]string
}

type fakeFileInfo struct {
	name string
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() interface{}   { return nil }

func (m *mockDetector) Stat(path string) (os.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return fakeFileInfo{name: path}, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockDetector) ReadFile(path string) ([]byte, error) {
	if content, ok := m.files[path]; ok {
		return []byte(content), nil
	}
	return nil, os.ErrNotExist
}

func (m *mockDetector) Getenv(key string) string {
	return m.env[key]
}

func TestDetectExistingConfig(t *testing.T) {
	d := &mockDetector{files: map[string]string{"jamfctl.yaml": ""}}
	result := Detect(d)
	assert.Equal(t, "jamfctl.yaml", result.ExistingConfig)
}

func TestDetectEnvFile(t *testing.T) {
	d := &mockDetector{files: map[string]string{
		".env": "JAMF_SERVER_URL=https://jamf.example.org:8443\nJAMF_USERNAME=sean\nJAMF_PASSWORD='s3cret'\n",
	}}
	result := Detect(d)
	assert.Equal(t, ".env", result.EnvFile)
	assert.Equal(t, "https://jamf.example.org:8443", result.ServerURL)
	assert.Equal(t, "sean", result.Username)
	assert.True(t, result.PasswordSet)
	assert.False(t, result.TokenSet)
}

func TestDetectEnvironmentWins(t *testing.T) {
	d := &mockDetector{
		files: map[string]string{".env": "JAMF_SERVER_URL=https://from-file.example.org\n"},
		env: map[string]string{
			"JAMF_SERVER_URL": "https://from-env.example.org",
			"JAMF_API_TOKEN":  "abc",
		},
	}
	result := Detect(d)
	assert.Equal(t, "https://from-env.example.org", result.ServerURL)
	assert.True(t, result.TokenSet)
}

func TestDetectNothing(t *testing.T) {
	result := Detect(&mockDetector{})
	assert.Empty(t, result.ExistingConfig)
	assert.Empty(t, result.EnvFile)
	assert.Empty(t, result.ServerURL)
	assert.False(t, result.PasswordSet)
}
