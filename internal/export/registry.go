// Package export writes device inventories as CSV, XLSX, JSON or YAML.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Exporter renders a Table in one file format.
type Exporter interface {
	Metadata() Metadata
	Write(w io.Writer, t Table) error
}

// Metadata describes an exporter for flag help and format detection.
type Metadata struct {
	Name        string // format key, e.g. "csv"
	Extension   string // file extension including the dot
	Description string
}

var registry = map[string]func() Exporter{}

// Register adds an exporter factory. Each format calls this in its init().
func Register(factory func() Exporter) {
	registry[factory().Metadata().Name] = factory
}

// Get returns the exporter for a format name.
func Get(format string) (Exporter, error) {
	f, ok := registry[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return f(), nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FormatFromPath guesses the format from a file extension. It returns ""
// when no exporter claims the extension.
func FormatFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		ext = ".yaml"
	}
	for name, f := range registry {
		if f().Metadata().Extension == ext {
			return name
		}
	}
	return ""
}

// WriteFile writes t to path in the given format.
func WriteFile(path, format string, t Table) (err error) {
	e, err := Get(format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return e.Write(f, t)
}
