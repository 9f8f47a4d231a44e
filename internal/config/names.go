package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rename is one entry of a bulk rename plan.
type Rename struct {
	ID   int
	Name string
}

// LoadRenames reads a YAML mapping of device ID to new name, e.g.
//
//	"2223": fi-cartA-013
//	"2243": fi-cartA-014
//
// and returns it ordered by ID.
func LoadRenames(path string) ([]Rename, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRenames(data)
}

// ParseRenames parses the YAML form read by LoadRenames.
func ParseRenames(data []byte) ([]Rename, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing rename plan: %w", err)
	}

	renames := make([]Rename, 0, len(raw))
	seen := make(map[string]int)
	for k, name := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("rename plan: device id %q is not a number", k)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("rename plan: device %d has an empty name", id)
		}
		if other, dup := seen[strings.ToLower(name)]; dup {
			return nil, fmt.Errorf("rename plan: name %q is used for devices %d and %d", name, other, id)
		}
		seen[strings.ToLower(name)] = id
		renames = append(renames, Rename{ID: id, Name: name})
	}
	sort.Slice(renames, func(i, j int) bool { return renames[i].ID < renames[j].ID })
	return renames, nil
}
