// Package project reads the identity (owner and slug) of the project whose
// release channels are being managed.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pubctl/internal/publish"
)

// FileNames are the project files looked up, in order
var FileNames = []string{"app.yaml", "app.yml", "app.json"}

// ErrNoProjectFile indicates none of FileNames exists in the directory
var ErrNoProjectFile = errors.New("no project file found")

// Project is the parsed project file. JSON files parse too since JSON is a
// subset of YAML.
type Project struct {
	Name      string `yaml:"name"`
	SlugValue string `yaml:"slug"`
	OwnerName string `yaml:"owner"`

	// Path is the file the project was read from
	Path string `yaml:"-"`
}

var _ publish.Project = (*Project)(nil)

// Owner returns the owning account, or "" when the project does not set one
func (p *Project) Owner() string { return p.OwnerName }

// Slug returns the project slug
func (p *Project) Slug() string { return p.SlugValue }

// Load reads the project file in dir. An empty dir means the working directory.
func Load(dir string) (*Project, error) {
	if dir == "" {
		dir = "."
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read project file: %w", err)
		}
		return parse(path, data)
	}
	return nil, fmt.Errorf("%w in %s (looked for %s)", ErrNoProjectFile, dir, strings.Join(FileNames, ", "))
}

func parse(path string, data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.Path = path
	p.SlugValue = strings.TrimSpace(p.SlugValue)
	p.OwnerName = os.ExpandEnv(strings.TrimSpace(p.OwnerName))
	if p.SlugValue == "" {
		return nil, publish.InvalidArgument("%s must define a slug", path)
	}
	return &p, nil
}
