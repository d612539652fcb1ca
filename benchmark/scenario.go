package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"webp": true, "bmp": true, "tif": true, "tiff": true,
}

// loadScenarios reads a yaml or toml scenario file, picked by extension.
func loadScenarios(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}

	var f scenarioFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	case ".toml":
		err = toml.Unmarshal(raw, &f)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range f.Scenarios {
		s := &f.Scenarios[i]
		if s.Image == "" {
			return nil, fmt.Errorf("scenario %d: image is required", i)
		}
		if !filepath.IsAbs(s.Image) {
			s.Image = filepath.Join(base, s.Image)
		}
		if s.Name == "" {
			s.Name = filepath.Base(s.Image)
		}
	}
	return f.Scenarios, nil
}

// discoverScenarios builds one scenario per image file under dir.
func discoverScenarios(dir, prompt string) ([]Scenario, error) {
	var out []Scenario
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExts[formatOf(path)] {
			return nil
		}
		out = append(out, Scenario{Name: d.Name(), Image: path, Prompt: prompt})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Image < out[j].Image })
	return out, nil
}

func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
