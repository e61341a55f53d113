// Package config loads cmd/codehem's optional `.env` and `.codehem.toml`
// project configuration.
//
// `.env` loading is grounded on termfx-morfx's own use of
// github.com/joho/godotenv: best-effort, silently skipped if absent.
// `.codehem.toml` parsing is grounded on standardbeagle-lci's
// internal/config package, which reaches for
// github.com/pelletier/go-toml/v2 for its own project-config file; see
// DESIGN.md.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Project is the decoded shape of an optional `.codehem.toml` file at a
// workspace root (SPEC_FULL.md §6.3: "ignore-pattern and per-extension
// language overrides").
type Project struct {
	Ignore     []string          `toml:"ignore"`
	Extensions map[string]string `toml:"extensions"` // e.g. ".pyi" -> "python"
}

// LoadDotEnv loads a `.env` file from dir if present. Missing files are
// not an error.
func LoadDotEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}

// LoadProject reads `.codehem.toml` from root, returning a zero-value
// Project (no ignores, no overrides) if the file does not exist.
func LoadProject(root string) (Project, error) {
	var p Project
	data, err := os.ReadFile(filepath.Join(root, ".codehem.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}
