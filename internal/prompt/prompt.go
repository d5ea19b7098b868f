// Package prompt manages the prompt templates sent to the judge and the
// per-prompt model mapping. Templates are markdown files with $variable
// placeholders, loaded from a directory; missing files are created from
// built-in defaults.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Manager loads and renders prompt templates.
type Manager struct {
	dir          string
	templates    map[string]string
	modelMapping map[string]string
	defaultModel string
}

// NewManager reads every .md template under dir. modelMapping routes a
// prompt kind to a judge model; anything unmapped uses defaultModel.
func NewManager(dir string, modelMapping map[string]string, defaultModel string) (*Manager, error) {
	m := &Manager{
		dir:          dir,
		templates:    make(map[string]string),
		modelMapping: modelMapping,
		defaultModel: defaultModel,
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("prompt directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read prompt template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		m.templates[name] = string(content)
	}
	return m, nil
}

var placeholder = regexp.MustCompile(`\$(?:\{(\w+)\}|(\w+))`)

// Render substitutes $variable placeholders in the named template.
// An unknown template or an unbound variable is an error.
func (m *Manager) Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	var missing string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		groups := placeholder.FindStringSubmatch(match)
		key := groups[1]
		if key == "" {
			key = groups[2]
		}
		v, ok := vars[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return match
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("prompt template %s: unbound variable $%s", name, missing)
	}
	return out, nil
}

// ModelFor resolves which judge model handles the given prompt kind.
func (m *Manager) ModelFor(name string) string {
	if model, ok := m.modelMapping[name]; ok && model != "" {
		return model
	}
	return m.defaultModel
}

// Has reports whether the named template is loaded.
func (m *Manager) Has(name string) bool {
	_, ok := m.templates[name]
	return ok
}

// EnsureDefaults writes the built-in templates into dir for any that do
// not already exist on disk.
func EnsureDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range defaultTemplates {
		path := filepath.Join(dir, name+".md")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write default prompt %s: %w", name, err)
		}
	}
	return nil
}
