// Package input loads and validates the contenders and assessment
// framework files. Any failure here is fatal: the tournament must not
// start on malformed inputs.
package input

import (
	"encoding/json"
	"fmt"
	"os"

	"tourney/internal/assessment"
	"tourney/internal/tournament"
)

type contendersFile struct {
	Contenders []struct {
		ID       string         `json:"id"`
		Content  string         `json:"content"`
		Metadata map[string]any `json:"metadata"`
	} `json:"contenders"`
}

type frameworkFile struct {
	Framework *assessment.Framework `json:"assessment_framework"`
}

// LoadContenders reads a contenders JSON file. It requires at least two
// entries with unique, non-empty ids and non-empty content.
func LoadContenders(path string) ([]*tournament.Contender, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("contenders file: %w", err)
	}
	var file contendersFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("contenders file %s: invalid JSON: %w", path, err)
	}
	if len(file.Contenders) == 0 {
		return nil, fmt.Errorf("contenders file %s: expected a non-empty 'contenders' array", path)
	}

	seen := make(map[string]bool, len(file.Contenders))
	out := make([]*tournament.Contender, 0, len(file.Contenders))
	for i, c := range file.Contenders {
		if c.ID == "" {
			return nil, fmt.Errorf("contenders file %s: entry %d missing 'id'", path, i)
		}
		if c.Content == "" {
			return nil, fmt.Errorf("contenders file %s: contender %q missing 'content'", path, c.ID)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("contenders file %s: duplicate contender id %q", path, c.ID)
		}
		seen[c.ID] = true
		out = append(out, &tournament.Contender{ID: c.ID, Content: c.Content, Metadata: c.Metadata})
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("contenders file %s: a tournament requires at least 2 contenders, got %d", path, len(out))
	}
	return out, nil
}

// LoadFramework reads and validates an assessment framework JSON file.
func LoadFramework(path string) (*assessment.Framework, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("framework file: %w", err)
	}
	var file frameworkFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("framework file %s: invalid JSON: %w", path, err)
	}
	if file.Framework == nil {
		return nil, fmt.Errorf("framework file %s: expected an 'assessment_framework' object", path)
	}
	if err := file.Framework.Validate(); err != nil {
		return nil, fmt.Errorf("framework file %s: %w", path, err)
	}
	return file.Framework, nil
}
