package assessment

import (
	"fmt"
	"strings"
)

// Criterion is one weighted dimension of the framework.
type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Scale bounds the numeric scores a judge may assign.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Midpoint returns the center of the scale, used as the fallback score
// when a result record is missing a numeric value.
func (s Scale) Midpoint() float64 { return (s.Min + s.Max) / 2 }

// Category labels a sub-range of the scale (e.g. "excellent": 8..10).
type Category struct {
	Name  string     `json:"name"`
	Range [2]float64 `json:"range"`
}

// ScoringSystem describes how matches are scored.
type ScoringSystem struct {
	Type       string     `json:"type"`
	Scale      Scale      `json:"scale"`
	Categories []Category `json:"categories,omitempty"`
}

// Framework is the rubric a judge evaluates contenders against.
// It is immutable once validated and shared read-only across all
// matches of a tournament.
type Framework struct {
	ID              string        `json:"id"`
	Name            string        `json:"name,omitempty"`
	Description     string        `json:"description"`
	Criteria        []Criterion   `json:"evaluation_criteria"`
	ComparisonRules []string      `json:"comparison_rules"`
	Scoring         ScoringSystem `json:"scoring_system"`
}

// Validate checks the structural invariants: criterion weights sum to
// approximately 1.0 and every criterion has a name and description.
func (f *Framework) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("assessment framework: id is required")
	}
	if len(f.Criteria) == 0 {
		return fmt.Errorf("assessment framework %q: no evaluation criteria", f.ID)
	}
	var total float64
	for i, c := range f.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("assessment framework %q: criterion %d has no name", f.ID, i)
		}
		if strings.TrimSpace(c.Description) == "" {
			return fmt.Errorf("assessment framework %q: criterion %q has no description", f.ID, c.Name)
		}
		total += c.Weight
	}
	// Allow for small floating point error.
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("assessment framework %q: criterion weights must sum to 1.0, got %.4f", f.ID, total)
	}
	if f.Scoring.Type == "" {
		return fmt.Errorf("assessment framework %q: scoring system has no type", f.ID)
	}
	if f.Scoring.Type == "points" && f.Scoring.Scale.Max <= f.Scoring.Scale.Min {
		return fmt.Errorf("assessment framework %q: scoring scale max must exceed min", f.ID)
	}
	return nil
}

// FormattedCriteria renders the criteria for inclusion in a prompt.
func (f *Framework) FormattedCriteria() string {
	var b strings.Builder
	b.WriteString("# Evaluation Criteria\n\n")
	for _, c := range f.Criteria {
		fmt.Fprintf(&b, "## %s (Weight: %.2f)\n%s\n\n", c.Name, c.Weight, c.Description)
	}
	return b.String()
}

// FormattedRules renders the comparison rules for inclusion in a prompt.
func (f *Framework) FormattedRules() string {
	var b strings.Builder
	b.WriteString("# Comparison Rules\n\n")
	for i, r := range f.ComparisonRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	return b.String()
}

// FormattedScoring renders the scoring system for inclusion in a prompt.
func (f *Framework) FormattedScoring() string {
	var b strings.Builder
	b.WriteString("# Scoring System\n\n")
	fmt.Fprintf(&b, "Type: %s\n", f.Scoring.Type)
	fmt.Fprintf(&b, "Scale: %g to %g\n", f.Scoring.Scale.Min, f.Scoring.Scale.Max)
	if len(f.Scoring.Categories) > 0 {
		b.WriteString("\nCategories:\n")
		for _, cat := range f.Scoring.Categories {
			fmt.Fprintf(&b, "- %s: %g to %g\n", cat.Name, cat.Range[0], cat.Range[1])
		}
	}
	return b.String()
}
