package tournament

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CriterionScore is the per-criterion score pair for both contenders.
type CriterionScore struct {
	Contender1 float64 `json:"contender1"`
	Contender2 float64 `json:"contender2"`
}

// MatchResult is the validated, typed outcome of one match. Winner is
// nil for a draw. No downstream component re-parses judge output; this
// struct is the only result representation past the validator.
type MatchResult struct {
	Winner          *string                   `json:"winner"`
	Contender1Score float64                   `json:"contender1_score"`
	Contender2Score float64                   `json:"contender2_score"`
	Rationale       string                    `json:"rationale"`
	CriteriaScores  map[string]CriterionScore `json:"criteria_scores"`
}

// ValidationError names the missing or invalid field in judge output.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("match result: field %q: %s", e.Field, e.Reason)
}

// ValidateResult turns extracted judge JSON into a MatchResult for the
// match between c1ID and c2ID. Required keys: criteria_scores (each
// criterion a {contender1, contender2} numeric pair), contender1_score,
// contender2_score, rationale. A missing winner is derived: equal scores
// mean a draw, otherwise the higher-scoring contender wins.
func ValidateResult(data map[string]any, c1ID, c2ID string) (*MatchResult, error) {
	rawScores, ok := data["criteria_scores"].(map[string]any)
	if !ok {
		return nil, &ValidationError{Field: "criteria_scores", Reason: "missing or not an object"}
	}
	criteria := make(map[string]CriterionScore, len(rawScores))
	for name, v := range rawScores {
		pair, ok := v.(map[string]any)
		if !ok {
			return nil, &ValidationError{Field: "criteria_scores." + name, Reason: "not an object"}
		}
		s1, err := coerceScore(pair, "contender1")
		if err != nil {
			return nil, &ValidationError{Field: "criteria_scores." + name + ".contender1", Reason: err.Error()}
		}
		s2, err := coerceScore(pair, "contender2")
		if err != nil {
			return nil, &ValidationError{Field: "criteria_scores." + name + ".contender2", Reason: err.Error()}
		}
		criteria[name] = CriterionScore{Contender1: s1, Contender2: s2}
	}

	score1, err := coerceScore(data, "contender1_score")
	if err != nil {
		return nil, &ValidationError{Field: "contender1_score", Reason: err.Error()}
	}
	score2, err := coerceScore(data, "contender2_score")
	if err != nil {
		return nil, &ValidationError{Field: "contender2_score", Reason: err.Error()}
	}
	rationale, ok := data["rationale"].(string)
	if !ok {
		return nil, &ValidationError{Field: "rationale", Reason: "missing or not a string"}
	}

	var winner *string
	switch w := data["winner"].(type) {
	case string:
		if w != "" {
			winner = &w
		}
	case nil:
		// Derive from scores.
		switch {
		case score1 == score2:
			winner = nil
		case score1 > score2:
			winner = &c1ID
		default:
			winner = &c2ID
		}
	default:
		return nil, &ValidationError{Field: "winner", Reason: "not a string or null"}
	}

	return &MatchResult{
		Winner:          winner,
		Contender1Score: score1,
		Contender2Score: score2,
		Rationale:       rationale,
		CriteriaScores:  criteria,
	}, nil
}

// coerceScore reads key from obj and converts it to a float64. Accepts
// JSON numbers, json.Number, numeric strings, and integers.
func coerceScore(obj map[string]any, key string) (float64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing")
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not numeric: %v", v)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}
