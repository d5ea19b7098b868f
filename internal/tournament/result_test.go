package tournament

import (
	"errors"
	"testing"
)

func validResultData() map[string]any {
	return map[string]any{
		"criteria_scores": map[string]any{
			"clarity": map[string]any{"contender1": 8.0, "contender2": 6.0},
		},
		"contender1_score": 8.0,
		"contender2_score": 6.0,
		"winner":           "a",
		"rationale":        "a was clearer",
	}
}

func TestValidateResult_Valid(t *testing.T) {
	r, err := ValidateResult(validResultData(), "a", "b")
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if r.Winner == nil || *r.Winner != "a" {
		t.Fatalf("winner: got %v", r.Winner)
	}
	if r.Contender1Score != 8 || r.Contender2Score != 6 {
		t.Fatalf("scores: got %v %v", r.Contender1Score, r.Contender2Score)
	}
	if r.CriteriaScores["clarity"].Contender1 != 8 {
		t.Fatalf("criteria: got %+v", r.CriteriaScores["clarity"])
	}
}

func TestValidateResult_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{"criteria_scores", "contender1_score", "contender2_score", "rationale"} {
		data := validResultData()
		delete(data, field)
		_, err := ValidateResult(data, "a", "b")
		if err == nil {
			t.Fatalf("missing %q: expected error", field)
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("missing %q: expected ValidationError, got %T", field, err)
		}
	}
}

func TestValidateResult_WinnerDerivedFromScores(t *testing.T) {
	data := validResultData()
	delete(data, "winner")
	r, err := ValidateResult(data, "a", "b")
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if r.Winner == nil || *r.Winner != "a" {
		t.Fatalf("expected derived winner a, got %v", r.Winner)
	}

	data["contender1_score"] = 4.0
	r, err = ValidateResult(data, "a", "b")
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if r.Winner == nil || *r.Winner != "b" {
		t.Fatalf("expected derived winner b, got %v", r.Winner)
	}
}

func TestValidateResult_EqualScoresDraw(t *testing.T) {
	data := validResultData()
	delete(data, "winner")
	data["contender1_score"] = 7.0
	data["contender2_score"] = 7.0
	r, err := ValidateResult(data, "a", "b")
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if r.Winner != nil {
		t.Fatalf("expected draw (nil winner), got %q", *r.Winner)
	}
}

func TestValidateResult_ExplicitNullWinnerIsDrawOnEqualScores(t *testing.T) {
	data := validResultData()
	data["winner"] = nil
	data["contender1_score"] = 5.0
	data["contender2_score"] = 5.0
	r, err := ValidateResult(data, "a", "b")
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if r.Winner != nil {
		t.Fatalf("expected nil winner, got %q", *r.Winner)
	}
}

func TestValidateResult_StringScoresCoerced(t *testing.T) {
	data := validResultData()
	data["contender1_score"] = "8.5"
	r, err := ValidateResult(data, "a", "b")
	if err != nil {
		t.Fatalf("ValidateResult: %v", err)
	}
	if r.Contender1Score != 8.5 {
		t.Fatalf("got %v", r.Contender1Score)
	}
}

func TestValidateResult_NonNumericScoreRejected(t *testing.T) {
	data := validResultData()
	data["contender2_score"] = "lots"
	if _, err := ValidateResult(data, "a", "b"); err == nil {
		t.Fatal("expected error for non-numeric score")
	}
}

func TestValidateResult_BadWinnerType(t *testing.T) {
	data := validResultData()
	data["winner"] = 42.0
	if _, err := ValidateResult(data, "a", "b"); err == nil {
		t.Fatal("expected error for non-string winner")
	}
}
