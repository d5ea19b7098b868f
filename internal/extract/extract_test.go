package extract

import (
	"errors"
	"testing"
)

func TestObject_FencedBlockWins(t *testing.T) {
	text := "Here is my verdict:\n```json\n{\"winner\": \"a\"}\n```\nAnd outside: {\"winner\": \"b\"}"
	obj, err := Object(text)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if obj["winner"] != "a" {
		t.Fatalf("expected fenced block to take precedence, got %v", obj["winner"])
	}
}

func TestObject_FenceWithoutLanguageTag(t *testing.T) {
	obj, err := Object("```\n{\"x\": 1}\n```")
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if obj["x"] != float64(1) {
		t.Fatalf("got %v", obj["x"])
	}
}

func TestObject_BareJSON(t *testing.T) {
	obj, err := Object(`  {"rationale": "fine"}  `)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if obj["rationale"] != "fine" {
		t.Fatalf("got %v", obj["rationale"])
	}
}

func TestObject_EmbeddedObject(t *testing.T) {
	text := `The judge says {"winner": "b", "note": "score {bracket} inside string"} end of line`
	obj, err := Object(text)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if obj["winner"] != "b" {
		t.Fatalf("got %v", obj["winner"])
	}
}

func TestObject_NestedBraces(t *testing.T) {
	text := `prefix {"criteria_scores": {"clarity": {"contender1": 8, "contender2": 6}}} suffix`
	obj, err := Object(text)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if _, ok := obj["criteria_scores"].(map[string]any); !ok {
		t.Fatalf("expected nested object, got %T", obj["criteria_scores"])
	}
}

func TestObject_NoJSON(t *testing.T) {
	_, err := Object("I refuse to answer in JSON.")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestObject_TopLevelArrayRejected(t *testing.T) {
	_, err := Object(`[1, 2, 3]`)
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for non-object JSON, got %v", err)
	}
}

func TestObject_MalformedFencedFallsBack(t *testing.T) {
	text := "```json\n{broken}\n```\nbut later {\"ok\": true} appears"
	obj, err := Object(text)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if obj["ok"] != true {
		t.Fatalf("got %v", obj["ok"])
	}
}
