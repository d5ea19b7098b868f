package prompt

// MatchEvaluation is the prompt kind used to judge one match.
const MatchEvaluation = "match_evaluation"

// Validation is the prompt kind used to ask a judge to repair a
// malformed response.
const Validation = "validation"

var defaultTemplates = map[string]string{
	MatchEvaluation: `# Tournament Match Evaluation

## Assessment Framework
$framework_description

$formatted_criteria

$formatted_rules

$formatted_scoring

## Contenders

### Contender 1: $contender1_id
$contender1_content

### Contender 2: $contender2_id
$contender2_content

## Task
Evaluate these two contenders based on the assessment framework. Compare them directly against each other for each criterion.

## Response Format
Respond with a JSON object in the following format:
` + "```json" + `
{
  "criteria_scores": {
    "[criterion_name]": {
      "contender1": [score],
      "contender2": [score]
    }
  },
  "contender1_score": [overall_score],
  "contender2_score": [overall_score],
  "winner": "[contender1_id or contender2_id]",
  "rationale": "[detailed explanation]"
}
` + "```" + `

Set the "winner" field to the ID of the winning contender. If it's a tie, set it to null.
The "rationale" should explain your reasoning in detail, highlighting the key differentiating factors.
`,

	Validation: `# Response Validation

## Expected Format
$expected_format

## Actual Response
$response

## Task
Validate whether the response matches the expected format. If not, correct it to match the expected format.

## Response Format
Respond with a JSON object in the following format:
` + "```json" + `
{
  "is_valid": [true/false],
  "corrected_response": {},
  "error_message": "[explanation of errors if any]"
}
` + "```" + `
`,
}
