package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPromptDocumentChars bounds the applicant text sent to the model.
const maxPromptDocumentChars = 30000

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildPlaceRecognitionPrompt asks for every geo-political place mentioned
// in the document, in particular where data is hosted.
func (pb *PromptBuilder) BuildPlaceRecognitionPrompt(documentText string) string {
	documentText = truncateUTF8(documentText, maxPromptDocumentChars)

	return fmt.Sprintf(`You are a named-entity recognizer for regulatory filings.

List every geo-political entity (country, state, emirate or city) mentioned in the document below.
Include places where servers, data centers or cloud regions are located.
Use the place name exactly as written. Do not include company names, people or regulators.

Return ONLY a JSON array of strings, for example ["Ireland", "State of Qatar"].
Return [] when no place is mentioned.

DOCUMENT:
%s`, documentText)
}

// BuildRegulationQuery turns a failed check into the text embedded for
// regulation retrieval.
func (pb *PromptBuilder) BuildRegulationQuery(checkName, regulationText string) string {
	if strings.TrimSpace(regulationText) == "" {
		return fmt.Sprintf("Regulatory requirements for %s", checkName)
	}
	return fmt.Sprintf("%s: %s", checkName, regulationText)
}

// parseJSONArray decodes a JSON string array from a model response that may
// be wrapped in markdown fences or prose.
func parseJSONArray(response string) ([]string, error) {
	text := strings.ReplaceAll(response, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in response: %q", response)
	}

	var values []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON array: %w", err)
	}
	return values, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
