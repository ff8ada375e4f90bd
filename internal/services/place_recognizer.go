package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

type placeRecognizer struct {
	gemini     GeminiService
	prompts    *PromptBuilder
	timeout    time.Duration
	maxRetries int
}

// NewPlaceRecognizer adapts the Gemini client to the extractor's optional
// place-name pass. Every call is bounded by timeout.
func NewPlaceRecognizer(gemini GeminiService, timeout time.Duration, maxRetries int) compliance.PlaceRecognizer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &placeRecognizer{
		gemini:     gemini,
		prompts:    NewPromptBuilder(),
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

func (p *placeRecognizer) RecognizePlaces(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	response, err := p.gemini.GenerateStringListWithRetry(ctx, p.prompts.BuildPlaceRecognitionPrompt(text), p.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize places: %w", err)
	}

	names, err := parseJSONArray(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse place names: %w", err)
	}

	places := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			places = append(places, n)
		}
	}
	return places, nil
}
