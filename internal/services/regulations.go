package services

import (
	"context"
	"errors"
	"fmt"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

// ErrUnknownCheck is returned when a search names a check that is not in the rule set.
var ErrUnknownCheck = errors.New("unknown check")

const (
	defaultRegulationResults = 3
	maxRegulationResults     = 10
)

// RegulationLibrary retrieves circular passages relevant to a check.
type RegulationLibrary interface {
	Search(ctx context.Context, checkName string, limit int) (*RegulationMatches, error)
}

type RegulationMatches struct {
	Check    string
	Query    string
	Passages []SearchResult
}

type regulationLibrary struct {
	rules   *compliance.RuleSet
	gemini  GeminiService
	qdrant  QdrantService
	prompts *PromptBuilder
}

func NewRegulationLibrary(rules *compliance.RuleSet, gemini GeminiService, qdrant QdrantService) RegulationLibrary {
	return &regulationLibrary{
		rules:   rules,
		gemini:  gemini,
		qdrant:  qdrant,
		prompts: NewPromptBuilder(),
	}
}

func (r *regulationLibrary) Search(ctx context.Context, checkName string, limit int) (*RegulationMatches, error) {
	check, ok := r.rules.Checks.Lookup(checkName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, checkName)
	}

	if limit <= 0 {
		limit = defaultRegulationResults
	}
	if limit > maxRegulationResults {
		limit = maxRegulationResults
	}

	query := r.prompts.BuildRegulationQuery(check.Name, check.Regulation)
	embedding, err := r.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	passages, err := r.qdrant.SearchSimilar(ctx, embedding, DocTypeRegulation, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search regulations: %w", err)
	}

	return &RegulationMatches{
		Check:    check.Name,
		Query:    query,
		Passages: passages,
	}, nil
}
