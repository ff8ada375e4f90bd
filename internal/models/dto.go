package models

import "alfredoptarigan/compliance-readiness/internal/compliance"

type ScorecardRequest struct {
	Documents string `json:"documents"`
}

// ScorecardResponse is a synchronous assessment. The embedded report keys
// are promoted to the top level.
type ScorecardResponse struct {
	AssessmentID string `json:"assessment_id"`
	compliance.Report
}

type AssessmentAcceptedResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Documents []UploadedFile `json:"documents"`
}

type UploadedFile struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

type AssessmentResponse struct {
	ID           string             `json:"id"`
	Status       string             `json:"status"`
	Result       *compliance.Report `json:"result,omitempty"`
	ErrorMessage *string            `json:"error_message,omitempty"`
}

// ReportRequest selects the report to render: a stored assessment, raw
// document text, or an already computed result, in that order of preference.
type ReportRequest struct {
	AssessmentID string             `json:"assessment_id"`
	Documents    *string            `json:"documents"`
	Result       *compliance.Report `json:"result"`
}

type RegulationExcerpt struct {
	Source string  `json:"source"`
	Score  float32 `json:"score"`
	Text   string  `json:"text"`
}

type RegulationSearchResponse struct {
	Check    string              `json:"check"`
	Query    string              `json:"query"`
	Excerpts []RegulationExcerpt `json:"excerpts"`
}
