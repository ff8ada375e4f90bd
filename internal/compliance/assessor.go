// Package compliance turns applicant documents into a regulatory readiness
// assessment: signal extraction, gap analysis, weighted scoring and
// remediation lookup.
//
// Every stage is a pure function of its inputs and the immutable RuleSet,
// so a single Assessor may be shared by concurrent requests.
package compliance

// Report is the complete outcome of one assessment.
type Report struct {
	Profile         Profile          `json:"extracted_data"`
	FailedGaps      []string         `json:"failed_gaps"`
	Breakdown       []CheckResult    `json:"score_breakdown"`
	TotalScore      float64          `json:"total_score"`
	MaxScore        float64          `json:"max_score"`
	ReadinessScore  int              `json:"readiness_score"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Assessor runs the extraction, analysis, scoring and recommendation stages.
type Assessor struct {
	extractor Extractor
	rules     *RuleSet
	directory Directory
}

// NewAssessor returns an Assessor. A nil rule set behaves as an empty one.
func NewAssessor(extractor Extractor, rules *RuleSet, directory Directory) *Assessor {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	if rules == nil {
		rules = &RuleSet{}
	}
	return &Assessor{
		extractor: extractor,
		rules:     rules,
		directory: directory,
	}
}

// Rules returns the rule set the assessor evaluates against.
func (a *Assessor) Rules() *RuleSet {
	return a.rules
}

// Extract runs signal extraction only.
func (a *Assessor) Extract(text string) Profile {
	return a.extractor.Extract(text)
}

// Assess extracts a profile from text and evaluates it.
func (a *Assessor) Assess(text string) Report {
	return a.Evaluate(a.extractor.Extract(text))
}

// Evaluate runs gap analysis, scoring and recommendation for a profile.
func (a *Assessor) Evaluate(p Profile) Report {
	gaps := Analyze(p, a.rules.Thresholds)
	card := Score(gaps, a.rules.Checks, a.rules.Sections)

	return Report{
		Profile:         p,
		FailedGaps:      gaps,
		Breakdown:       card.PerCheck,
		TotalScore:      card.TotalScore,
		MaxScore:        card.MaxScore,
		ReadinessScore:  card.ReadinessScore(),
		Recommendations: Recommend(gaps, a.rules.Checks, a.directory),
	}
}
