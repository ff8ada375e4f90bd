package compliance

// Check is one row of the regulatory rule table.
type Check struct {
	Name string `yaml:"name" json:"name"`
	// Section places the check in the weighting scheme. Checks without a
	// section can still be reported as gaps but never move the score.
	Section       string `yaml:"section" json:"section,omitempty"`
	ResourceTopic string `yaml:"resource_topic" json:"resource_topic,omitempty"`
	Regulation    string `yaml:"regulation" json:"regulation,omitempty"`
}

// CheckTable is the ordered rule table. Order drives the score breakdown.
type CheckTable []Check

// Lookup returns the check registered under name.
func (t CheckTable) Lookup(name string) (Check, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// SectionCounts returns how many checks are registered in each section.
func (t CheckTable) SectionCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range t {
		if c.Section != "" {
			counts[c.Section]++
		}
	}
	return counts
}

// SectionWeights maps a section name to its point budget.
type SectionWeights map[string]float64

// Total is the sum of all section budgets, the best achievable score.
func (w SectionWeights) Total() float64 {
	var total float64
	for _, budget := range w {
		total += budget
	}
	return total
}

// Thresholds holds the numeric and enumerated regulatory limits.
type Thresholds struct {
	MinimumCapital map[Category]int64 `yaml:"minimum_capital" json:"minimum_capital"`
	// DefaultMinimumCapital applies when no configured category was matched.
	DefaultMinimumCapital int64  `yaml:"default_minimum_capital" json:"default_minimum_capital"`
	RequiredDataLocation  string `yaml:"required_data_location" json:"required_data_location"`
}

// RequiredCapital returns the strictest minimum across the matched categories.
func (t Thresholds) RequiredCapital(categories []Category) int64 {
	var required int64
	matched := false
	for _, c := range categories {
		minimum, ok := t.MinimumCapital[c]
		if !ok {
			continue
		}
		matched = true
		if minimum > required {
			required = minimum
		}
	}
	if !matched {
		return t.DefaultMinimumCapital
	}
	return required
}

// RuleSet is the immutable regulatory configuration shared by every assessment.
type RuleSet struct {
	Checks     CheckTable
	Sections   SectionWeights
	Thresholds Thresholds
}

// RegulationTexts maps each check to its regulation text, skipping checks without one.
func (r *RuleSet) RegulationTexts() map[string]string {
	texts := make(map[string]string)
	if r == nil {
		return texts
	}
	for _, c := range r.Checks {
		if c.Regulation != "" {
			texts[c.Name] = c.Regulation
		}
	}
	return texts
}
