package compliance

import "math"

// CheckStatus is the outcome of a single check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult is one row of the score breakdown.
type CheckResult struct {
	Check        string      `json:"check"`
	Section      string      `json:"section,omitempty"`
	Status       CheckStatus `json:"status"`
	Weight       float64     `json:"weight"`
	Contribution float64     `json:"score_contribution"`
}

// Scorecard is the weighted readiness score with its per-check breakdown.
type Scorecard struct {
	PerCheck   []CheckResult `json:"per_check"`
	TotalScore float64       `json:"total_score"`
	MaxScore   float64       `json:"max_score"`
}

// ReadinessScore is the total rounded to a whole point, halves to even.
func (s Scorecard) ReadinessScore() int {
	return int(math.RoundToEven(s.TotalScore))
}

// PerCheckWeight splits a section budget evenly across the checks registered
// in that section. Adding or removing a check re-weights every check in
// the section.
func PerCheckWeight(sectionBudget float64, checksInSection int) float64 {
	if checksInSection <= 0 {
		return 0
	}
	return sectionBudget / float64(checksInSection)
}

// Score converts failed checks into a Scorecard. Every failed check in a
// weighted section deducts that section's per-check weight from the sum of
// all section budgets; the total is floored at zero.
//
// The breakdown lists the rule table in order, followed by failed checks the
// table does not know about (weight 0).
func Score(failed []string, table CheckTable, weights SectionWeights) Scorecard {
	failedSet := make(map[string]bool, len(failed))
	for _, name := range failed {
		failedSet[name] = true
	}

	counts := table.SectionCounts()
	weightOf := func(c Check) float64 {
		budget, ok := weights[c.Section]
		if c.Section == "" || !ok {
			return 0
		}
		return PerCheckWeight(budget, counts[c.Section])
	}

	card := Scorecard{
		PerCheck: make([]CheckResult, 0, len(table)),
		MaxScore: weights.Total(),
	}

	var deductions float64
	for _, c := range table {
		w := weightOf(c)
		row := CheckResult{Check: c.Name, Section: c.Section, Weight: w}
		if failedSet[c.Name] {
			row.Status = StatusFail
			deductions += w
		} else {
			row.Status = StatusPass
			row.Contribution = w
		}
		card.PerCheck = append(card.PerCheck, row)
	}

	seen := make(map[string]bool)
	for _, name := range failed {
		if _, ok := table.Lookup(name); ok || seen[name] {
			continue
		}
		seen[name] = true
		card.PerCheck = append(card.PerCheck, CheckResult{Check: name, Status: StatusFail})
	}

	card.TotalScore = math.Max(0, card.MaxScore-deductions)
	return card
}
