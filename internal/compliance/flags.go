package compliance

import (
	"regexp"
	"strings"
)

// cue is one step of a flag decision. When matches reports true the flag
// resolves to verdict and later cues are not consulted.
type cue struct {
	name    string
	matches func(lower string) bool
	verdict bool
}

// decision is an ordered list of cues evaluated against lowercased text.
// Disqualifying cues come first. When no cue matches the flag is false.
type decision []cue

func (d decision) resolve(lower string) bool {
	v, _ := d.decide(lower)
	return v
}

// decide returns the verdict and the name of the cue that produced it,
// or "default" when nothing matched.
func (d decision) decide(lower string) (bool, string) {
	for _, c := range d {
		if c.matches(lower) {
			return c.verdict, c.name
		}
	}
	return false, "default"
}

func anyPhrase(phrases ...string) func(string) bool {
	return func(lower string) bool { return containsAny(lower, phrases) }
}

func anyPattern(patterns ...string) func(string) bool {
	res := compileAll(patterns...)
	return func(lower string) bool {
		for _, re := range res {
			if re.MatchString(lower) {
				return true
			}
		}
		return false
	}
}

func not(f func(string) bool) func(string) bool {
	return func(lower string) bool { return !f(lower) }
}

func both(a, b func(string) bool) func(string) bool {
	return func(lower string) bool { return a(lower) && b(lower) }
}

var complianceOfficerRules = decision{
	{
		name: "officer deferred",
		matches: anyPhrase(
			"plan to assign these duties to the head of finance",
			"plan to hire a compliance officer",
			"plan to appoint",
			"will appoint",
			"planning to hire",
			"do not currently have a dedicated compliance officer",
		),
		verdict: false,
	},
	{
		name:    "officer not mentioned",
		matches: func(lower string) bool { return !strings.Contains(lower, "compliance officer") },
		verdict: false,
	},
	{
		name: "officer appointed",
		matches: anyPattern(
			`(appointed|have|has|designated)\s+.*?compliance officer`,
			`compliance officer.*?(appointed|designated|independent)`,
			`(mr\.|ms\.|dr\.)\s+\w+.*?compliance officer`,
			`compliance officer.*?(mr\.|ms\.|dr\.)`,
		),
		verdict: true,
	},
}

var amlPolicyRules = decision{
	{
		name: "policy pending",
		matches: anyPattern(
			regexp.QuoteMeta("policy for reporting suspicious transactions is currently under review"),
			`under development`,
			`under review`,
			`working on developing an aml policy`,
			`aml policy.*?under review`,
			`aml.*?under development`,
		),
		verdict: false,
	},
	{
		name: "policy approved",
		matches: anyPattern(
			`board[- ]?approved.*?aml`,
			`aml.*?board[- ]?approved`,
			`aml.*?policy.*?(approved|ratified|implemented)`,
			`anti[- ]?money laundering.*?policy.*?(approved|ratified)`,
		),
		verdict: true,
	},
}

var (
	retentionTerm = anyPhrase("retain", "retention", "retention period")
	tenYears      = anyPhrase("10 years", "ten years")
	sevenYears    = anyPhrase("7 years", "seven years")
)

var retentionRules = decision{
	{name: "ten-year retention", matches: both(tenYears, retentionTerm), verdict: true},
	{name: "seven-year retention", matches: sevenYears, verdict: false},
	{name: "retention without duration", matches: retentionTerm, verdict: false},
}

var (
	monitoringKeyword = anyPhrase(
		"transaction monitoring", "transaction surveillance", "p2p monitoring", "p2p surveillance",
		"fraud detection", "monitoring system", "real-time monitoring",
	)
	deploymentKeyword = anyPhrase(
		"deployed", "implemented", "in production", "is deployed", "is implemented", "operational", "live",
	)
	planningKeyword = anyPhrase(
		"plan to", "planning to", "under development", "under review", "pilot", "prototype",
	)
)

var monitoringRules = decision{
	{name: "no monitoring", matches: not(monitoringKeyword), verdict: false},
	{name: "monitoring deployed", matches: deploymentKeyword, verdict: true},
	{name: "monitoring planned", matches: planningKeyword, verdict: false},
}
