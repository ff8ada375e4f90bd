package compliance

import (
	"regexp"
	"strconv"
	"strings"
)

// Extractor turns free-form applicant documents into a Profile.
//
// Extraction is best-effort: it never fails, and a signal that cannot be
// found degrades to the field's zero value.
type Extractor interface {
	Extract(text string) Profile
}

// PlaceRecognizer finds place names in prose. It backs the optional
// enrichment pass of location detection.
type PlaceRecognizer interface {
	RecognizePlaces(text string) ([]string, error)
}

type extractor struct {
	places PlaceRecognizer
}

// NewExtractor returns an Extractor. places may be nil, in which case
// location detection uses the fixed jurisdiction patterns only.
func NewExtractor(places PlaceRecognizer) Extractor {
	return &extractor{places: places}
}

// Extract implements Extractor.
func (e *extractor) Extract(text string) Profile {
	lower := strings.ToLower(text)

	return Profile{
		PaidUpCapital:          extractCapital(text),
		BusinessCategories:     classifyCategories(lower),
		DataStorageLocation:    detectLocations(text, lower, e.places),
		HasComplianceOfficer:   complianceOfficerRules.resolve(lower),
		HasBoardApprovedAML:    amlPolicyRules.resolve(lower),
		HasSignedAoA:           strings.Contains(lower, "articles of association"),
		EntityType:             detectEntityType(text),
		Has10YearRetention:     retentionRules.resolve(lower),
		HasP2PMonitoringSystem: monitoringRules.resolve(lower),
	}
}

// amountMatcher reports whether its pattern matched text and the amount it
// captured. An unparseable capture still counts as a match, with amount 0.
type amountMatcher func(text string) (int64, bool)

// capitalMatchers are ordered from most to least specific. The first
// matcher whose pattern matches decides the amount, even when the captured
// number cannot be parsed; the order was calibrated against the
// regression corpus and must not be changed casually.
var capitalMatchers = []amountMatcher{
	amountAfter(`(?i)Paid-Up Capital:.*?was QAR ([\d,]+)`),
	amountAfter(`(?i)Paid-Up Capital:.*?QAR ([\d,]+)`),
	amountAfter(`(?i)Paid[- ]?Up Capital.*?QAR ([\d,]+)`),
	amountAfter(`(?i)initial capital.*?QAR ([\d,]+)`),
	amountAfter(`(?i)secured QAR ([\d,]+)`),
	amountAfter(`(?i)started with QAR ([\d,]+)`),
	amountAfter(`(?i)seed funding.*?QAR ([\d,]+)`),
	amountAfter(`(?i)capital.*?QAR ([\d,]+)`),
	amountAfter(`(?i)QAR ([\d,]+).*?capital`),
}

func amountAfter(pattern string) amountMatcher {
	re := regexp.MustCompile(pattern)
	return func(text string) (int64, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		v, ok := parseAmount(m[1])
		if !ok {
			return 0, true
		}
		return v, true
	}
}

// parseAmount parses a digit string with optional thousands separators.
// A capture made only of separators, or one that overflows, is not an amount.
func parseAmount(s string) (int64, bool) {
	digits := strings.ReplaceAll(s, ",", "")
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractCapital(text string) int64 {
	for _, match := range capitalMatchers {
		if v, ok := match(text); ok {
			return v
		}
	}
	return 0
}

var categoryVocabularies = []struct {
	category Category
	phrases  []string
}{
	{CategoryP2PLending, []string{"peer-to-peer", "p2p", "facilitation of peer-to-peer financing services"}},
	{CategoryPaymentProvider, []string{"payment processing", "digital payment systems", "electronic money issuance"}},
}

// classifyCategories returns every category whose vocabulary appears in the
// lowercased text. Categories are additive.
func classifyCategories(lower string) []Category {
	categories := []Category{}
	for _, vocab := range categoryVocabularies {
		if containsAny(lower, vocab.phrases) {
			categories = append(categories, vocab.category)
		}
	}
	return categories
}

var entityPatterns = []struct {
	entity EntityType
	re     *regexp.Regexp
}{
	{EntityWLL, regexp.MustCompile(`(?i)\bw\.l\.l\b|\bwll\b`)},
	{EntityLLC, regexp.MustCompile(`(?i)\bl\.l\.c\b|\bllc\b`)},
	{EntityQPSC, regexp.MustCompile(`(?i)\bq\.p\.s\.c\b|\bqpsc\b`)},
	{EntityBranch, regexp.MustCompile(`(?i)\bbranch of\b`)},
}

func detectEntityType(text string) EntityType {
	for _, p := range entityPatterns {
		if p.re.MatchString(text) {
			return p.entity
		}
	}
	return EntityUnspecified
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
