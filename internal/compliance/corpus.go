package compliance

import (
	"fmt"
	"sort"
	"strings"
)

// LabelledCase is a reference document with its expected extraction.
type LabelledCase struct {
	Name  string
	Text  string
	Truth Profile
}

// RegressionCorpus is the labelled corpus the extraction heuristics are
// calibrated against. Pattern order changes must keep it passing.
var RegressionCorpus = []LabelledCase{
	{
		Name: "Al-Ameen Digital (Original Mock)",
		Text: `
        Al-Ameen Digital, LLC: Articles of Association (Excerpt)
        1.2. Paid-Up Capital: The initial paid-up capital upon incorporation was QAR 5,000,000 (Five Million Qatari Riyals).
        Project Al-Ameen: Peer-to-Peer Investment Platform. Our primary activities are: Facilitation of peer-to-peer financing services.
        Digital payment systems integration for seamless transactions.
        Al-Ameen Digital: Data Privacy and Customer Consent Policy. All customer data is currently processed and stored within our secure cloud environment,
        hosted across the AWS regions in Ireland and Singapore.
        We do not currently have a dedicated Compliance Officer but plan to assign these duties to the Head of Finance.
        Our policy for reporting suspicious transactions is currently under review by our external legal counsel.
        We retain customer transaction records for 7 years as per our internal policy.
        `,
		Truth: Profile{
			PaidUpCapital:       5000000,
			BusinessCategories:  []Category{CategoryP2PLending, CategoryPaymentProvider},
			DataStorageLocation: []string{LocationIreland, LocationSingapore},
			HasSignedAoA:        true,
		},
	},
	{
		Name: "PayQatar - Compliant Fintech",
		Text: `
        PayQatar LLC - Corporate Documents
        Paid-Up Capital: The company has secured QAR 10,000,000 in initial capital.
        Business Model: We operate as a Payment Service Provider offering digital payment processing and electronic money issuance services.
        Data Infrastructure: All customer data is stored and processed exclusively within data centers located in the State of Qatar.
        Governance: We have appointed Ms. Sarah Al-Thani as our dedicated Compliance Officer, independent from operational management.
        AML/CFT Policy: Our board-approved Anti-Money Laundering and Counter-Financing of Terrorism policy was ratified on March 15, 2025.
        Articles of Association have been signed and submitted to the Qatar Commercial Registry.
        Data Retention: We maintain transaction records for a period of 10 years in compliance with QCB requirements.
        Monitoring: Our transaction monitoring system is deployed and operational, providing real-time surveillance of all payment flows.
        `,
		Truth: Profile{
			PaidUpCapital:          10000000,
			BusinessCategories:     []Category{CategoryPaymentProvider},
			DataStorageLocation:    []string{"State of Qatar"},
			HasComplianceOfficer:   true,
			HasBoardApprovedAML:    true,
			HasSignedAoA:           true,
			Has10YearRetention:     true,
			HasP2PMonitoringSystem: true,
		},
	},
	{
		Name: "LendHub - P2P Platform",
		Text: `
        LendHub Qatar: Business Plan Executive Summary
        Initial Capitalization: Paid-Up Capital was QAR 7,500,000 upon establishment.
        Core Business: Peer-to-peer financing services connecting borrowers and lenders directly.
        Technology Stack: Cloud infrastructure hosted on AWS in the Ireland region for optimal performance.
        Compliance Status: We plan to hire a Compliance Officer in Q2 2026.
        Risk Management: AML policy is under development and will be presented to the board for approval next quarter.
        Record Keeping: Customer data and transaction logs are retained for ten years.
        `,
		Truth: Profile{
			PaidUpCapital:       7500000,
			BusinessCategories:  []Category{CategoryP2PLending},
			DataStorageLocation: []string{LocationIreland},
			Has10YearRetention:  true,
		},
	},
	{
		Name: "FinTech Innovators - Multi-Service",
		Text: `
        FinTech Innovators W.L.L.
        Capital Structure: Paid-Up Capital: QAR 12,000,000
        Services: We provide payment processing, digital payment systems, and facilitate peer-to-peer financing services.
        Data Compliance: All data is processed and stored within the State of Qatar using local data centers.
        Leadership: Our Compliance Officer, Mr. Ahmed Al-Kuwari, operates independently from business units.
        Policies: Board-approved AML/CFT policy implemented January 2025.
        Articles of Association signed and filed.
        We retain all records for 10 years.
        Real-time monitoring system is implemented and operational for all P2P transactions.
        `,
		Truth: Profile{
			PaidUpCapital:          12000000,
			BusinessCategories:     []Category{CategoryPaymentProvider, CategoryP2PLending},
			DataStorageLocation:    []string{"State of Qatar"},
			HasComplianceOfficer:   true,
			HasBoardApprovedAML:    true,
			HasSignedAoA:           true,
			Has10YearRetention:     true,
			HasP2PMonitoringSystem: true,
		},
	},
	{
		Name: "CryptoDoha - Non-Compliant Startup",
		Text: `
        CryptoDoha Trading Platform
        We started with QAR 2,000,000 in seed funding.
        Our platform enables peer-to-peer cryptocurrency trading and digital asset transfers.
        Infrastructure: Hosted on AWS Singapore for low latency.
        Team: Our CFO handles compliance matters alongside financial reporting.
        We're working on developing an AML policy.
        Data is kept for 5 years per industry standards.
        `,
		Truth: Profile{
			PaidUpCapital:       2000000,
			BusinessCategories:  []Category{CategoryP2PLending},
			DataStorageLocation: []string{LocationSingapore},
		},
	},
	{
		Name: "QatarPay Solutions - Partially Compliant",
		Text: `
        QatarPay Solutions LLC
        Paid-Up Capital: Initial capital of QAR 8,500,000
        Services: Payment Service Provider for digital payment systems and electronic money issuance
        Data: Stored in Qatar and Dubai for redundancy
        We have a dedicated Compliance Officer reporting to the board
        AML policy approved by board in June 2025
        Articles of Association filed
        Transaction records retained for 10 years
        Monitoring system planned for deployment in Q4 2025
        `,
		Truth: Profile{
			PaidUpCapital:        8500000,
			BusinessCategories:   []Category{CategoryPaymentProvider},
			DataStorageLocation:  []string{LocationQatar, LocationDubai},
			HasComplianceOfficer: true,
			HasBoardApprovedAML:  true,
			HasSignedAoA:         true,
			Has10YearRetention:   true,
		},
	},
}

// FieldResult scores one extracted field against its label.
type FieldResult struct {
	Field     string  `json:"field"`
	Predicted string  `json:"predicted"`
	Expected  string  `json:"expected"`
	Correct   bool    `json:"correct"`
	Error     string  `json:"error,omitempty"`
	HasPR     bool    `json:"-"`
	Precision float64 `json:"precision,omitempty"`
	Recall    float64 `json:"recall,omitempty"`
}

// Metrics aggregates field results.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Correct   int     `json:"correct_fields"`
	Total     int     `json:"total_fields"`
}

// CaseResult is the evaluation of one labelled case.
type CaseResult struct {
	Name    string        `json:"name"`
	Fields  []FieldResult `json:"fields"`
	Metrics Metrics       `json:"metrics"`
}

// AccuracyReport is the outcome of running an extractor over a corpus.
type AccuracyReport struct {
	Overall  Metrics            `json:"overall_metrics"`
	PerField map[string]float64 `json:"per_field_accuracy"`
	Cases    []CaseResult       `json:"test_cases"`
}

// MeasureAccuracy runs the extractor over every case and scores each field:
// capital exactly, categories as sets, locations by normalised recall of at
// least 0.8, and flags exactly.
func MeasureAccuracy(ex Extractor, cases []LabelledCase) AccuracyReport {
	report := AccuracyReport{PerField: make(map[string]float64)}
	var all []FieldResult
	fieldCorrect := make(map[string]int)
	fieldTotal := make(map[string]int)

	for _, tc := range cases {
		got := ex.Extract(tc.Text)
		fields := evaluateProfile(got, tc.Truth)
		for _, f := range fields {
			fieldTotal[f.Field]++
			if f.Correct {
				fieldCorrect[f.Field]++
			}
		}
		all = append(all, fields...)
		report.Cases = append(report.Cases, CaseResult{
			Name:    tc.Name,
			Fields:  fields,
			Metrics: computeMetrics(fields),
		})
	}

	report.Overall = computeMetrics(all)
	for field, total := range fieldTotal {
		report.PerField[field] = float64(fieldCorrect[field]) / float64(total)
	}
	return report
}

func evaluateProfile(got, want Profile) []FieldResult {
	return []FieldResult{
		exactField("paid_up_capital", got.PaidUpCapital, want.PaidUpCapital),
		categoryField(got.BusinessCategories, want.BusinessCategories),
		locationField(got.DataStorageLocation, want.DataStorageLocation),
		exactField("has_compliance_officer", got.HasComplianceOfficer, want.HasComplianceOfficer),
		exactField("has_board_approved_aml", got.HasBoardApprovedAML, want.HasBoardApprovedAML),
		exactField("has_signed_aoa", got.HasSignedAoA, want.HasSignedAoA),
		exactField("has_10_year_retention", got.Has10YearRetention, want.Has10YearRetention),
		exactField("has_p2p_monitoring_system", got.HasP2PMonitoringSystem, want.HasP2PMonitoringSystem),
	}
}

func exactField[T comparable](name string, got, want T) FieldResult {
	r := FieldResult{
		Field:     name,
		Predicted: fmt.Sprint(got),
		Expected:  fmt.Sprint(want),
		Correct:   got == want,
	}
	if !r.Correct {
		r.Error = fmt.Sprintf("expected %v, got %v", want, got)
	}
	return r
}

func categoryField(got, want []Category) FieldResult {
	pred := make(map[string]bool)
	for _, c := range got {
		pred[string(c)] = true
	}
	exp := make(map[string]bool)
	for _, c := range want {
		exp[string(c)] = true
	}

	r := FieldResult{Field: "business_categories", Predicted: joinSet(pred), Expected: joinSet(exp)}
	if len(exp) == 0 {
		r.Correct = len(pred) == 0
		return r
	}

	r.HasPR = true
	r.Precision, r.Recall = precisionRecall(pred, exp)
	r.Correct = len(pred) == len(exp) && r.Recall == 1
	if !r.Correct {
		var parts []string
		if missing := difference(exp, pred); len(missing) > 0 {
			parts = append(parts, "missing: "+strings.Join(missing, ", "))
		}
		if extra := difference(pred, exp); len(extra) > 0 {
			parts = append(parts, "extra: "+strings.Join(extra, ", "))
		}
		r.Error = strings.Join(parts, " ")
	}
	return r
}

func locationField(got, want []string) FieldResult {
	pred := normaliseLocations(got)
	exp := normaliseLocations(want)

	r := FieldResult{Field: "data_storage_location", Predicted: joinSet(pred), Expected: joinSet(exp)}
	if len(exp) == 0 {
		r.Correct = len(pred) == 0
		return r
	}

	r.HasPR = true
	r.Precision, r.Recall = precisionRecall(pred, exp)
	r.Correct = r.Recall >= 0.8
	if !r.Correct {
		r.Error = "missing: " + strings.Join(difference(exp, pred), ", ")
	}
	return r
}

func normaliseLocations(locs []string) map[string]bool {
	out := make(map[string]bool)
	for _, l := range locs {
		if strings.Contains(l, LocationQatar) {
			out[LocationQatar] = true
		} else {
			out[l] = true
		}
	}
	return out
}

func precisionRecall(pred, exp map[string]bool) (float64, float64) {
	matches := 0
	for k := range pred {
		if exp[k] {
			matches++
		}
	}
	var precision, recall float64
	if len(pred) > 0 {
		precision = float64(matches) / float64(len(pred))
	}
	if len(exp) > 0 {
		recall = float64(matches) / float64(len(exp))
	}
	return precision, recall
}

func computeMetrics(results []FieldResult) Metrics {
	m := Metrics{Total: len(results)}
	var precisions, recalls []float64
	for _, r := range results {
		if r.Correct {
			m.Correct++
		}
		if r.HasPR {
			precisions = append(precisions, r.Precision)
			recalls = append(recalls, r.Recall)
		}
	}
	if m.Total > 0 {
		m.Accuracy = float64(m.Correct) / float64(m.Total)
	}

	m.Precision = mean(precisions, m.Accuracy)
	m.Recall = mean(recalls, m.Accuracy)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

func mean(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func difference(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func joinSet(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}
