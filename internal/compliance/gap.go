package compliance

// Regulatory check names.
const (
	CheckCapitalShortfall  = "Capital Shortfall"
	CheckDataResidency     = "Data Residency Failure"
	CheckComplianceOfficer = "Compliance Officer Missing"
	CheckAMLPolicy         = "AML/CFT Policy Gap"
	CheckFitAndProper      = "Fit & Proper Docs Missing"
	CheckAoASubmission     = "AoA Submission"
	CheckDataRetention     = "Data Retention Shortfall"
	CheckP2PMonitoring     = "P2P Monitoring Gap"
)

// Analyze evaluates a profile against the thresholds and returns the failed
// checks in evaluation order: capital, residency, governance, AML, implied
// fit-and-proper, retention, monitoring.
//
// Thresholds left at their zero value never fail: an unset minimum capital
// is satisfied by any amount and an empty required location is not checked.
func Analyze(p Profile, t Thresholds) []string {
	gaps := []string{}

	if p.PaidUpCapital < t.RequiredCapital(p.BusinessCategories) {
		gaps = append(gaps, CheckCapitalShortfall)
	}

	if t.RequiredDataLocation != "" && !p.StoresDataIn(t.RequiredDataLocation) {
		gaps = append(gaps, CheckDataResidency)
	}

	officerMissing := !p.HasComplianceOfficer
	if officerMissing {
		gaps = append(gaps, CheckComplianceOfficer)
	}

	if !p.HasBoardApprovedAML {
		gaps = append(gaps, CheckAMLPolicy)
	}

	// Without an officer the fit-and-proper documentation cannot be verified.
	if officerMissing {
		gaps = append(gaps, CheckFitAndProper)
	}

	// HasSignedAoA has no failure path: a missing AoA is never reported as a gap.

	if !p.Has10YearRetention {
		gaps = append(gaps, CheckDataRetention)
	}

	if !p.HasP2PMonitoringSystem {
		gaps = append(gaps, CheckP2PMonitoring)
	}

	return gaps
}
