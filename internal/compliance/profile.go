package compliance

// Category is a regulatory business category label.
type Category string

const (
	CategoryP2PLending      Category = "P2P Lending (Category 2)"
	CategoryPaymentProvider Category = "Payment Service Provider (Category 1)"
)

// EntityType is the legal form of the applicant.
type EntityType string

const (
	EntityLLC         EntityType = "LLC"
	EntityWLL         EntityType = "WLL"
	EntityQPSC        EntityType = "QPSC"
	EntityBranch      EntityType = "Branch"
	EntityUnspecified EntityType = "Unspecified"
)

// Canonical jurisdiction labels recognised by the location detector.
const (
	LocationQatar     = "Qatar"
	LocationIreland   = "Ireland"
	LocationSingapore = "Singapore"
	LocationDubai     = "Dubai"
	LocationUAE       = "UAE"
)

// Profile is the structured result of signal extraction.
//
// Zero values mean "not demonstrably met": a PaidUpCapital of 0 is "not
// found", and every false flag covers both absent and ambiguous evidence.
type Profile struct {
	PaidUpCapital          int64      `json:"paid_up_capital"`
	BusinessCategories     []Category `json:"business_categories"`
	DataStorageLocation    []string   `json:"data_storage_location"`
	HasComplianceOfficer   bool       `json:"has_compliance_officer"`
	HasBoardApprovedAML    bool       `json:"has_board_approved_aml"`
	HasSignedAoA           bool       `json:"has_signed_aoa"`
	EntityType             EntityType `json:"entity_type"`
	Has10YearRetention     bool       `json:"has_10_year_retention"`
	HasP2PMonitoringSystem bool       `json:"has_p2p_monitoring_system"`
}

// HasCategory reports whether c was matched.
func (p Profile) HasCategory(c Category) bool {
	for _, got := range p.BusinessCategories {
		if got == c {
			return true
		}
	}
	return false
}

// StoresDataIn reports whether location is one of the detected storage jurisdictions.
func (p Profile) StoresDataIn(location string) bool {
	for _, got := range p.DataStorageLocation {
		if got == location {
			return true
		}
	}
	return false
}
