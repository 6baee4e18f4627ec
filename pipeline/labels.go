package pipeline

// Display metadata for stages. These maps are configuration data constructed
// once at init; callers receive values, never a mutable reference.

var stageLabels = map[Stage]string{
	StageNewEnquiry:          "New Enquiry",
	StageQualifiedLead:       "Qualified Lead",
	StageActiveSearch:        "Active Search",
	StagePropertyShortlisted: "Property Shortlisted",
	StageDueDiligence:        "Due Diligence",
	StageOfferMade:           "Offer Made",
	StageUnderContract:       "Under Contract",
	StageSettled:             "Settled",
	StageAppraisal:           "Appraisal",
	StageListingAgreement:    "Listing Agreement",
	StagePreparation:         "Preparation",
	StageOnMarket:            "On Market",
	StageOffersReceived:      "Offers Received",
	StageBriefCreated:        "Brief Created",
	StageBriefActive:         "Brief Active",
	StageShortlisting:        "Shortlisting",
	StageInspections:         "Inspections",
	StageNegotiation:         "Negotiation",
}

var stageDescriptions = map[Stage]string{
	StageNewEnquiry:          "Initial contact received, not yet qualified",
	StageQualifiedLead:       "Budget, finance position and brief confirmed",
	StageActiveSearch:        "Actively matching properties against the brief",
	StagePropertyShortlisted: "One or more properties shortlisted for the client",
	StageDueDiligence:        "Checks in progress on the preferred property",
	StageOfferMade:           "Offer or auction strategy in play",
	StageUnderContract:       "Contracts exchanged, awaiting settlement",
	StageSettled:             "Settlement complete",
	StageAppraisal:           "Property appraised, vendor not yet committed",
	StageListingAgreement:    "Agency agreement signed",
	StagePreparation:         "Marketing and presentation underway",
	StageOnMarket:            "Campaign live",
	StageOffersReceived:      "Offers on the table",
	StageBriefCreated:        "Brief captured, engagement not yet signed",
	StageBriefActive:         "Engagement signed, search commencing",
	StageShortlisting:        "Building the property shortlist",
	StageInspections:         "Inspecting shortlisted properties",
	StageNegotiation:         "Negotiating on the target property",
}

// Label returns the human display label for a stage, or the raw identifier
// when no label is configured.
func Label(stage Stage) string {
	if l, ok := stageLabels[stage]; ok {
		return l
	}
	return string(stage)
}

// Description returns the display description for a stage, or empty.
func Description(stage Stage) string {
	return stageDescriptions[stage]
}
