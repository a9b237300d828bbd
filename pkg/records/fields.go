package records

// Path-keys into a flattened FPDS entry. Segments are joined with
// normalize.Delimiter.
const (
	awardPrefix = "content__award__"

	PathContractNumber          = awardPrefix + "awardID__awardContractID__PIID"
	PathModificationNumber      = awardPrefix + "awardID__awardContractID__modNumber"
	PathTransactionNumber       = awardPrefix + "awardID__awardContractID__transactionNumber"
	PathAgencyID                = awardPrefix + "awardID__awardContractID__agencyID"
	PathReferencedIDVPIID       = awardPrefix + "awardID__referencedIDVID__PIID"
	PathReferencedIDVAgencyID   = awardPrefix + "awardID__referencedIDVID__agencyID"
	PathAwardDate               = awardPrefix + "relevantContractDates__signedDate"
	PathEffectiveDate           = awardPrefix + "relevantContractDates__effectiveDate"
	PathCurrentCompletionDate   = awardPrefix + "relevantContractDates__currentCompletionDate"
	PathUltimateCompletionDate  = awardPrefix + "relevantContractDates__ultimateCompletionDate"
	PathObligatedAmount         = awardPrefix + "dollarValues__obligatedAmount"
	PathBaseAndExercisedOptions = awardPrefix + "dollarValues__baseAndExercisedOptionsValue"
	PathBaseAndAllOptions       = awardPrefix + "dollarValues__baseAndAllOptionsValue"
	PathTotalObligatedAmount    = awardPrefix + "totalDollarValues__totalObligatedAmount"
	PathContractingAgencyID     = awardPrefix + "purchaserInformation__contractingOfficeAgencyID"
	PathContractingOfficeID     = awardPrefix + "purchaserInformation__contractingOfficeID"
	PathFundingAgencyID         = awardPrefix + "purchaserInformation__fundingRequestingAgencyID"
	PathFundingOfficeID         = awardPrefix + "purchaserInformation__fundingRequestingOfficeID"
	PathContractActionType      = awardPrefix + "contractData__contractActionType"
	PathTypeOfContractPricing   = awardPrefix + "contractData__typeOfContractPricing"
	PathDescription             = awardPrefix + "contractData__descriptionOfContractRequirement"
	PathProductOrServiceCode    = awardPrefix + "productOrServiceInformation__productOrServiceCode"
	PathNAICSCode               = awardPrefix + "productOrServiceInformation__principalNAICSCode"
	PathVendorName              = awardPrefix + "vendor__vendorHeader__vendorName"
	PathVendorUEI               = awardPrefix + "vendor__vendorSiteDetails__entityIdentifiers__vendorUEIInformation__UEI"
	PathCageCode                = awardPrefix + "vendor__vendorSiteDetails__entityIdentifiers__cageCode"
	PathVendorCity              = awardPrefix + "vendor__vendorSiteDetails__vendorLocation__city"
	PathVendorState             = awardPrefix + "vendor__vendorSiteDetails__vendorLocation__state"
	PathVendorZIP               = awardPrefix + "vendor__vendorSiteDetails__vendorLocation__ZIPCode"
	PathVendorCountry           = awardPrefix + "vendor__vendorSiteDetails__vendorLocation__countryCode"
	PathPlaceOfPerformanceState = awardPrefix + "placeOfPerformance__principalPlaceOfPerformance__stateCode"
	PathPlaceOfPerformanceCtry  = awardPrefix + "placeOfPerformance__principalPlaceOfPerformance__countryCode"
	PathExtentCompeted          = awardPrefix + "competition__extentCompeted"
	PathNumberOfOffers          = awardPrefix + "competition__numberOfOffersReceived"
	PathVeteranOwned            = awardPrefix + "vendor__vendorSiteDetails__vendorSocioEconomicIndicators__isVeteranOwned"
	PathSmallBusiness           = awardPrefix + "vendor__vendorSiteDetails__vendorSocioEconomicIndicators__isSmallBusiness"
	PathWomenOwned              = awardPrefix + "vendor__vendorSiteDetails__vendorSocioEconomicIndicators__isWomenOwned"
	PathLastModifiedDate        = awardPrefix + "transactionInformation__lastModifiedDate"
)

// FieldKind is the output type of a record field.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindInteger FieldKind = "integer"
	KindFlag    FieldKind = "yes_no"
	KindDerived FieldKind = "derived"
)

// Field describes one ContractRecord column.
type Field struct {
	Name        string
	Path        string
	Kind        FieldKind
	Description string
}

// Fields is the static field table, in output order. Path is empty for
// derived fields.
var Fields = []Field{
	{"contract_number", PathContractNumber, KindString, "Procurement instrument identifier (PIID)"},
	{"modification_number", PathModificationNumber, KindString, "Modification number"},
	{"transaction_number", PathTransactionNumber, KindString, "Transaction number"},
	{"agency_id", PathAgencyID, KindString, "Awarding agency code"},
	{"referenced_idv_piid", PathReferencedIDVPIID, KindString, "Parent IDV PIID"},
	{"referenced_idv_agency_id", PathReferencedIDVAgencyID, KindString, "Parent IDV agency code"},
	{"award_date", PathAwardDate, KindString, "Date signed"},
	{"effective_date", PathEffectiveDate, KindString, "Effective date"},
	{"current_completion_date", PathCurrentCompletionDate, KindString, "Current completion date"},
	{"ultimate_completion_date", PathUltimateCompletionDate, KindString, "Ultimate completion date"},
	{"obligated_amount", PathObligatedAmount, KindNumber, "Action obligation"},
	{"base_and_exercised_options_value", PathBaseAndExercisedOptions, KindNumber, "Base and exercised options value"},
	{"base_and_all_options_value", PathBaseAndAllOptions, KindNumber, "Base and all options value"},
	{"total_obligated_amount", PathTotalObligatedAmount, KindNumber, "Total obligation across modifications"},
	{"contracting_agency_id", PathContractingAgencyID, KindString, "Contracting agency code"},
	{"contracting_office_id", PathContractingOfficeID, KindString, "Contracting office code"},
	{"funding_agency_id", PathFundingAgencyID, KindString, "Funding agency code"},
	{"funding_office_id", PathFundingOfficeID, KindString, "Funding office code"},
	{"contract_action_type", PathContractActionType, KindString, "Contract action type"},
	{"type_of_contract_pricing", PathTypeOfContractPricing, KindString, "Type of contract pricing"},
	{"description", PathDescription, KindString, "Description of requirement"},
	{"product_or_service_code", PathProductOrServiceCode, KindString, "Product or service code (PSC)"},
	{"naics_code", PathNAICSCode, KindString, "Principal NAICS code"},
	{"vendor_name", PathVendorName, KindString, "Vendor name"},
	{"vendor_uei", PathVendorUEI, KindString, "Vendor unique entity identifier"},
	{"cage_code", PathCageCode, KindString, "Vendor CAGE code"},
	{"vendor_city", PathVendorCity, KindString, "Vendor city"},
	{"vendor_state", PathVendorState, KindString, "Vendor state"},
	{"vendor_zip", PathVendorZIP, KindString, "Vendor ZIP code"},
	{"vendor_country", PathVendorCountry, KindString, "Vendor country code"},
	{"place_of_performance_state", PathPlaceOfPerformanceState, KindString, "Place of performance state"},
	{"place_of_performance_country", PathPlaceOfPerformanceCtry, KindString, "Place of performance country"},
	{"extent_competed", PathExtentCompeted, KindString, "Extent competed"},
	{"number_of_offers", PathNumberOfOffers, KindInteger, "Number of offers received"},
	{"veteran_owned", PathVeteranOwned, KindFlag, "Veteran-owned business"},
	{"small_business", PathSmallBusiness, KindFlag, "Small business"},
	{"women_owned", PathWomenOwned, KindFlag, "Women-owned business"},
	{"last_modified_date", PathLastModifiedDate, KindString, "Last modified date"},
	{"contract_hash", "", KindDerived, "SHA-256 of contract_number:award_date"},
}

// FieldNames returns the column names in output order.
func FieldNames() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}
