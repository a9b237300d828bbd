// Package records maps flattened FPDS entries onto ContractRecord.
package records

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// Metadata is a free-form attachment carried on every record of a batch.
type Metadata map[string]any

// ContractRecord is one award-contract action. JSON field order is fixed by
// the struct order and matches Fields.
type ContractRecord struct {
	ContractNumber               string   `json:"contract_number"`
	ModificationNumber           string   `json:"modification_number"`
	TransactionNumber            string   `json:"transaction_number"`
	AgencyID                     string   `json:"agency_id"`
	ReferencedIDVPIID            string   `json:"referenced_idv_piid"`
	ReferencedIDVAgencyID        string   `json:"referenced_idv_agency_id"`
	AwardDate                    string   `json:"award_date"`
	EffectiveDate                string   `json:"effective_date"`
	CurrentCompletionDate        string   `json:"current_completion_date"`
	UltimateCompletionDate       string   `json:"ultimate_completion_date"`
	ObligatedAmount              float64  `json:"obligated_amount"`
	BaseAndExercisedOptionsValue float64  `json:"base_and_exercised_options_value"`
	BaseAndAllOptionsValue       float64  `json:"base_and_all_options_value"`
	TotalObligatedAmount         float64  `json:"total_obligated_amount"`
	ContractingAgencyID          string   `json:"contracting_agency_id"`
	ContractingOfficeID          string   `json:"contracting_office_id"`
	FundingAgencyID              string   `json:"funding_agency_id"`
	FundingOfficeID              string   `json:"funding_office_id"`
	ContractActionType           string   `json:"contract_action_type"`
	TypeOfContractPricing        string   `json:"type_of_contract_pricing"`
	Description                  string   `json:"description"`
	ProductOrServiceCode         string   `json:"product_or_service_code"`
	NAICSCode                    string   `json:"naics_code"`
	VendorName                   string   `json:"vendor_name"`
	VendorUEI                    string   `json:"vendor_uei"`
	CageCode                     string   `json:"cage_code"`
	VendorCity                   string   `json:"vendor_city"`
	VendorState                  string   `json:"vendor_state"`
	VendorZIP                    string   `json:"vendor_zip"`
	VendorCountry                string   `json:"vendor_country"`
	PlaceOfPerformanceState      string   `json:"place_of_performance_state"`
	PlaceOfPerformanceCountry    string   `json:"place_of_performance_country"`
	ExtentCompeted               string   `json:"extent_competed"`
	NumberOfOffers               int      `json:"number_of_offers"`
	VeteranOwned                 string   `json:"veteran_owned"`
	SmallBusiness                string   `json:"small_business"`
	WomenOwned                   string   `json:"women_owned"`
	LastModifiedDate             string   `json:"last_modified_date"`
	ContractHash                 string   `json:"contract_hash"`
	Metadata                     Metadata `json:"metadata,omitempty"`
}

// RawEntry is a flattened entry: path-key to scalar (or untouched array).
type RawEntry = map[string]any

// flagTrue is the upstream representation of a set business indicator.
const flagTrue = "true"

// MapRecord projects a flattened entry onto ContractRecord. It never fails:
// missing keys become "" or 0.
func MapRecord(raw RawEntry, meta Metadata) ContractRecord {
	r := ContractRecord{
		ContractNumber:               lookup(raw, PathContractNumber),
		ModificationNumber:           lookup(raw, PathModificationNumber),
		TransactionNumber:            lookup(raw, PathTransactionNumber),
		AgencyID:                     lookup(raw, PathAgencyID),
		ReferencedIDVPIID:            lookup(raw, PathReferencedIDVPIID),
		ReferencedIDVAgencyID:        lookup(raw, PathReferencedIDVAgencyID),
		AwardDate:                    lookup(raw, PathAwardDate),
		EffectiveDate:                lookup(raw, PathEffectiveDate),
		CurrentCompletionDate:        lookup(raw, PathCurrentCompletionDate),
		UltimateCompletionDate:       lookup(raw, PathUltimateCompletionDate),
		ObligatedAmount:              parseNumber(lookup(raw, PathObligatedAmount)),
		BaseAndExercisedOptionsValue: parseNumber(lookup(raw, PathBaseAndExercisedOptions)),
		BaseAndAllOptionsValue:       parseNumber(lookup(raw, PathBaseAndAllOptions)),
		TotalObligatedAmount:         parseNumber(lookup(raw, PathTotalObligatedAmount)),
		ContractingAgencyID:          lookup(raw, PathContractingAgencyID),
		ContractingOfficeID:          lookup(raw, PathContractingOfficeID),
		FundingAgencyID:              lookup(raw, PathFundingAgencyID),
		FundingOfficeID:              lookup(raw, PathFundingOfficeID),
		ContractActionType:           lookup(raw, PathContractActionType),
		TypeOfContractPricing:        lookup(raw, PathTypeOfContractPricing),
		Description:                  lookup(raw, PathDescription),
		ProductOrServiceCode:         lookup(raw, PathProductOrServiceCode),
		NAICSCode:                    lookup(raw, PathNAICSCode),
		VendorName:                   lookup(raw, PathVendorName),
		VendorUEI:                    lookup(raw, PathVendorUEI),
		CageCode:                     lookup(raw, PathCageCode),
		VendorCity:                   lookup(raw, PathVendorCity),
		VendorState:                  lookup(raw, PathVendorState),
		VendorZIP:                    lookup(raw, PathVendorZIP),
		VendorCountry:                lookup(raw, PathVendorCountry),
		PlaceOfPerformanceState:      lookup(raw, PathPlaceOfPerformanceState),
		PlaceOfPerformanceCountry:    lookup(raw, PathPlaceOfPerformanceCtry),
		ExtentCompeted:               lookup(raw, PathExtentCompeted),
		NumberOfOffers:               parseCount(lookup(raw, PathNumberOfOffers)),
		VeteranOwned:                 yesNo(lookup(raw, PathVeteranOwned)),
		SmallBusiness:                yesNo(lookup(raw, PathSmallBusiness)),
		WomenOwned:                   yesNo(lookup(raw, PathWomenOwned)),
		LastModifiedDate:             lookup(raw, PathLastModifiedDate),
		Metadata:                     meta,
	}
	r.ContractHash = GenerateContractHash(r.ContractNumber, r.AwardDate)
	return r
}

// MapRecords maps every entry in order. All records share meta.
func MapRecords(raws []RawEntry, meta Metadata) []ContractRecord {
	out := make([]ContractRecord, len(raws))
	for i, raw := range raws {
		out[i] = MapRecord(raw, meta)
	}
	return out
}

// GenerateContractHash returns the hex SHA-256 of "contractNumber:awardDate".
func GenerateContractHash(contractNumber, awardDate string) string {
	sum := sha256.Sum256([]byte(contractNumber + ":" + awardDate))
	return hex.EncodeToString(sum[:])
}

// Values renders the record in Fields order for tabular output.
func (r ContractRecord) Values() []string {
	return []string{
		r.ContractNumber,
		r.ModificationNumber,
		r.TransactionNumber,
		r.AgencyID,
		r.ReferencedIDVPIID,
		r.ReferencedIDVAgencyID,
		r.AwardDate,
		r.EffectiveDate,
		r.CurrentCompletionDate,
		r.UltimateCompletionDate,
		formatNumber(r.ObligatedAmount),
		formatNumber(r.BaseAndExercisedOptionsValue),
		formatNumber(r.BaseAndAllOptionsValue),
		formatNumber(r.TotalObligatedAmount),
		r.ContractingAgencyID,
		r.ContractingOfficeID,
		r.FundingAgencyID,
		r.FundingOfficeID,
		r.ContractActionType,
		r.TypeOfContractPricing,
		r.Description,
		r.ProductOrServiceCode,
		r.NAICSCode,
		r.VendorName,
		r.VendorUEI,
		r.CageCode,
		r.VendorCity,
		r.VendorState,
		r.VendorZIP,
		r.VendorCountry,
		r.PlaceOfPerformanceState,
		r.PlaceOfPerformanceCountry,
		r.ExtentCompeted,
		strconv.Itoa(r.NumberOfOffers),
		r.VeteranOwned,
		r.SmallBusiness,
		r.WomenOwned,
		r.LastModifiedDate,
		r.ContractHash,
	}
}

// WithMetadata returns copies of recs carrying meta.
func WithMetadata(recs []ContractRecord, meta Metadata) []ContractRecord {
	out := make([]ContractRecord, len(recs))
	for i, r := range recs {
		r.Metadata = meta
		out[i] = r
	}
	return out
}

// lookup returns the scalar at key as a string. Missing keys and
// non-scalar values yield "".
func lookup(raw RawEntry, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// parseNumber is parse-or-zero.
func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseCount is parse-or-zero for whole counts. Fractions and values
// outside the int range yield 0.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func yesNo(s string) string {
	if strings.TrimSpace(s) == flagTrue {
		return "Yes"
	}
	return "No"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
