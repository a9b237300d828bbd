package testutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Award is the subset of an FPDS award used by test fixtures. Empty fields
// are omitted from the generated XML.
type Award struct {
	PIID            string
	ModNumber       string
	AgencyID        string
	SignedDate      string
	EffectiveDate   string
	ObligatedAmount string
	TotalObligated  string
	Description     string
	NAICSCode       string
	PSC             string
	VendorName      string
	VendorState     string
	NumberOfOffers  string
	VeteranOwned    string
	SmallBusiness   string
	WomenOwned      string
}

// Feed renders an FPDS-style ATOM document with one entry per award.
func Feed(awards ...Award) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom" xmlns:ns1="https://www.fpds.gov/FPDS">` + "\n")
	b.WriteString("<title>FPDS-NG ATOM Feed</title>\n")
	for _, a := range awards {
		b.WriteString(Entry(a))
	}
	b.WriteString("</feed>\n")
	return b.String()
}

// Entry renders a single ATOM entry for the award.
func Entry(a Award) string {
	var b strings.Builder
	b.WriteString("<entry>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", esc("AWARD "+a.PIID))
	b.WriteString(`<link rel="alternate" type="text/html" href="https://www.fpds.gov/"/>` + "\n")
	b.WriteString(`<content type="application/xml">` + "\n")
	b.WriteString(`<ns1:award version="1.5">` + "\n")

	b.WriteString("<ns1:awardID><ns1:awardContractID>")
	el(&b, "agencyID", a.AgencyID)
	el(&b, "PIID", a.PIID)
	el(&b, "modNumber", a.ModNumber)
	b.WriteString("</ns1:awardContractID></ns1:awardID>\n")

	b.WriteString("<ns1:relevantContractDates>")
	el(&b, "signedDate", a.SignedDate)
	el(&b, "effectiveDate", a.EffectiveDate)
	b.WriteString("</ns1:relevantContractDates>\n")

	b.WriteString("<ns1:dollarValues>")
	el(&b, "obligatedAmount", a.ObligatedAmount)
	b.WriteString("</ns1:dollarValues>\n")

	b.WriteString("<ns1:totalDollarValues>")
	el(&b, "totalObligatedAmount", a.TotalObligated)
	b.WriteString("</ns1:totalDollarValues>\n")

	b.WriteString("<ns1:contractData>")
	el(&b, "descriptionOfContractRequirement", a.Description)
	b.WriteString("</ns1:contractData>\n")

	b.WriteString("<ns1:productOrServiceInformation>")
	el(&b, "productOrServiceCode", a.PSC)
	el(&b, "principalNAICSCode", a.NAICSCode)
	b.WriteString("</ns1:productOrServiceInformation>\n")

	b.WriteString("<ns1:vendor><ns1:vendorHeader>")
	el(&b, "vendorName", a.VendorName)
	b.WriteString("</ns1:vendorHeader><ns1:vendorSiteDetails>")
	b.WriteString("<ns1:vendorSocioEconomicIndicators>")
	el(&b, "isVeteranOwned", a.VeteranOwned)
	el(&b, "isSmallBusiness", a.SmallBusiness)
	el(&b, "isWomenOwned", a.WomenOwned)
	b.WriteString("</ns1:vendorSocioEconomicIndicators>")
	b.WriteString("<ns1:vendorLocation>")
	el(&b, "state", a.VendorState)
	b.WriteString("</ns1:vendorLocation>")
	b.WriteString("</ns1:vendorSiteDetails></ns1:vendor>\n")

	b.WriteString("<ns1:competition>")
	el(&b, "numberOfOffersReceived", a.NumberOfOffers)
	b.WriteString("</ns1:competition>\n")

	b.WriteString("</ns1:award>\n</content>\n</entry>\n")
	return b.String()
}

func el(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<ns1:%s>%s</ns1:%s>", name, esc(value), name)
}

func esc(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
