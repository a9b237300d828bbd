// Package search validates FPDS search filters and builds feed URLs.
package search

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/apierror"
)

// DefaultBaseURL is the public FPDS ATOM feed.
const DefaultBaseURL = "https://www.fpds.gov/ezsearch/FEEDS/ATOM"

// Filter names understood by the feed.
const (
	SignedDate           = "SIGNED_DATE"
	LastModDate          = "LAST_MOD_DATE"
	EffectiveDate        = "EFFECTIVE_DATE"
	AwardCompletionDate  = "AWARD_COMPLETION_DATE"
	PrincipalNAICSCode   = "PRINCIPAL_NAICS_CODE"
	AgencyCode           = "AGENCY_CODE"
	ContractingAgencyID  = "CONTRACTING_AGENCY_ID"
	PIID                 = "PIID"
	VendorName           = "VENDOR_NAME"
	ProductOrServiceCode = "PRODUCT_OR_SERVICE_CODE"

	// PageParam carries the 1-based page number. Never set by callers.
	PageParam = "page"
)

const dateLayout = "2006/01/02"

var (
	dateRangeRe = regexp.MustCompile(`^\[(\d{4}/\d{2}/\d{2}),\s*(\d{4}/\d{2}/\d{2})\]$`)
	piidRe      = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// dateRangeFields take "[YYYY/MM/DD, YYYY/MM/DD]".
var dateRangeFields = []string{SignedDate, LastModDate, EffectiveDate, AwardCompletionDate}

// numericFields maps a code filter to its allowed digit counts.
var numericFields = map[string][2]int{
	PrincipalNAICSCode:  {2, 6},
	AgencyCode:          {4, 4},
	ContractingAgencyID: {4, 4},
}

// Params is a set of search filters. Each filter holds one value or a list.
// A Params value is read-only once handed to a fetch.
type Params map[string][]string

// Set replaces the values of key.
func (p Params) Set(key string, values ...string) Params {
	p[key] = values
	return p
}

// Add appends a value to key.
func (p Params) Add(key, value string) Params {
	p[key] = append(p[key], value)
	return p
}

// Get returns the first value of key, or "".
func (p Params) Get(key string) string {
	if v := p[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DateRange formats a date-range filter value.
func DateRange(from, to time.Time) string {
	return "[" + from.Format(dateLayout) + ", " + to.Format(dateLayout) + "]"
}

// Validate checks every filter it knows about and returns the first
// problem as a KindValidation error. Unknown filters pass through.
func Validate(p Params) error {
	if _, ok := p[PageParam]; ok {
		return apierror.Validation(PageParam, "page is managed by the fetcher and cannot be set", "remove the page filter")
	}

	for _, key := range dateRangeFields {
		for _, v := range p[key] {
			if err := validateDateRange(key, v); err != nil {
				return err
			}
		}
	}

	keys := make([]string, 0, len(numericFields))
	for k := range numericFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		digits := numericFields[key]
		for _, v := range p[key] {
			if err := validateDigits(key, v, digits[0], digits[1]); err != nil {
				return err
			}
		}
	}

	for _, v := range p[PIID] {
		if v != "" && !piidRe.MatchString(v) {
			return apierror.Validation(PIID,
				fmt.Sprintf("%q is not a valid PIID", v),
				"use letters, digits and hyphens only, e.g. W912DY-24-C-0001")
		}
	}
	return nil
}

func validateDateRange(key, v string) error {
	if v == "" {
		return nil
	}
	const suggestion = "use the form [2022/01/01, 2024/12/31]"

	m := dateRangeRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return apierror.Validation(key,
			fmt.Sprintf("%q is not a date range", v),
			suggestion)
	}

	from, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return apierror.Validation(key, fmt.Sprintf("invalid start date %q", m[1]), suggestion)
	}
	to, err := time.Parse(dateLayout, m[2])
	if err != nil {
		return apierror.Validation(key, fmt.Sprintf("invalid end date %q", m[2]), suggestion)
	}
	if from.After(to) {
		return apierror.Validation(key,
			fmt.Sprintf("start date %s is after end date %s", m[1], m[2]),
			"swap the two dates")
	}
	return nil
}

func validateDigits(key, v string, minLen, maxLen int) error {
	if v == "" {
		return nil
	}
	want := strconv.Itoa(minLen)
	if minLen != maxLen {
		want = fmt.Sprintf("%d to %d", minLen, maxLen)
	}

	if _, err := strconv.ParseUint(v, 10, 64); err != nil || len(v) < minLen || len(v) > maxLen {
		return apierror.Validation(key,
			fmt.Sprintf("%q must be %s digits", v, want),
			fmt.Sprintf("check the %s code list", strings.ToLower(strings.ReplaceAll(key, "_", " "))))
	}
	return nil
}

// BuildURL encodes p onto base. Empty values are skipped, list values repeat
// the key, and page is appended only for pages after the first.
func BuildURL(base string, p Params, page int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", apierror.Validation("base_url", fmt.Sprintf("invalid base URL %q: %v", base, err))
	}

	q := u.Query()
	for key, values := range p {
		for _, v := range values {
			if v != "" {
				q.Add(key, v)
			}
		}
	}
	if page > 1 {
		q.Set(PageParam, strconv.Itoa(page))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Decode parses the filters back out of a feed URL built by BuildURL,
// dropping the page number.
func Decode(rawURL string) (Params, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, err
	}

	q := u.Query()
	page := 1
	if v := q.Get(PageParam); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return nil, 0, fmt.Errorf("invalid page %q: %w", v, err)
		}
		q.Del(PageParam)
	}
	return Params(q), page, nil
}
