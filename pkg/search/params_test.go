package search

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/apierror"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		params    Params
		wantParam string
	}{
		{name: "empty", params: Params{}},
		{name: "valid date range", params: Params{SignedDate: {"[2022/01/01, 2024/12/31]"}}},
		{name: "date range without space", params: Params{LastModDate: {"[2024/01/01,2024/01/31]"}}},
		{name: "single-day range", params: Params{EffectiveDate: {"[2024/02/29, 2024/02/29]"}}},
		{name: "hyphenated range", params: Params{SignedDate: {"2022/01/01-2024/12/31"}}, wantParam: SignedDate},
		{name: "iso dates", params: Params{SignedDate: {"[2022-01-01, 2024-12-31]"}}, wantParam: SignedDate},
		{name: "impossible date", params: Params{AwardCompletionDate: {"[2023/02/30, 2023/03/01]"}}, wantParam: AwardCompletionDate},
		{name: "reversed range", params: Params{SignedDate: {"[2024/12/31, 2022/01/01]"}}, wantParam: SignedDate},
		{name: "second list value invalid", params: Params{SignedDate: {"[2022/01/01, 2022/12/31]", "2023"}}, wantParam: SignedDate},
		{name: "valid naics", params: Params{PrincipalNAICSCode: {"541512"}}},
		{name: "naics sector", params: Params{PrincipalNAICSCode: {"54"}}},
		{name: "naics too long", params: Params{PrincipalNAICSCode: {"5415121"}}, wantParam: PrincipalNAICSCode},
		{name: "naics letters", params: Params{PrincipalNAICSCode: {"54A512"}}, wantParam: PrincipalNAICSCode},
		{name: "valid agency", params: Params{AgencyCode: {"9700"}}},
		{name: "agency three digits", params: Params{AgencyCode: {"970"}}, wantParam: AgencyCode},
		{name: "contracting agency signed", params: Params{ContractingAgencyID: {"+970"}}, wantParam: ContractingAgencyID},
		{name: "valid piid", params: Params{PIID: {"W912DY-24-C-0001"}}},
		{name: "piid with space", params: Params{PIID: {"W912 DY"}}, wantParam: PIID},
		{name: "unknown filter passes", params: Params{"SOMETHING_ELSE": {"[anything]"}}},
		{name: "page is reserved", params: Params{PageParam: {"2"}}, wantParam: PageParam},
		{name: "empty values skipped", params: Params{SignedDate: {""}, AgencyCode: {""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.params)

			if tt.wantParam == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			var apiErr *apierror.Error
			if !errors.As(err, &apiErr) || apiErr.Kind != apierror.KindValidation {
				t.Fatalf("Validate() error = %v, want validation error", err)
			}
			if apiErr.Parameter != tt.wantParam {
				t.Errorf("Parameter = %q, want %q", apiErr.Parameter, tt.wantParam)
			}
			if len(apiErr.Suggestions) == 0 {
				t.Error("Suggestions empty, want at least one")
			}
		})
	}
}

func TestValidate_HyphenatedRangeMessage(t *testing.T) {
	err := Validate(Params{SignedDate: {"2022/01/01-2024/12/31"}})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, SignedDate) {
		t.Errorf("Error %q does not name %s", msg, SignedDate)
	}
	if !strings.Contains(msg, "[2022/01/01, 2024/12/31]") {
		t.Errorf("Error %q does not suggest the bracketed form", msg)
	}
}

func TestBuildURL(t *testing.T) {
	p := Params{
		PIID:       {"ABC123"},
		SignedDate: {"[2024/01/01, 2024/01/31]"},
		VendorName: {""},
	}

	got, err := BuildURL(DefaultBaseURL, p, 1)
	if err != nil {
		t.Fatalf("BuildURL() error = %v", err)
	}
	if !strings.HasPrefix(got, DefaultBaseURL+"?") {
		t.Errorf("BuildURL() = %q, want prefix %q", got, DefaultBaseURL)
	}
	if strings.Contains(got, "page=") {
		t.Errorf("BuildURL(page 1) = %q, want no page parameter", got)
	}
	if strings.Contains(got, VendorName) {
		t.Errorf("BuildURL() = %q, want empty values skipped", got)
	}

	got, err = BuildURL(DefaultBaseURL, p, 3)
	if err != nil {
		t.Fatalf("BuildURL() error = %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get(PageParam) != "3" {
		t.Errorf("BuildURL(page 3) = %q, want page=3", got)
	}
}

func TestBuildURL_RoundTrip(t *testing.T) {
	cases := []Params{
		{},
		{PIID: {"ABC123"}},
		{PIID: {"A-1", "B-2", "C-3"}},
		{SignedDate: {"[2022/01/01, 2024/12/31]"}, AgencyCode: {"9700"}},
		{VendorName: {"Smith & Sons, Inc."}, "X": {"a=b?c#d"}},
		{VendorName: {"ünïcödé", "百度"}},
	}

	for _, p := range cases {
		for _, page := range []int{1, 2, 17} {
			raw, err := BuildURL(DefaultBaseURL, p, page)
			if err != nil {
				t.Fatalf("BuildURL(%v) error = %v", p, err)
			}

			decoded, gotPage, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", raw, err)
			}
			if gotPage != page {
				t.Errorf("Decode(%q) page = %d, want %d", raw, gotPage, page)
			}

			want := p
			if len(want) == 0 {
				want = Params{}
			}
			if !reflect.DeepEqual(decoded, want) {
				t.Errorf("Round trip of %v = %v", p, decoded)
			}
		}
	}
}

func TestBuildURL_KeepsBaseQuery(t *testing.T) {
	got, err := BuildURL(DefaultBaseURL+"?FEEDNAME=PUBLIC", Params{PIID: {"X1"}}, 1)
	if err != nil {
		t.Fatalf("BuildURL() error = %v", err)
	}
	q, _ := url.Parse(got)
	if q.Query().Get("FEEDNAME") != "PUBLIC" || q.Query().Get(PIID) != "X1" {
		t.Errorf("BuildURL() = %q", got)
	}
}

func TestBuildURL_InvalidBase(t *testing.T) {
	_, err := BuildURL("://nope", Params{}, 1)
	if !apierror.Is(err, apierror.KindValidation) {
		t.Errorf("BuildURL() error = %v, want validation error", err)
	}
}

func TestParamsHelpers(t *testing.T) {
	p := Params{}
	p.Set(PIID, "A").Add(PIID, "B")
	p.Set(AgencyCode, "9700")

	if got := p[PIID]; !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("PIID = %v, want [A B]", got)
	}
	if p.Get(AgencyCode) != "9700" || p.Get("missing") != "" {
		t.Errorf("Get() mismatch: %v", p)
	}

	c := p.Clone()
	c[PIID][0] = "Z"
	if p[PIID][0] != "A" {
		t.Error("Clone() shares backing arrays with the original")
	}
}

func TestDateRange(t *testing.T) {
	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	got := DateRange(from, to)
	if got != "[2024/01/05, 2024/02/01]" {
		t.Errorf("DateRange() = %q", got)
	}
	if err := Validate(Params{SignedDate: {got}}); err != nil {
		t.Errorf("Validate(DateRange()) error = %v", err)
	}
}
