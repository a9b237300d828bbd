package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/fpds-client/internal/testutil"
	"github.com/Sternrassler/fpds-client/pkg/records"
)

// run executes the CLI against the mock feed with fast retries.
func run(t *testing.T, mock *testutil.MockFPDS, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	full := []string{"fpds", "--log-level", "error", "--retry-delay", "0s", "--retry-attempts", "1"}
	if mock != nil {
		full = append(full, "--base-url", mock.URL())
	}
	full = append(full, args...)

	err := newApp(&stdout, &stderr).Run(full)
	return stdout.String(), stderr.String(), err
}

func TestFieldsCommand(t *testing.T) {
	out, _, err := run(t, nil, "fields", "--format", "csv")
	if err != nil {
		t.Fatalf("fields error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != len(records.Fields)+1 {
		t.Errorf("fields printed %d lines, want %d", len(lines), len(records.Fields)+1)
	}
	if lines[0] != "name,kind,path,description" {
		t.Errorf("Header = %q", lines[0])
	}

	out, _, err = run(t, nil, "fields")
	if err != nil {
		t.Fatalf("fields error = %v", err)
	}
	if !strings.Contains(out, "contract_hash") || !strings.Contains(out, "content.award.awardID") {
		t.Errorf("fields table missing expected rows:\n%s", out)
	}
}

func TestSearch_SingleQueryCSV(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()
	mock.Route("ABC123", 1, testutil.NewFeedResponse(testutil.Feed(
		testutil.Award{PIID: "ABC123", VendorName: "Jane, Q.", ObligatedAmount: "100"},
		testutil.Award{PIID: "ABC123", ModNumber: "P00001", VendorName: "Plain"},
	)))

	out, _, err := run(t, mock, "search", "--param", "PIID=ABC123", "--format", "csv")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "contract_number,") {
		t.Errorf("Header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Jane, Q."`) {
		t.Errorf("Row 1 = %q, want quoted vendor", lines[1])
	}
}

func TestSearch_MultiContract(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()
	mock.Route("A-1", 1, testutil.NewServerErrorResponse())
	mock.Route("B-2", 1, testutil.NewFeedResponse(testutil.Feed(
		testutil.Award{PIID: "B-2", SignedDate: "2024-01-02 00:00:00"},
	)))

	out, errOut, err := run(t, mock,
		"search",
		"--piid", "A-1", "--piid", "B-2",
		"--date-range", "[2024/01/01, 2024/12/31]",
		"--tag", "run=nightly",
	)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	var recs []records.ContractRecord
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(recs) != 1 || recs[0].ContractNumber != "B-2" {
		t.Fatalf("Records = %+v, want only B-2", recs)
	}
	if recs[0].Metadata["contract_id"] != "B-2" || recs[0].Metadata["run"] != "nightly" {
		t.Errorf("Metadata = %v", recs[0].Metadata)
	}
	if !strings.Contains(errOut, "warning: A-1") {
		t.Errorf("stderr = %q, want warning for A-1", errOut)
	}

	for _, q := range mock.Queries() {
		if !strings.Contains(q, "SIGNED_DATE=") {
			t.Errorf("Query %q lacks the shared date range", q)
		}
	}
}

func TestSearch_AllContractsFail(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()
	mock.Route("A-1", 1, testutil.NewServerErrorResponse())

	_, _, err := run(t, mock, "search", "--piid", "A-1")
	if err == nil || !strings.Contains(err.Error(), "all 1 contract queries failed") {
		t.Errorf("search error = %v, want all-failed error", err)
	}
}

func TestSearch_ValidationError(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()

	_, _, err := run(t, mock, "search", "--date-range", "2022/01/01-2024/12/31")
	if err == nil || !strings.Contains(err.Error(), "SIGNED_DATE") {
		t.Errorf("search error = %v, want SIGNED_DATE validation error", err)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0", mock.RequestCount())
	}
}

func TestSearch_StreamJSONLines(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()
	mock.Route("", 1, testutil.NewFeedResponse(testutil.Feed(
		testutil.Award{PIID: "S1"},
		testutil.Award{PIID: "S2"},
	)))

	out, _, err := run(t, mock, "search", "--stream")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("stream wrote %d lines, want 2:\n%s", len(lines), out)
	}
	var r records.ContractRecord
	if err := json.Unmarshal([]byte(lines[1]), &r); err != nil || r.ContractNumber != "S2" {
		t.Errorf("line 2 = %q (err %v)", lines[1], err)
	}
}

func TestSearch_StreamRejectsTable(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()

	if _, _, err := run(t, mock, "search", "--stream", "--format", "table"); err == nil {
		t.Error("search --stream --format table error = nil, want error")
	}
}

func TestSearch_OutputFile(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()
	mock.Route("", 1, testutil.NewFeedResponse(testutil.Feed(testutil.Award{PIID: "F1"})))

	path := filepath.Join(t.TempDir(), "out.json")
	out, _, err := run(t, mock, "search", "--output", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty when writing to a file", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"contract_number": "F1"`) {
		t.Errorf("output file = %s", data)
	}
}

func TestSearch_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad param", args: []string{"search", "--param", "NOEQUALS"}},
		{name: "bad format", args: []string{"search", "--format", "xml"}},
		{name: "bad tag", args: []string{"search", "--piid", "A", "--tag", "=x"}},
		{name: "zero concurrency", args: []string{"--concurrency", "0", "search"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockFPDS()
			defer mock.Close()

			if _, _, err := run(t, mock, tt.args...); err == nil {
				t.Error("error = nil, want error")
			}
			if mock.RequestCount() != 0 {
				t.Errorf("RequestCount = %d, want 0", mock.RequestCount())
			}
		})
	}
}

func TestParsePairs(t *testing.T) {
	p, err := parsePairs([]string{"PIID=A", "PIID=B", "VENDOR_NAME=Smith=Jones"})
	if err != nil {
		t.Fatalf("parsePairs() error = %v", err)
	}
	if strings.Join(p["PIID"], ",") != "A,B" {
		t.Errorf("PIID = %v", p["PIID"])
	}
	if p.Get("VENDOR_NAME") != "Smith=Jones" {
		t.Errorf("VENDOR_NAME = %q", p.Get("VENDOR_NAME"))
	}
}

func TestFlagsOverrideInvalidConfigFile(t *testing.T) {
	mock := testutil.NewMockFPDS()
	defer mock.Close()
	mock.Route("ABC123", 1, testutil.NewFeedResponse(testutil.Feed(testutil.Award{PIID: "ABC123"})))

	path := filepath.Join(t.TempDir(), "fpds.yaml")
	if err := os.WriteFile(path, []byte("retry_attempts: 0\nmax_concurrency: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// run passes --retry-attempts 1; concurrency is corrected here.
	out, _, err := run(t, mock, "--config", path, "--concurrency", "2", "search", "--param", "PIID=ABC123")
	if err != nil {
		t.Fatalf("search error = %v, want flags to override the file", err)
	}
	if !strings.Contains(out, "ABC123") {
		t.Errorf("Output missing record:\n%s", out)
	}

	// Without the override the file value is still rejected.
	_, _, err = run(t, mock, "--config", path, "search", "--param", "PIID=ABC123")
	if err == nil || !strings.Contains(err.Error(), "max_concurrency") {
		t.Errorf("search error = %v, want max_concurrency validation error", err)
	}
}
