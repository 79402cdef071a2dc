package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"worklog/internal/core"
	"worklog/internal/services"
)

func TestParsePeriodParam(t *testing.T) {
	tests := []struct {
		query   string
		want    core.Period
		wantErr bool
	}{
		{"", core.PeriodWeek, false},
		{"period=MONTH", core.PeriodMonth, false},
		{"period=year", core.PeriodYear, false},
		{"period=quarter", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := parsePeriodParam(q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("period = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDateParam(t *testing.T) {
	got, err := parseDateParam(url.Values{"date": {" 2024-02-29 "}}, "date")
	if err != nil || got.String() != "2024-02-29" {
		t.Fatalf("got %v, %v", got, err)
	}
	if got, _ := parseDateParam(url.Values{}, "date"); got.String() != core.Today().String() {
		t.Fatalf("default = %v, want today", got)
	}
	if _, err := parseDateParam(url.Values{"date": {"2024-02-30"}}, "date"); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseJobFilter(t *testing.T) {
	if got := parseJobFilter(url.Values{}); got != core.AllJobs {
		t.Fatalf("default = %q", got)
	}
	if got := parseJobFilter(url.Values{"job": {" job-1\x00 "}}); got != "job-1" {
		t.Fatalf("sanitized = %q", got)
	}
}

func TestParseExportFilter(t *testing.T) {
	f, err := parseExportFilter(url.Values{"year": {"2024"}, "month": {"2"}, "job": {"job-2"}})
	if err != nil {
		t.Fatalf("parseExportFilter: %v", err)
	}
	if f.Year != 2024 || f.Month != 2 || f.JobID != "job-2" {
		t.Fatalf("filter = %+v", f)
	}
	for _, q := range []url.Values{{"month": {"0x1"}}, {"month": {"-1"}}, {"year": {"-5"}}} {
		if _, err := parseExportFilter(q); !errors.Is(err, errInvalidParam) {
			t.Fatalf("%v: expected errInvalidParam, got %v", q, err)
		}
	}
}

func TestParseEntryRequest(t *testing.T) {
	body := `{"id":"from-body","jobId":" job-1 ","date":"2024-03-11","entryType":"status","status":" holiday\u0001"}`
	req := httptest.NewRequest(http.MethodPut, "/api/entries/x", strings.NewReader(body))
	e, err := parseEntryRequest(httptest.NewRecorder(), req, "from-path")
	if err != nil {
		t.Fatalf("parseEntryRequest: %v", err)
	}
	if e.ID != "from-path" || e.JobID != "job-1" {
		t.Fatalf("entry = %+v", e)
	}
	if s, ok := e.Kind.(core.DayStatus); !ok || s.Status != "holiday" {
		t.Fatalf("kind = %#v", e.Kind)
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(big))
	var v jobRequest
	if err := decodeJSON(httptest.NewRecorder(), req, &v); !errors.Is(err, errMalformedBody) {
		t.Fatalf("expected errMalformedBody, got %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errMalformedBody, http.StatusBadRequest},
		{services.ErrJobNotFound, http.StatusNotFound},
		{services.ErrEntryNotFound, http.StatusNotFound},
		{core.ErrInvalidEntry, http.StatusUnprocessableEntity},
		{core.ErrInvalidPeriod, http.StatusUnprocessableEntity},
		{unknownJobIsInvalid(services.ErrJobNotFound), http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), "test", errors.New("sqlite: database is locked"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "sqlite") {
		t.Fatalf("internal error leaked: %s", rr.Body)
	}
}

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/x").Body(map[string]int{"a": 1}).Write(rr)
	if rr.Code != http.StatusCreated || rr.Header().Get("Location") != "/x" {
		t.Fatalf("status=%d headers=%v", rr.Code, rr.Header())
	}
	if strings.TrimSpace(rr.Body.String()) != `{"a":1}` {
		t.Fatalf("body = %q", rr.Body)
	}

	rr = httptest.NewRecorder()
	NewJSONResponse().Body(func() {}).Write(rr)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unencodable body status = %d", rr.Code)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\x1f "); got != "ab\tc" {
		t.Fatalf("sanitizeInput() = %q", got)
	}
}
