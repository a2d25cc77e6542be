package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"

	"fracc/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Reportes", 2025, "2025 Reportes"},
		{"", 2023, ""},
		{"Ingresos Mensuales", 2022, "2022 Ingresos Mensuales"},
		{"2025 Ya Prefijado", 2024, "2025 Ya Prefijado"},
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.baseName, tt.year, got, tt.expected)
		}
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Reportes", nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "Reportes", nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/non/existent/sa.json")

	_, err := New(context.Background(), "sheet-id", "Reportes", nil)
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got: %v", err)
	}
}

func sampleReport() core.MonthReport {
	return core.MonthReport{
		Month: core.YearMonth{Year: 2025, Month: time.March},
		Overview: core.MonthOverview{
			Paid:    core.Money{Cents: 150050},
			Pending: core.Money{Cents: 20000},
		},
		Previous:    core.MonthOverview{Paid: core.Money{Cents: 100000}},
		DeltaLabel:  "+50.1%",
		RequestedBy: "Admin Fracc",
		GeneratedAt: time.Date(2025, time.April, 1, 9, 30, 0, 0, time.UTC),
		Lines: []core.ReportLine{
			{
				TransactionID: 11, PaidAt: time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC),
				Resident: "Ana López", Concept: "Cuota de Mantenimiento", Status: core.PaymentPaid,
				Amount: core.Money{Cents: 150050}, RawAmount: "1500.50", AmountValid: true,
			},
			{
				TransactionID: 12, PaidAt: time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC),
				Resident: "Persona #8", Concept: "Otro pago", Status: core.PaymentPending,
				RawAmount: "abc",
			},
		},
	}
}

func TestReportRows(t *testing.T) {
	rows := reportRows(sampleReport())

	if len(rows) != 2+2+5+1 {
		t.Fatalf("reportRows() produced %d rows", len(rows))
	}
	if rows[0][1] != "Marzo 2025" || rows[0][5] != "Admin Fracc" {
		t.Errorf("title row = %v", rows[0])
	}
	if rows[1][0] != "Fecha" || rows[1][5] != "Monto" {
		t.Errorf("header row = %v", rows[1])
	}
	first := rows[2]
	if first[0] != "03/03/2025" || first[2] != "Ana López" || first[4] != "Pagado" || first[5] != 1500.50 {
		t.Errorf("first payment row = %v", first)
	}
	if got := rows[3][5]; got != "$abc MXN" {
		t.Errorf("unparseable amount cell = %v, want literal fallback", got)
	}
	if rows[4][4] != "Total cobrado" || rows[4][5] != 1500.50 {
		t.Errorf("paid total row = %v", rows[4])
	}
	if rows[8][4] != "Variación" || rows[8][5] != "+50.1%" {
		t.Errorf("delta row = %v", rows[8])
	}
	if len(rows[9]) != 0 {
		t.Errorf("last row should be a blank separator, got %v", rows[9])
	}
}

// fakeSheets answers the three Sheets API calls WriteMonthReport makes.
type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	added    []string
	appended [][]any
	rng      string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/v4/spreadsheets/sheet-id"):
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.added = append(f.added, rq.AddSheet.Properties.Title)
			f.titles = append(f.titles, rq.AddSheet.Properties.Title)
		}
		io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.appended = append(f.appended, vr.Values...)
		f.rng = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "'2025 Reportes'!A1:F10"},
		})

	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), "sheet-id", "Reportes", nil,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestWriteMonthReport_CreatesYearSheet(t *testing.T) {
	f := &fakeSheets{titles: []string{"2024 Reportes"}}
	c := newFakeClient(t, f)

	ref, err := c.WriteMonthReport(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("WriteMonthReport() error = %v", err)
	}
	if ref != "'2025 Reportes'!A1:F10" {
		t.Errorf("ref = %q", ref)
	}
	if len(f.added) != 1 || f.added[0] != "2025 Reportes" {
		t.Errorf("added sheets = %v, want [2025 Reportes]", f.added)
	}
	if len(f.appended) != 10 {
		t.Errorf("appended %d rows, want 10", len(f.appended))
	}
	if !strings.Contains(f.rng, "2025 Reportes") {
		t.Errorf("append range %q should target the year sheet", f.rng)
	}
}

func TestWriteMonthReport_ReusesExistingSheet(t *testing.T) {
	f := &fakeSheets{titles: []string{"2025 Reportes"}}
	c := newFakeClient(t, f)

	if _, err := c.WriteMonthReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("WriteMonthReport() error = %v", err)
	}
	if len(f.added) != 0 {
		t.Errorf("no sheet should be added, got %v", f.added)
	}
}

func TestWriteMonthReport_RejectsInvalidMonth(t *testing.T) {
	c := &Client{spreadsheetID: "sheet-id", sheetBase: "Reportes"}
	if _, err := c.WriteMonthReport(context.Background(), core.MonthReport{}); err == nil {
		t.Fatal("expected an error for the zero month")
	}
	r := sampleReport()
	if _, err := c.WriteMonthReport(context.Background(), r); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}
