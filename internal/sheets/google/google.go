package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"fracc/internal/core"
	"fracc/internal/format"
	ports "fracc/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends monthly reports to a year-prefixed sheet ("2025 Reportes").
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *slog.Logger
}

var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client for spreadsheetID. Without opts the service
// authenticates with service-account credentials from the environment.
func New(ctx context.Context, spreadsheetID, sheetBase string, logger *slog.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetBase = strings.TrimSpace(sheetBase)
	if sheetBase == "" {
		sheetBase = "Reportes"
	}
	if logger == nil {
		logger = slog.Default()
	}

	if len(opts) == 0 {
		creds, err := serviceAccountCredentials(ctx, logger)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet", spreadsheetID, "sheet_base", sheetBase)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: sheetBase, logger: logger}, nil
}

// serviceAccountCredentials reads GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func serviceAccountCredentials(ctx context.Context, logger *slog.Logger) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		logger.InfoContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteMonthReport appends the report block below whatever the sheet holds
// and returns the range the API reports as written.
func (c *Client) WriteMonthReport(ctx context.Context, r core.MonthReport) (string, error) {
	if !r.Month.Valid() {
		return "", fmt.Errorf("invalid report month %v", r.Month)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, r.Month.Year)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:F", quoteSheet(sheet))
	vr := &gsheet.ValueRange{Values: reportRows(r)}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append report to %s: %w", sheet, err)
	}

	ref := sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Report appended", "sheet", sheet, "range", ref, "rows", len(vr.Values))
	return ref, nil
}

// ensureSheet adds the tab when the spreadsheet does not have it yet.
func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.logger.InfoContext(ctx, "Created report sheet", "sheet", title)
	return nil
}

// reportRows lays out one report block: a title row, column headers, one
// row per payment, the totals and a blank separator.
func reportRows(r core.MonthReport) [][]any {
	rows := make([][]any, 0, len(r.Lines)+8)

	title := []any{"Reporte de ingresos", format.MonthLabel(r.Month), "Generado", r.GeneratedAt.Format("2006-01-02 15:04")}
	if r.RequestedBy != "" {
		title = append(title, "Solicitado por", r.RequestedBy)
	}
	rows = append(rows,
		title,
		[]any{"Fecha", "Transacción", "Residente", "Concepto", "Estado", "Monto"},
	)

	for _, l := range r.Lines {
		var amount any = l.Amount.Pesos()
		if !l.AmountValid {
			amount = "$" + l.RawAmount + " MXN"
		}
		rows = append(rows, []any{
			l.PaidAt.Format("02/01/2006"),
			l.TransactionID,
			l.Resident,
			l.Concept,
			string(l.Status),
			amount,
		})
	}

	summary := func(label string, v any) []any { return []any{"", "", "", "", label, v} }
	rows = append(rows,
		summary("Total cobrado", r.Overview.Paid.Pesos()),
		summary("Pendiente", r.Overview.Pending.Pesos()),
		summary("Vencido", r.Overview.Overdue.Pesos()),
		summary("Mes anterior", r.Previous.Paid.Pesos()),
		summary("Variación", r.DeltaLabel),
		[]any{},
	)
	return rows
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
