// Package mirror pushes the ledger view into an external spreadsheet so the
// household keeps a human-readable copy outside the application. The mirror
// is one-directional: the ledger is the source of truth, the sheet is
// overwritten wholesale on every sync.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"registro/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Target receives full ledger snapshots.
type Target interface {
	Replace(ctx context.Context, ledger []core.FinancialRecord) error
}

// GoogleSheets mirrors the ledger into a single sheet of a spreadsheet.
type GoogleSheets struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ Target = (*GoogleSheets)(nil)

// header matches the CSV export column order.
var header = []any{"Fecha", "Tipo", "Monto", "Dimensión", "Subdimensión", "Descripción", "Usuario ID"}

// NewGoogleSheets builds a sheets client with service account credentials.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewGoogleSheets(ctx context.Context, spreadsheetID, sheetName string) (*GoogleSheets, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &GoogleSheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Replace clears the sheet and writes the ledger in its current order,
// header row first. An empty ledger leaves just the header.
func (g *GoogleSheets) Replace(ctx context.Context, ledger []core.FinancialRecord) error {
	if g.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:G", g.sheetName)
	if _, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := make([][]any, 0, len(ledger)+1)
	values = append(values, header)
	for _, rec := range ledger {
		values = append(values, []any{
			rec.Date,
			string(rec.Type),
			rec.Amount,
			rec.Dimension,
			rec.SubDimension,
			rec.Description,
			rec.ActorID,
		})
	}

	writeRange := fmt.Sprintf("%s!A1", g.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}

	slog.InfoContext(ctx, "Ledger mirrored to spreadsheet",
		"spreadsheet_id", g.spreadsheetID,
		"sheet", g.sheetName,
		"record_count", len(ledger))
	return nil
}
