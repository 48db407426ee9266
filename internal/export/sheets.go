// Package export appends month-report rows to a Google Sheet so a user's
// ledger can be reviewed outside the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"timebudget/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsExporter writes one row per month summary to a configured sheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates an exporter authenticated with service-account credentials,
// either inline JSON or a file path (inline wins when both are set).
func New(ctx context.Context, spreadsheetID, sheetName, credentialsJSON, credentialsFile string) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	creds := []byte(credentialsJSON)
	if len(creds) == 0 {
		if credentialsFile == "" {
			return nil, errors.New("missing service account credentials")
		}
		var err error
		creds, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendMonthReport appends one summary row:
// user, month, budget, spent, remaining, daily allowance, exported-at.
func (e *SheetsExporter) AppendMonthReport(ctx context.Context, userID int64, month string, s core.Summary) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		userID,
		month,
		s.TotalBudget.Float(),
		s.TotalExpenses.Float(),
		s.Remaining.Float(),
		s.DailyBudget.Float(),
		time.Now().Format(time.RFC3339),
	}}}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append month report to %s: %w", e.sheetName, err)
	}
	return nil
}
