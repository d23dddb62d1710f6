// Package sheets pushes daily financial snapshots into a Google Sheet so the
// farm owner can follow the numbers without touching the application.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/RandySimanca/avicola/internal/domain/models"
)

const summaryRange = "Resumen!A:J"

// Exporter appends summary rows to a spreadsheet.
type Exporter interface {
	AppendSummary(ctx context.Context, summary models.GlobalSummary, kpis models.GlobalKPIs) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, credentialsPath, spreadsheetID string, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// AppendSummary writes one row with the day's financial snapshot.
func (e *GoogleSheetExporter) AppendSummary(ctx context.Context, summary models.GlobalSummary, kpis models.GlobalKPIs) error {
	row := []interface{}{
		summary.GeneratedAt.Format("2006-01-02 15:04"),
		summary.CashFlow.TotalIncome,
		summary.CashFlow.OperatingExpenses,
		summary.CashFlow.Investment,
		summary.CashFlow.CashOnHand,
		summary.Balance.InventoryValue,
		summary.Balance.NetWorth,
		summary.Result.OperatingProfit,
		kpis.LiveBirds,
		kpis.EggsToday,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, summaryRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append summary into range %s: %w", summaryRange, err)
	}

	e.logger.Debug("summary appended to sheet", zap.String("range", summaryRange))
	return nil
}
