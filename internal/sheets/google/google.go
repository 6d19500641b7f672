// Package google exports transactions to a Google Sheets spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finsmart/internal/core"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

var _ ports.TransactionExporter = (*Exporter)(nil)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Exporter keeps one row per transaction id in a single sheet. Writes are
// serialised because row positions are computed from the current contents.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger

	mu sync.Mutex
}

// New builds an exporter authenticated with the configured service account.
// Extra options replace the credentials, which tests use to point the client
// at a fake server.
func New(ctx context.Context, cfg Config, logger *applog.Logger, opts ...goption.ClientOption) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Transactions"
	}

	if len(opts) == 0 {
		creds, err := loadCredentials(cfg)
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

	logger = logger.WithComponent(applog.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets exporter ready", "sheet", cfg.SheetName)
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (e *Exporter) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids from %s: %w", e.sheetName, err)
	}
	return resp.Values, nil
}

func (e *Exporter) writeRow(ctx context.Context, row int, values []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rowRange(e.sheetName, row), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in %s: %w", row, e.sheetName, err)
	}
	return nil
}

// UpsertTransaction rewrites the transaction's row in place, or writes it
// below the last used row. A header is added to an empty sheet.
func (e *Exporter) UpsertTransaction(ctx context.Context, t core.Transaction, categoryName string) (string, error) {
	if t.ID == "" {
		return "", errors.New("transaction id is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	values, err := e.readIDs(ctx)
	if err != nil {
		return "", err
	}

	row := findRow(values, t.ID)
	if row == 0 {
		if len(values) == 0 {
			if err := e.writeRow(ctx, 1, headerRow); err != nil {
				return "", err
			}
			values = append(values, headerRow[:1])
		}
		row = len(values) + 1
	}

	if err := e.writeRow(ctx, row, transactionRow(t, categoryName)); err != nil {
		return "", err
	}
	ref := rowRange(e.sheetName, row)
	e.logger.InfoContext(ctx, "Transaction exported",
		applog.FieldEntityID, t.ID,
		applog.FieldSheetsRef, ref)
	return ref, nil
}

// DeleteTransaction blanks the transaction's row. Rows are cleared rather
// than removed so other row references stay valid.
func (e *Exporter) DeleteTransaction(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	values, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(values, id)
	if row == 0 {
		e.logger.DebugContext(ctx, "Transaction not in sheet, nothing to delete", applog.FieldEntityID, id)
		return nil
	}

	rng := rowRange(e.sheetName, row)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	e.logger.InfoContext(ctx, "Transaction removed from sheet",
		applog.FieldEntityID, id,
		applog.FieldSheetsRef, rng)
	return nil
}
