// Package sheet reads order queues from Excel workbooks and writes the
// visible part of the queue back out.
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the worksheet written by Export
const ExportSheetName = "Awaiting shipment"

// FileSource loads orders from a workbook. It implements domain.OrderSource.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source for the workbook at path
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger}
}

var _ domain.OrderSource = (*FileSource)(nil)

// Name implements domain.OrderSource
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// FetchOrders implements domain.OrderSource
func (s *FileSource) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orders, skipped, err := Import(s.path)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("skipped workbook rows", "file", s.path, "rows", skipped)
	}
	return orders, nil
}

// Import reads orders from the first worksheet of the workbook at path.
// The first row is the header. Rows without any value are skipped and counted.
func Import(path string) (orders []domain.Order, skipped int, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no worksheet found in %s", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read worksheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("worksheet %q is empty", sheetName)
	}

	keys := headerKeys(rows[0])
	if !contains(keys, domain.ColumnTracking) {
		return nil, 0, fmt.Errorf("worksheet %q has no tracking number column", sheetName)
	}

	for _, row := range rows[1:] {
		o, ok := orderFromRow(keys, row)
		if !ok {
			skipped++
			continue
		}
		orders = append(orders, o)
	}
	return orders, skipped, nil
}

// headerKeys resolves each header cell to a column key.
// Unresolved headers and repeats of an already-bound column map to "".
func headerKeys(header []string) []string {
	keys := make([]string, len(header))
	seen := make(map[string]bool)
	for i, h := range header {
		key, ok := ResolveColumn(h)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		keys[i] = key
	}
	return keys
}

func orderFromRow(keys []string, row []string) (domain.Order, bool) {
	var o domain.Order
	empty := true
	for i, cell := range row {
		if i >= len(keys) {
			break
		}
		cell = strings.TrimSpace(cell)
		if cell != "" {
			empty = false
		}
		switch keys[i] {
		case domain.ColumnShop:
			o.Shop = cell
		case domain.ColumnOrderDate:
			o.OrderDate = cell
		case domain.ColumnPosting:
			o.PostingNumber = cell
		case domain.ColumnSKU:
			o.SKU = cell
		case domain.ColumnProduct:
			o.ProductName = cell
		case domain.ColumnQuantity:
			o.Quantity = parseQuantity(cell)
		case domain.ColumnTracking:
			o.TrackingNumber = cell
		case domain.ColumnWarehouse:
			o.Warehouse = cell
		}
	}
	return o, !empty
}

// parseQuantity accepts "3" and spreadsheet floats like "3.0"
func parseQuantity(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f)
	}
	return 0
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Export writes orders to a new workbook at path using the table column layout
func Export(path string, orders []domain.Order) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]interface{}, len(domain.OrderColumns))
	for i, c := range domain.OrderColumns {
		header[i] = c.Label
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(ExportSheetName, col, col, float64(c.Width+2)); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(ExportSheetName, 1, 1, bold); err != nil {
		return err
	}

	for r, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, 0, len(domain.OrderColumns))
		for i, v := range o.Values() {
			if domain.OrderColumns[i].Key == domain.ColumnQuantity {
				values = append(values, o.Quantity)
				continue
			}
			values = append(values, v)
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// ExportFileName names an export after the shop and the time it was taken
func ExportFileName(shop string, t time.Time) string {
	part := strings.ReplaceAll(strings.TrimSpace(shop), " ", "_")
	if r := []rune(part); len(r) > 20 {
		part = string(r[:20])
	}
	if part == "" {
		part = "shop"
	}
	return fmt.Sprintf("orders_%s_%s.xlsx", part, t.Format("20060102_150405"))
}
