// Package ratesheet parses provider rate sheets (XLSX workbooks dropped on
// FTP or shipped by e-mail) into provider_rates rows for bulk upsert.
package ratesheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
	"github.com/blessandsoul/project-x-sub001/internal/rates"
)

// Row is one shipping rule from a provider rate sheet, aligned with the
// provider_rates table.
type Row struct {
	ProviderID       string
	ProviderName     string
	City             string
	Port             string
	VehicleType      model.VehicleType
	VehicleCategory  model.VehicleCategory
	ShippingCents    money.Cents
	EstimatedDays    int
	BrokerMode       rates.BrokerMode
	BrokerFlatCents  money.Cents
	BrokerPercentBps int64
}

// sheetColumns is the expected header, in order. Sheets from providers vary
// in casing and padding but not in column order.
var sheetColumns = []string{
	"provider_id", "provider_name", "city", "port",
	"vehicle_type", "vehicle_category", "shipping_usd", "estimated_days",
	"broker_mode", "broker_value",
}

// Options configures sheet parsing.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ParseFile opens an XLSX workbook and parses its rate rows. The first row
// must be the header; blank rows are skipped.
func ParseFile(path string, opts Options) ([]Row, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ratesheet: open workbook")
	}
	return parseWorkbook(f, opts)
}

func parseWorkbook(f *xlsx.File, opts Options) ([]Row, error) {
	sheet, err := pickSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.New("ratesheet: sheet is empty")
	}

	if err := checkHeader(rowToStrings(sheet.Rows[0])); err != nil {
		return nil, err
	}

	var rows []Row
	for i, raw := range sheet.Rows[1:] {
		cells := rowToStrings(raw)
		if blankRow(cells) {
			continue
		}
		row, err := parseRow(cells)
		if err != nil {
			return nil, eris.Wrapf(err, "ratesheet: row %d", i+2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func pickSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ratesheet: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ratesheet: sheet index %d out of range (workbook has %d sheets)",
			opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func checkHeader(cells []string) error {
	if len(cells) < len(sheetColumns) {
		return eris.Errorf("ratesheet: header has %d columns, want %d", len(cells), len(sheetColumns))
	}
	for i, want := range sheetColumns {
		got := strings.ToLower(strings.TrimSpace(cells[i]))
		if got != want {
			return eris.Errorf("ratesheet: header column %d is %q, want %q", i+1, got, want)
		}
	}
	return nil
}

func parseRow(cells []string) (Row, error) {
	if len(cells) < len(sheetColumns) {
		return Row{}, eris.Errorf("has %d columns, want %d", len(cells), len(sheetColumns))
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}

	if cells[0] == "" {
		return Row{}, eris.New("provider_id is empty")
	}
	if cells[2] == "" || cells[3] == "" {
		return Row{}, eris.New("city and port must not be empty")
	}

	vtype, err := model.ParseVehicleType(cells[4])
	if err != nil {
		return Row{}, err
	}
	category, err := model.ParseVehicleCategory(cells[5])
	if err != nil {
		return Row{}, err
	}

	shipping, err := parseUSD(cells[6])
	if err != nil {
		return Row{}, eris.Wrap(err, "shipping_usd")
	}
	if shipping <= 0 {
		return Row{}, eris.New("shipping_usd must be positive")
	}

	days, err := strconv.Atoi(cells[7])
	if err != nil || days <= 0 {
		return Row{}, eris.Errorf("estimated_days %q must be a positive integer", cells[7])
	}

	row := Row{
		ProviderID:      cells[0],
		ProviderName:    cells[1],
		City:            strings.ToLower(cells[2]),
		Port:            strings.ToLower(cells[3]),
		VehicleType:     vtype,
		VehicleCategory: category,
		ShippingCents:   shipping,
		EstimatedDays:   days,
	}

	switch rates.BrokerMode(strings.ToLower(cells[8])) {
	case rates.BrokerFlat:
		flat, err := parseUSD(cells[9])
		if err != nil {
			return Row{}, eris.Wrap(err, "broker_value")
		}
		row.BrokerMode = rates.BrokerFlat
		row.BrokerFlatCents = flat
	case rates.BrokerPercent:
		bps, err := strconv.ParseInt(cells[9], 10, 64)
		if err != nil || bps < 0 {
			return Row{}, eris.Errorf("broker_value %q must be basis points", cells[9])
		}
		row.BrokerMode = rates.BrokerPercent
		row.BrokerPercentBps = bps
	default:
		return Row{}, eris.Errorf("broker_mode %q must be flat or percent", cells[8])
	}

	return row, nil
}

// parseUSD reads a decimal dollar amount ("1200", "1200.5", "1,200.50") into
// cents without going through floats.
func parseUSD(s string) (money.Cents, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, eris.New("empty amount")
	}

	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, eris.Errorf("malformed amount %q", s)
	}

	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, eris.Errorf("malformed amount %q", s)
		}
	}
	if dollars < 0 {
		return money.Cents(dollars*100 - cents), nil
	}
	return money.Cents(dollars*100 + cents), nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// Values flattens a Row for bulk upsert, matching UpsertColumns order.
func (r Row) Values(now time.Time) []any {
	return []any{
		r.ProviderID, r.ProviderName, r.City, r.Port,
		string(r.VehicleType), string(r.VehicleCategory),
		int64(r.ShippingCents), r.EstimatedDays,
		string(r.BrokerMode), int64(r.BrokerFlatCents), r.BrokerPercentBps,
		now,
	}
}

// UpsertColumns is the provider_rates column list for BulkUpsert.
var UpsertColumns = []string{
	"provider_id", "provider_name", "city", "port",
	"vehicle_type", "vehicle_category", "shipping_cents", "estimated_days",
	"broker_mode", "broker_flat_cents", "broker_percent_bps", "updated_at",
}

// ConflictKeys is the provider_rates primary key for BulkUpsert.
var ConflictKeys = []string{"provider_id", "city", "port", "vehicle_type", "vehicle_category"}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
