package ratesheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/rates"
)

var testHeader = []string{
	"provider_id", "provider_name", "city", "port",
	"vehicle_type", "vehicle_category", "shipping_usd", "estimated_days",
	"broker_mode", "broker_value",
}

func createTestSheet(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "rates.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestParseFile(t *testing.T) {
	path := createTestSheet(t, map[string][][]string{
		"Rates": {
			testHeader,
			{"p-7", "Poti Express", "Dallas", "Poti", "car", "standard", "1200", "45", "flat", "300"},
			{"", "", "", "", "", "", "", "", "", ""},
			{"p-9", "CaucasTrans", "dallas", "POTI", "suv", "electric", "1,350.50", "40", "percent", "250"},
		},
	})

	rows, err := ParseFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "p-7", first.ProviderID)
	assert.Equal(t, "dallas", first.City)
	assert.Equal(t, "poti", first.Port)
	assert.Equal(t, model.VehicleTypeCar, first.VehicleType)
	assert.EqualValues(t, 120_000, first.ShippingCents)
	assert.Equal(t, 45, first.EstimatedDays)
	assert.Equal(t, rates.BrokerFlat, first.BrokerMode)
	assert.EqualValues(t, 30_000, first.BrokerFlatCents)

	second := rows[1]
	assert.EqualValues(t, 135_050, second.ShippingCents)
	assert.Equal(t, rates.BrokerPercent, second.BrokerMode)
	assert.EqualValues(t, 250, second.BrokerPercentBps)
	assert.Zero(t, second.BrokerFlatCents)
}

func TestParseFileSheetName(t *testing.T) {
	path := createTestSheet(t, map[string][][]string{
		"Notes": {{"internal use only"}},
		"Rates": {
			testHeader,
			{"p-7", "Poti Express", "Dallas", "Poti", "car", "standard", "1200", "45", "flat", "300"},
		},
	})

	rows, err := ParseFile(path, Options{SheetName: "Rates"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ParseFile(path, Options{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParseFileBadHeader(t *testing.T) {
	path := createTestSheet(t, map[string][][]string{
		"Rates": {
			{"provider", "name", "city"},
			{"p-7", "Poti Express", "dallas"},
		},
	})

	_, err := ParseFile(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParseFileRowValidation(t *testing.T) {
	base := []string{"p-7", "Poti Express", "Dallas", "Poti", "car", "standard", "1200", "45", "flat", "300"}

	tests := []struct {
		name   string
		mutate func(row []string)
	}{
		{"empty provider id", func(r []string) { r[0] = "" }},
		{"empty city", func(r []string) { r[2] = " " }},
		{"unknown vehicle type", func(r []string) { r[4] = "boat" }},
		{"unknown category", func(r []string) { r[5] = "luxury" }},
		{"zero shipping", func(r []string) { r[6] = "0" }},
		{"malformed shipping", func(r []string) { r[6] = "12oo" }},
		{"zero days", func(r []string) { r[7] = "0" }},
		{"unknown broker mode", func(r []string) { r[8] = "hourly" }},
		{"negative bps", func(r []string) { r[8] = "percent"; r[9] = "-10" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := append([]string(nil), base...)
			tt.mutate(row)
			path := createTestSheet(t, map[string][][]string{
				"Rates": {testHeader, row},
			})

			_, err := ParseFile(path, Options{})
			assert.Error(t, err)
		})
	}
}

func TestParseUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1200", want: 120_000},
		{in: "1200.5", want: 120_050},
		{in: "1,350.50", want: 135_050},
		{in: "0.99", want: 99},
		{in: "1200.505", want: 120_050},
		{in: "-25.50", want: -2_550},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "12.x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseUSD(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tt.want, got)
		})
	}
}
