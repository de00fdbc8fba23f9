package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blessandsoul/project-x-sub001/internal/model"
)

func TestRenderQuotes(t *testing.T) {
	quotes := []model.Quote{
		{
			ProviderID:        "p-9",
			ProviderName:      "CaucasTrans",
			VehiclePriceCents: 1_200_000,
			ShippingCents:     110_000,
			CustomsCents:      50_000,
			BrokerCents:       30_000,
			TotalCents:        1_390_000,
			EstimatedDays:     40,
			IsBest:            true,
		},
		{
			ProviderID:        "p-7",
			ProviderName:      "Poti Express",
			VehiclePriceCents: 1_200_000,
			ShippingCents:     120_000,
			CustomsCents:      50_000,
			BrokerCents:       30_000,
			TotalCents:        1_400_000,
			EstimatedDays:     45,
		},
	}

	var sb strings.Builder
	renderQuotes(&sb, quotes)
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PROVIDER")
	assert.Contains(t, lines[1], "CaucasTrans")
	assert.Contains(t, lines[1], "$13,900.00")
	assert.Contains(t, lines[1], "*")
	assert.Contains(t, lines[2], "Poti Express")
	assert.NotContains(t, lines[2], "*")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "sweep", "quote", "migrate", "rates"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
