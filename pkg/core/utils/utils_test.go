package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Country        string   `json:"country"`
	MonthlyRevenue float64  `json:"monthly_revenue"`
	GrossMargin    *float64 `json:"gross_margin,omitempty"`
}

func TestSmartParse_Strategies(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		strategy string
	}{
		{"strict json", `{"country":"US","monthly_revenue":5000}`, StrategyJSON},
		{"trailing comma", `{"country":"US","monthly_revenue":5000,}`, StrategyRepair},
		{"single quotes", `{'country': 'US', 'monthly_revenue': 5000}`, StrategyRepair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s sample
			got, err := SmartParse([]byte(tt.input), &s)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, got)
			assert.Equal(t, "US", s.Country)
			assert.Equal(t, 5000.0, s.MonthlyRevenue)
		})
	}
}

func TestSmartParse_RejectsGarbage(t *testing.T) {
	var s sample
	_, err := SmartParse([]byte(`{"country": "US", "monthly_revenue": "lots"}`), &s)
	assert.Error(t, err)
}

func TestDecodeHJSON(t *testing.T) {
	input := `
	# comment
	country: GB
	monthly_revenue: 1200
	gross_margin: 0.4
	`
	var s sample
	require.NoError(t, DecodeHJSON([]byte(input), &s))
	assert.Equal(t, "GB", s.Country)
	require.NotNil(t, s.GrossMargin)
	assert.Equal(t, 0.4, *s.GrossMargin)
}

func TestMarkdownHelpers(t *testing.T) {
	md := "# Title\n\n| a | b |\n|---|---|\n| " + EscapeTableCell("x|y") + " | 2 |\n"
	assert.Equal(t, 1, CountTables(md))
	assert.NoError(t, ValidateMarkdown(md))
	assert.Error(t, ValidateMarkdown("   "))
	assert.Equal(t, `x\|y`, EscapeTableCell("x|y"))
}
