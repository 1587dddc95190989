// Package report renders a calculation result as a Markdown or HTML report.
package report

import (
	"fmt"
	"strings"

	"amplify_roi/pkg/core/analysis"
	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/utils"
	"amplify_roi/pkg/models"
)

const reportTitle = "ROI Analysis Report"

// BuildMarkdown renders the full report for one result as GFM Markdown.
// Amounts are formatted with f in the result's currency.
func BuildMarkdown(r *pipeline.Result, country models.CountryData, scenario models.ScenarioData, f pipeline.CurrencyFormatter) string {
	money := func(v float64) string { return utils.EscapeTableCell(f.Format(v, r.CurrencyCode)) }
	m := r.Metrics

	var b strings.Builder

	// 1. Header and summary
	fmt.Fprintf(&b, "# %s\n\n", reportTitle)
	fmt.Fprintf(&b, "- **Calculation:** %s\n", r.CalculationID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.Timestamp.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- **Country:** %s (%s)\n", country.Name, r.CurrencyCode)
	fmt.Fprintf(&b, "- **Scenario:** %s\n", r.InputSummary.BusinessType)
	if scenario.Description != "" {
		fmt.Fprintf(&b, "- **Description:** %s\n", scenario.Description)
	}
	fmt.Fprintf(&b, "- **Timeframe:** %d months\n\n", r.InputSummary.TimeframeMonths)

	// 2. Key metrics
	b.WriteString("## Key Metrics\n\n| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| ROI | %s |\n", percent(m.ROIPercentage))
	fmt.Fprintf(&b, "| Net Profit | %s |\n", money(m.NetProfit))
	fmt.Fprintf(&b, "| Gross Profit | %s |\n", money(m.GrossProfit))
	fmt.Fprintf(&b, "| Total Revenue | %s |\n", money(m.TotalRevenue))
	fmt.Fprintf(&b, "| Total Expenses | %s |\n", money(m.TotalExpenses))
	fmt.Fprintf(&b, "| Initial Investment | %s |\n", money(r.InputSummary.InitialInvestment))
	fmt.Fprintf(&b, "| Total Capital Deployed | %s |\n", money(m.TotalInvestment))
	fmt.Fprintf(&b, "| NPV (10%% p.a.) | %s |\n", money(m.NPV))
	if v, ok := m.IRR.Value(); ok {
		fmt.Fprintf(&b, "| IRR (annualized) | %s |\n", percent(v))
	} else {
		b.WriteString("| IRR (annualized) | n/a |\n")
	}
	if v, ok := m.Payback.Value(); ok {
		fmt.Fprintf(&b, "| Payback Period | %.1f months |\n", v)
	} else {
		b.WriteString("| Payback Period | not reached |\n")
	}
	b.WriteString("\n")

	// 3. Tax
	t := r.TaxCalculation
	b.WriteString("## Tax\n\n| Tax | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Corporate Tax | %s |\n", money(t.CorporateTax))
	fmt.Fprintf(&b, "| VAT | %s |\n", money(t.VATTax))
	fmt.Fprintf(&b, "| Payroll Tax | %s |\n", money(t.PayrollTax))
	fmt.Fprintf(&b, "| Total Tax | %s |\n", money(t.TotalTax))
	fmt.Fprintf(&b, "| Effective Rate | %s |\n", percent(t.EffectiveTaxRate))
	fmt.Fprintf(&b, "| After-Tax Profit | %s |\n\n", money(t.AfterTaxProfit))

	// 4. Breakdowns
	writeBreakdown(&b, "Revenue Breakdown", r.RevenueBreakdown, money)
	writeBreakdown(&b, "Expense Breakdown", r.ExpenseBreakdown, money)

	// 5. Monthly projections
	b.WriteString("## Monthly Projections\n\n| Month | Revenue | Expenses | Profit | Cumulative | ROI |\n|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range r.MonthlyProjections {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			p.Month, money(p.Revenue), money(p.Expenses), money(p.Profit), money(p.CumulativeProfit), percent(p.ROI))
	}
	b.WriteString("\n")

	// 6. Narrative
	writeList(&b, "Insights", r.Insights)
	writeList(&b, "Recommendations", r.Recommendations)
	writeList(&b, "Risk Factors", r.RiskFactors)

	return b.String()
}

func writeBreakdown(b *strings.Builder, title string, items []analysis.BreakdownItem, money func(float64) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n| Category | Amount | Share | Description |\n|---|---:|---:|---|\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			utils.EscapeTableCell(it.Category), money(it.Amount), percent(it.Percentage), utils.EscapeTableCell(it.Description))
	}
	b.WriteString("\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, s := range items {
		fmt.Fprintf(b, "- %s\n", s)
	}
	b.WriteString("\n")
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
