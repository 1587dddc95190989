package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/utils"
	"amplify_roi/pkg/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// CSS classes added during post-processing.
const (
	TableClass    = "roi-table"
	NegativeClass = "negative"
)

const pageStyle = `body{font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;max-width:960px;margin:2rem auto;color:#1f2937}
table.roi-table{border-collapse:collapse;width:100%;margin-bottom:1.5rem}
table.roi-table th,table.roi-table td{border:1px solid #e5e7eb;padding:.4rem .6rem}
td.negative{color:#b91c1c}`

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Export is a rendered report.
type Export struct {
	Markdown string
	HTML     string
}

// Size is the HTML payload size in bytes.
func (e Export) Size() int64 {
	return int64(len(e.HTML))
}

// Build renders both the Markdown and the HTML form of a report.
func Build(r *pipeline.Result, country models.CountryData, scenario models.ScenarioData, f pipeline.CurrencyFormatter) (Export, error) {
	md := BuildMarkdown(r, country, scenario, f)
	page, err := RenderHTML(md, reportTitle)
	if err != nil {
		return Export{}, err
	}
	return Export{Markdown: md, HTML: page}, nil
}

// RenderHTML converts report Markdown into a standalone HTML page. Tables get
// TableClass and cells holding negative amounts get NegativeClass.
func RenderHTML(markdown, title string) (string, error) {
	if err := utils.ValidateMarkdown(markdown); err != nil {
		return "", fmt.Errorf("invalid report markdown: %w", err)
	}

	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	page := fmt.Sprintf("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>%s</body></html>",
		html.EscapeString(title), pageStyle, body.String())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered html: %w", err)
	}

	doc.Find("table").AddClass(TableClass)
	doc.Find("td").Each(func(_ int, cell *goquery.Selection) {
		if isNegativeAmount(strings.TrimSpace(cell.Text())) {
			cell.AddClass(NegativeClass)
		}
	})

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("failed to serialize html: %w", err)
	}
	return out, nil
}

// isNegativeAmount matches formatted values such as "-$1,200.00", "-12.5%"
// or "EUR -3.00".
func isNegativeAmount(s string) bool {
	if strings.HasPrefix(s, "-") {
		return len(s) > 1
	}
	if i := strings.Index(s, " -"); i >= 0 {
		return i+2 < len(s)
	}
	return false
}
