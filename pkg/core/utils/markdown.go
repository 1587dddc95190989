package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// EscapeTableCell makes a value safe to place inside a GFM table cell.
func EscapeTableCell(s string) string {
	return cellEscaper.Replace(s)
}

// CountTables parses GFM Markdown and returns the number of tables found.
func CountTables(input string) int {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(input)
	doc := md.Parser().Parse(text.NewReader(source))

	tables := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == east.KindTable {
			tables++
		}
		return ast.WalkContinue, nil
	})
	return tables
}

// ValidateMarkdown checks that the document parses and has content.
// Goldmark is very permissive, so this mostly catches empty output.
func ValidateMarkdown(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("MARKDOWN_EMPTY")
	}
	var buf bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.Table)).Convert([]byte(input), &buf); err != nil {
		return fmt.Errorf("MARKDOWN_RENDER_ERROR: %v", err)
	}
	return nil
}
