package trf5

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSpace composes the text to NFC, collapses every run of whitespace
// (no-break spaces included) into one space and trims both ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func selectionText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return NormalizeSpace(sel.Text())
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return NormalizeSpace(htmlquery.InnerText(n))
}

// 空字符串记为 null
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
