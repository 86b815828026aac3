package trf5

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Element lookups on the detail page. Each one is the only place that knows
// where its piece of the layout lives, so a portal change touches one function.

// headerTexts returns the first two paragraphs that carry an inline style:
// the current case number and the legacy number, in that order.
func headerTexts(doc *goquery.Document) (current, legacy string) {
	styled := doc.Find("p[style]")
	return selectionText(styled.Eq(0)), selectionText(styled.Eq(1))
}

// filingText is the text of the first div, where the portal prints the
// filing ("autuação") line.
func filingText(doc *goquery.Document) string {
	return selectionText(doc.Find("div").First())
}

var reportingJudgeQueries = []string{
	`//td[contains(translate(normalize-space(.),'RELATOR','relator'),'relator')]/following-sibling::td[1]`,
	`//td[normalize-space(.)='Relator']/following-sibling::td[1]`,
}

// reportingJudgeText returns the cell after the "Relator" label.
func reportingJudgeText(doc *goquery.Document) string {
	if len(doc.Nodes) == 0 {
		return ""
	}
	root := doc.Nodes[0]
	for _, expr := range reportingJudgeQueries {
		n, err := htmlquery.Query(root, expr)
		if err != nil || n == nil {
			continue
		}
		if text := nodeText(n); text != "" {
			return text
		}
	}
	return ""
}

const partiesLabel = "Partes"

// partiesRows returns the rows of the parties table. A table headed by a
// "Partes" cell wins; otherwise the third table of the page is used.
func partiesRows(doc *goquery.Document) *goquery.Selection {
	label := doc.Find("td, th").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(selectionText(s), partiesLabel)
	}).First()
	if label.Length() > 0 {
		table := label.Closest("table")
		if table.Length() > 0 {
			return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
				return !tr.Find("td, th").IsSelection(label)
			})
		}
	}
	return doc.Find("table").Eq(2).Find("tr")
}

const eventMarker = "Em "

// eventTables returns every table whose text carries the "Em <date>" marker
// the portal prints in front of each procedural event.
func eventTables(doc *goquery.Document) *goquery.Selection {
	return doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), eventMarker)
	})
}
