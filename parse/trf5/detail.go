package trf5

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"trf5-crawler/collect"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var leadingColonRe = regexp.MustCompile(`^[:\s]+`)

// ParseDetail turns a detail page into one stored CaseRecord.
func ParseDetail(ctx *collect.Context) (collect.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ctx.Body))
	if err != nil {
		return collect.ParseResult{}, fmt.Errorf("parse detail page %s: %w", ctx.Req.Url, err)
	}

	record, gaps := extract(doc, ctx.Req.Url)
	logger := ctx.Req.Task.Log()
	for _, gap := range gaps {
		logger.Debug("extraction gap",
			zap.String("url", ctx.Req.Url),
			zap.String("field", gap.Field),
			zap.Error(gap.Err),
		)
	}

	return collect.ParseResult{
		Items: []interface{}{ctx.Output(record.Fields())},
	}, nil
}

// ExtractRecord parses a detail page. Fields that cannot be found are left
// nil; it never fails.
func ExtractRecord(doc *goquery.Document, sourceURL string) CaseRecord {
	record, _ := extract(doc, sourceURL)
	return record
}

func extract(doc *goquery.Document, sourceURL string) (CaseRecord, []*ExtractionGap) {
	var gaps []*ExtractionGap
	missing := func(field string, err error) {
		if err == nil {
			err = ErrNotFound
		}
		gaps = append(gaps, &ExtractionGap{Field: field, Err: err})
	}

	record := CaseRecord{SourceURL: sourceURL}

	record.CaseNumber, record.LegacyNumber = CaseNumbers(headerTexts(doc))
	if record.LegacyNumber == nil {
		missing("legacy_number", nil)
	}
	if record.CaseNumber == nil {
		missing("case_number", nil)
	}

	date, err := FilingDate(filingText(doc))
	record.FilingDate = date
	if date == nil {
		missing("filing_date", err)
	}

	record.ReportingJudge = nullable(leadingColonRe.ReplaceAllString(reportingJudgeText(doc), ""))
	if record.ReportingJudge == nil {
		missing("reporting_judge", nil)
	}

	record.Parties = extractParties(doc)
	record.Events = extractEvents(doc)
	return record, gaps
}

func extractParties(doc *goquery.Document) []Party {
	parties := []Party{}
	partiesRows(doc).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		role := selectionText(cells.Eq(0))
		name := selectionText(cells.Eq(1).Find("b").First())
		// 关联的relator不属于当事人
		if strings.Contains(strings.ToUpper(role), "RELATOR") {
			return
		}
		if role == "" && name == "" {
			return
		}
		parties = append(parties, Party{Role: nullable(role), Name: nullable(name)})
	})
	return parties
}

func extractEvents(doc *goquery.Document) []Event {
	events := []Event{}
	eventTables(doc).Each(func(_ int, table *goquery.Selection) {
		date := selectionText(table.Find("a").First())
		date = strings.TrimSpace(strings.TrimPrefix(date, eventMarker))
		description := selectionText(table.Find("tr:nth-of-type(2) > td:nth-of-type(2)").First())
		if date == "" && description == "" {
			return
		}
		events = append(events, Event{Date: nullable(date), Description: nullable(description)})
	})
	return events
}
