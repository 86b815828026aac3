package trf5

import (
	"bytes"
	"fmt"
	"strings"

	"trf5-crawler/collect"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	detailLinkMarker = "processo"
	nextPageText     = ">"
)

// ParseListing emits a detail request for every case on a result page and
// one listing request for the next page when the page links to one.
func ParseListing(ctx *collect.Context) (collect.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ctx.Body))
	if err != nil {
		return collect.ParseResult{}, fmt.Errorf("parse listing page %s: %w", ctx.Req.Url, err)
	}
	logger := ctx.Req.Task.Log()

	result := collect.ParseResult{}
	for _, href := range DetailLinks(doc) {
		req, err := ctx.Req.Follow(href, RuleDetail)
		if err != nil {
			logger.Warn("bad detail link", zap.String("href", href), zap.String("url", ctx.Req.Url), zap.Error(err))
			continue
		}
		// 详情页不再翻页，深度只统计列表页
		req.Depth = ctx.Req.Depth
		result.Requests = append(result.Requests, req)
	}

	if href, ok := NextPageLink(doc); ok {
		req, err := ctx.Req.Follow(href, RuleListing)
		if err != nil {
			logger.Warn("bad next page link", zap.String("href", href), zap.String("url", ctx.Req.Url), zap.Error(err))
		} else {
			result.Requests = append(result.Requests, req)
		}
	}

	logger.Debug("listing parsed",
		zap.String("url", ctx.Req.Url),
		zap.Int("requests", len(result.Requests)),
	)
	return result, nil
}

// DetailLinks returns the href of every result-table anchor whose title
// mentions "Processo", in page order.
func DetailLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("table.consulta_resultados a[title]").Each(func(_ int, a *goquery.Selection) {
		title, _ := a.Attr("title")
		if !strings.Contains(strings.ToLower(title), detailLinkMarker) {
			return
		}
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		links = append(links, href)
	})
	return links
}

// NextPageLink returns the href of the ">" pagination control.
func NextPageLink(doc *goquery.Document) (string, bool) {
	var next string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if selectionText(a) != nextPageText {
			return true
		}
		href, _ := a.Attr("href")
		next = strings.TrimSpace(href)
		return next == ""
	})
	return next, next != ""
}
