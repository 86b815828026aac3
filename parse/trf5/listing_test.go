package trf5

import (
	"testing"

	"trf5-crawler/collect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingURL = "https://cp.trf5.jus.br/processo/cpf/porData/ativos/12345678000190/0"

func listingContext(t *testing.T, body []byte, depth int64) *collect.Context {
	t.Helper()
	task, err := NewTask(Input{TaxpayerID: "12.345.678/0001-90"}, collect.Property{})
	require.NoError(t, err)
	return &collect.Context{
		Body: body,
		Req:  &collect.Request{Task: task, Url: listingURL, RuleName: RuleListing, Depth: depth},
	}
}

func TestParseListingEmitsDetailsAndNextPage(t *testing.T) {
	ctx := listingContext(t, fixture(t, "listing.html"), 3)

	result, err := ParseListing(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	require.Len(t, result.Requests, 4)

	var details, listings []*collect.Request
	for _, r := range result.Requests {
		assert.Same(t, ctx.Req.Task, r.Task)
		switch r.RuleName {
		case RuleDetail:
			details = append(details, r)
		case RuleListing:
			listings = append(listings, r)
		}
	}

	require.Len(t, details, 3)
	assert.Equal(t, "https://cp.trf5.jus.br/processo/0800001-11.2020.4.05.8300", details[0].Url)
	assert.Equal(t, "https://cp.trf5.jus.br/processo/cpf/porData/ativos/12345678000190/processo/2", details[1].Url)
	assert.Equal(t, "https://www5.trf5.jus.br/processo/3", details[2].Url)
	for _, d := range details {
		assert.Equal(t, int64(3), d.Depth, "detail pages do not count toward the page bound")
	}

	require.Len(t, listings, 1)
	assert.Equal(t, "https://cp.trf5.jus.br/processo/cpf/porData/ativos/12345678000190/1", listings[0].Url)
	assert.Equal(t, int64(4), listings[0].Depth)
}

func TestParseListingLastPage(t *testing.T) {
	result, err := ParseListing(listingContext(t, fixture(t, "listing_last.html"), 0))
	require.NoError(t, err)

	require.Len(t, result.Requests, 1)
	assert.Equal(t, RuleDetail, result.Requests[0].RuleName)
	assert.Equal(t, "https://cp.trf5.jus.br/processo/4", result.Requests[0].Url)
}

func TestParseListingEmptyPage(t *testing.T) {
	result, err := ParseListing(listingContext(t, []byte("<html><body><p>Nenhum processo encontrado</p></body></html>"), 0))
	require.NoError(t, err)
	assert.Empty(t, result.Requests)
	assert.Empty(t, result.Items)
}

func TestDetailLinksTitleIsCaseInsensitive(t *testing.T) {
	doc := document(t, `<table class="resultado consulta_resultados">
<tr><td><a href="/a" title="processo">a</a></td></tr>
<tr><td><a href="/b" title="PrOcEsSo">b</a></td></tr>
<tr><td><a title="Processo">sem href</a></td></tr>
<tr><td><a href="/c">sem título</a></td></tr>
</table>`)
	assert.Equal(t, []string{"/a", "/b"}, DetailLinks(doc))
}

func TestNextPageLink(t *testing.T) {
	href, ok := NextPageLink(document(t, `<a href="/p/0">&lt;</a><a>&gt;</a><a href="/p/2">&gt;</a>`))
	assert.True(t, ok)
	assert.Equal(t, "/p/2", href)

	_, ok = NextPageLink(document(t, `<a href="/p/9">&gt;&gt;</a><a href="/p/0">&lt;</a>`))
	assert.False(t, ok)
}
