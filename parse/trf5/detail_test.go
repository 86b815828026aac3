package trf5

import (
	"encoding/json"
	"errors"
	"testing"

	"trf5-crawler/collect"
	"trf5-crawler/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailURL = "https://www5.trf5.jus.br/processo/1234567-89.2020.4.05.0000"

func TestExtractRecordFullPage(t *testing.T) {
	doc := document(t, string(fixture(t, "detail.html")))

	got := ExtractRecord(doc, detailURL)

	assert.Equal(t, CaseRecord{
		CaseNumber:     str("1234567-89.2020.4.05.0000"),
		LegacyNumber:   str("20.10.12345-6"),
		FilingDate:     str("15-03-2020"),
		ReportingJudge: str("DESEMBARGADOR FEDERAL FULANO DE TAL"),
		Parties: []Party{
			{Role: str("APTE"), Name: str("MARIA DA SILVA")},
			{Role: str("ADV/PROC"), Name: str("JOÃO SOUZA")},
			{Role: str("APDO"), Name: str("FAZENDA NACIONAL")},
			{Role: str("REPTE"), Name: nil},
		},
		Events: []Event{
			{Date: str("20/03/2020 10:15"), Description: str("Juntada de Petição")},
			{Date: str("21/03/2020"), Description: nil},
		},
		SourceURL: detailURL,
	}, got)
}

func TestExtractRecordIsIdempotent(t *testing.T) {
	page := string(fixture(t, "detail.html"))

	first, err := json.Marshal(ExtractRecord(document(t, page), detailURL))
	require.NoError(t, err)
	second, err := json.Marshal(ExtractRecord(document(t, page), detailURL))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractRecordWithoutNumbers(t *testing.T) {
	page := `<html><body>
<p style="x">Processo sem número</p>
<table><tr><td>a</td></tr></table>
<table><tr><td>b</td></tr></table>
<table><tr><td>AUTOR</td><td><b>EMPRESA LTDA</b></td></tr></table>
<table><tr><td><a>Em 01/01/2021</a></td></tr><tr><td></td><td>Distribuição</td></tr></table>
</body></html>`

	got := ExtractRecord(document(t, page), detailURL)

	assert.Nil(t, got.CaseNumber)
	assert.Nil(t, got.LegacyNumber)
	assert.Nil(t, got.FilingDate)
	assert.Nil(t, got.ReportingJudge)
	assert.Equal(t, []Party{{Role: str("AUTOR"), Name: str("EMPRESA LTDA")}}, got.Parties)
	assert.Equal(t, []Event{{Date: str("01/01/2021"), Description: str("Distribuição")}}, got.Events)
}

func TestExtractRecordEmptyPage(t *testing.T) {
	got := ExtractRecord(document(t, "<html><body></body></html>"), detailURL)

	assert.Nil(t, got.CaseNumber)
	assert.NotNil(t, got.Parties)
	assert.NotNil(t, got.Events)
	assert.Empty(t, got.Parties)
	assert.Empty(t, got.Events)
	assert.Equal(t, detailURL, got.SourceURL)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"case_number": null, "legacy_number": null, "filing_date": null,
		"reporting_judge": null, "parties": [], "events": [],
		"source_url": "`+detailURL+`"}`, string(b))
}

func TestExtractRecordPromotesLegacyNumber(t *testing.T) {
	page := `<p style="a">sem número atual</p><p style="b">Nº antigo 20.10.12345-6</p>`

	got := ExtractRecord(document(t, page), detailURL)

	assert.Equal(t, str("20.10.12345-6"), got.CaseNumber)
	assert.Equal(t, str("20.10.12345-6"), got.LegacyNumber)
}

func TestExtractRecordInvalidFilingDate(t *testing.T) {
	page := `<div>AUTUADO EM 31/02/2024</div><p style="a">1234567-89.2020.4.05.0000</p>`

	got, gaps := extract(document(t, page), detailURL)

	assert.Nil(t, got.FilingDate)
	assert.Equal(t, str("1234567-89.2020.4.05.0000"), got.CaseNumber)

	var dateGap *ExtractionGap
	for _, g := range gaps {
		if g.Field == "filing_date" {
			dateGap = g
		}
	}
	require.NotNil(t, dateGap)
	assert.True(t, errors.Is(dateGap, ErrDateParse))
}

func TestReportingJudge(t *testing.T) {
	cases := []struct {
		name string
		page string
		want *string
	}{
		{
			name: "label with colon in value",
			page: `<table><tr><td>Relator</td><td>:  Des. Fulano </td></tr></table>`,
			want: str("Des. Fulano"),
		},
		{
			name: "case folded label",
			page: `<table><tr><td>RELATORA</td><td>:: Des. Beltrana</td></tr></table>`,
			want: str("Des. Beltrana"),
		},
		{
			name: "falls back to exact label when first match is empty",
			page: `<table>
<tr><td>Relatoria</td><td> </td></tr>
<tr><td>Relator</td><td>Des. Ciclano</td></tr>
</table>`,
			want: str("Des. Ciclano"),
		},
		{
			name: "only colon left",
			page: `<table><tr><td>Relator</td><td> : </td></tr></table>`,
			want: nil,
		},
		{
			name: "no label",
			page: `<table><tr><td>Juiz</td><td>Fulano</td></tr></table>`,
			want: nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ExtractRecord(document(t, c.page), detailURL)
			assert.Equal(t, c.want, got.ReportingJudge)
		})
	}
}

func TestPartiesExcludeRelatorRows(t *testing.T) {
	page := `<table></table><table></table><table>
<tr><td>Relator</td><td><b>Des. Fulano</b></td></tr>
<tr><td>relator convocado</td><td><b>Juiz Beltrano</b></td></tr>
<tr><td>APTE</td><td><b>Maria</b></td></tr>
</table>`

	got := ExtractRecord(document(t, page), detailURL)

	assert.Equal(t, []Party{{Role: str("APTE"), Name: str("Maria")}}, got.Parties)
}

func TestPartiesPreferLabelledTable(t *testing.T) {
	page := `<table><tr><th>Partes</th></tr>
<tr><td>IMPTE</td><td><b>JOSÉ</b></td></tr>
<tr><td>IMPDO</td><td><b>UNIÃO</b></td></tr>
</table>
<table></table>
<table><tr><td>NÃO</td><td><b>USAR</b></td></tr></table>`

	got := ExtractRecord(document(t, page), detailURL)

	assert.Equal(t, []Party{
		{Role: str("IMPTE"), Name: str("JOSÉ")},
		{Role: str("IMPDO"), Name: str("UNIÃO")},
	}, got.Parties)
}

func TestPartiesMissingThirdTable(t *testing.T) {
	got := ExtractRecord(document(t, `<table></table><table></table>`), detailURL)
	assert.Equal(t, []Party{}, got.Parties)
}

func TestParseDetailOutputsDataCell(t *testing.T) {
	task, err := NewTask(Input{CaseNumbers: "1234567-89.2020.4.05.0000"}, collect.Property{})
	require.NoError(t, err)
	ctx := &collect.Context{
		Body: fixture(t, "detail.html"),
		Req:  &collect.Request{Task: task, Url: detailURL, RuleName: RuleDetail},
	}

	result, err := ParseDetail(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Requests)
	require.Len(t, result.Items, 1)

	cell, ok := result.Items[0].(*storage.DataCell)
	require.True(t, ok)
	assert.Equal(t, TaskName, cell.GetTaskName())
	assert.Equal(t, RuleDetail, cell.GetRuleName())
	item := cell.GetItem()
	assert.Equal(t, "1234567-89.2020.4.05.0000", item["case_number"])
	assert.Equal(t, "15-03-2020", item["filing_date"])
	assert.Equal(t, detailURL, item["source_url"])
	assert.Len(t, item["parties"], 4)
}
