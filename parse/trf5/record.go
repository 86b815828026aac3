package trf5

// CaseRecord is the structured form of one detail page.
type CaseRecord struct {
	CaseNumber     *string `json:"case_number"`
	LegacyNumber   *string `json:"legacy_number"`
	FilingDate     *string `json:"filing_date"`
	ReportingJudge *string `json:"reporting_judge"`
	Parties        []Party `json:"parties"`
	Events         []Event `json:"events"`
	SourceURL      string  `json:"source_url"`
}

type Party struct {
	Role *string `json:"role"`
	Name *string `json:"name"`
}

type Event struct {
	Date        *string `json:"date"`
	Description *string `json:"description"`
}

// ItemFields lists the record fields in output order.
var ItemFields = []string{
	"case_number",
	"legacy_number",
	"filing_date",
	"reporting_judge",
	"parties",
	"events",
	"source_url",
}

// Fields flattens the record into the map stored by the crawler sinks.
func (r CaseRecord) Fields() map[string]interface{} {
	parties := r.Parties
	if parties == nil {
		parties = []Party{}
	}
	events := r.Events
	if events == nil {
		events = []Event{}
	}
	return map[string]interface{}{
		"case_number":     value(r.CaseNumber),
		"legacy_number":   value(r.LegacyNumber),
		"filing_date":     value(r.FilingDate),
		"reporting_judge": value(r.ReportingJudge),
		"parties":         parties,
		"events":          events,
		"source_url":      r.SourceURL,
	}
}

func value(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
