package trf5

import (
	"fmt"
	"strings"

	"trf5-crawler/collect"
)

const (
	TaskName    = "trf5"
	RuleListing = "listing"
	RuleDetail  = "detail"
)

var (
	DetailURLTemplate  = "https://www5.trf5.jus.br/processo/%s"
	ListingURLTemplate = "https://cp.trf5.jus.br/processo/cpf/porData/ativos/%s/0"
)

var taxpayerSeparators = strings.NewReplacer(".", "", "/", "", "-", "")

// Input selects what to crawl: a comma separated list of case numbers, or a
// CPF/CNPJ whose active cases are listed page by page.
type Input struct {
	CaseNumbers string
	TaxpayerID  string
}

func (in Input) caseNumbers() []string {
	var out []string
	for _, n := range strings.Split(in.CaseNumbers, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// NormalizeTaxpayerID drops the punctuation of a formatted CPF/CNPJ.
func NormalizeTaxpayerID(id string) string {
	return taxpayerSeparators.Replace(strings.TrimSpace(id))
}

// PlanRequests builds the seed requests. Case numbers take precedence over
// the taxpayer id.
func PlanRequests(in Input) ([]*collect.Request, error) {
	if numbers := in.caseNumbers(); len(numbers) > 0 {
		reqs := make([]*collect.Request, 0, len(numbers))
		for _, n := range numbers {
			reqs = append(reqs, &collect.Request{
				Priority: 1,
				Url:      fmt.Sprintf(DetailURLTemplate, n),
				Method:   "GET",
				RuleName: RuleDetail,
			})
		}
		return reqs, nil
	}
	if id := NormalizeTaxpayerID(in.TaxpayerID); id != "" {
		return []*collect.Request{{
			Priority: 1,
			Url:      fmt.Sprintf(ListingURLTemplate, id),
			Method:   "GET",
			RuleName: RuleListing,
		}}, nil
	}
	return nil, &ConfigurationError{Err: ErrMissingIdentifier}
}

// NewTask validates the input and returns the crawler task for it.
func NewTask(in Input, property collect.Property) (*collect.Task, error) {
	if _, err := PlanRequests(in); err != nil {
		return nil, err
	}
	if property.Name == "" {
		property.Name = TaskName
	}
	return &collect.Task{
		Property: property,
		Rule: collect.RuleTree{
			Root: func() ([]*collect.Request, error) {
				return PlanRequests(in)
			},
			Trunk: map[string]*collect.Rule{
				RuleListing: {ParseFunc: ParseListing},
				RuleDetail: {
					ItemFields: ItemFields,
					ParseFunc:  ParseDetail,
				},
			},
		},
	}, nil
}
