package trf5

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Matcher tries to recognise a value inside raw text.
type Matcher func(text string) (string, bool)

var (
	// NNNNNNN-DD.AAAA.J.TR.OOOO
	currentNumberRe    = regexp.MustCompile(`\d{7}-\d{2}\.\d{4}\.\d+\.\d+\.\d+`)
	currentNumberRunRe = regexp.MustCompile(`[\d.\-]{10,}`)
	legacyNumberRe     = regexp.MustCompile(`\d{2}\.\d{2}\.\d{5}-\d`)
	filingDateRe       = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

const (
	portalDateLayout = "02/01/2006"
	recordDateLayout = "02-01-2006"
)

// 优先级从高到低
var (
	CurrentNumberMatchers = []Matcher{MatchRegexp(currentNumberRe), MatchRegexp(currentNumberRunRe)}
	LegacyNumberMatchers  = []Matcher{MatchRegexp(legacyNumberRe), MatchTrimmed}
)

func MatchRegexp(re *regexp.Regexp) Matcher {
	return func(text string) (string, bool) {
		m := strings.TrimSpace(re.FindString(text))
		return m, m != ""
	}
}

func MatchTrimmed(text string) (string, bool) {
	t := strings.TrimSpace(text)
	return t, t != ""
}

// FirstMatch runs the matchers in order and returns the first non-empty result.
func FirstMatch(text string, matchers ...Matcher) (string, bool) {
	for _, m := range matchers {
		if v, ok := m(text); ok {
			return v, true
		}
	}
	return "", false
}

// CaseNumbers recognises the current and legacy numbers from the raw header
// texts. The legacy number stands in for a missing current number.
func CaseNumbers(rawCurrent, rawLegacy string) (current, legacy *string) {
	if v, ok := FirstMatch(rawLegacy, LegacyNumberMatchers...); ok {
		legacy = &v
	}
	if v, ok := FirstMatch(rawCurrent, CurrentNumberMatchers...); ok {
		current = &v
	}
	if current == nil && legacy != nil {
		promoted := *legacy
		current = &promoted
	}
	return current, legacy
}

// FilingDate finds the first DD/MM/YYYY date in text and rewrites it as
// DD-MM-YYYY. A date that is not a real calendar day returns ErrDateParse.
func FilingDate(text string) (*string, error) {
	raw := filingDateRe.FindString(text)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(portalDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDateParse, raw, err)
	}
	out := t.Format(recordDateLayout)
	return &out, nil
}
