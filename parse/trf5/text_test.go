package trf5

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpace(t *testing.T) {
	cases := map[string]string{
		"  a  b\t\nc ":         "a b c",
		"JO\u00c3O\u00a0SOUZA": "JO\u00c3O SOUZA",
		"":                     "",
		" \n ":                 "",
		"Jose\u0301":           "Jos\u00e9",
		"Em 20/03/2020\u00a0":  "Em 20/03/2020",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSpace(in), "input %q", in)
	}
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, str("x"), nullable("x"))
}
