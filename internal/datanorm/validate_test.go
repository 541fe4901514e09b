package datanorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(v Violations) []string {
	out := make([]string, 0, len(v))
	for _, x := range v {
		out = append(out, x.Field)
	}
	return out
}

func TestValidateArticle(t *testing.T) {
	valid := Article{Artnr: "ART-1_a", Kurztext1: "Rohr", Einheit: "Stk", EAN: "4012345678901"}

	tests := []struct {
		name    string
		mutate  func(a *Article)
		version Version
		want    []string
	}{
		{"valid", func(a *Article) {}, V4, []string{}},
		{"artnr missing", func(a *Article) { a.Artnr = "  " }, V4, []string{"artnr"}},
		{"artnr too long", func(a *Article) { a.Artnr = "ABCDEFGHIJKLMNOP" }, V4, []string{"artnr"}},
		{"artnr bad chars", func(a *Article) { a.Artnr = "AB 12" }, V4, []string{"artnr"}},
		{"kurztext1 missing", func(a *Article) { a.Kurztext1 = "" }, V4, []string{"kurztext1"}},
		{"kurztext1 too long", func(a *Article) { a.Kurztext1 = strings.Repeat("x", 41) }, V4, []string{"kurztext1"}},
		{"kurztext2 too long", func(a *Article) { a.Kurztext2 = strings.Repeat("x", 41) }, V4, []string{"kurztext2"}},
		{"einheit too long", func(a *Article) { a.Einheit = "Meter" }, V5, []string{"einheit"}},
		{"ean 14 in v4", func(a *Article) { a.EAN = strings.Repeat("1", 14) }, V4, []string{"ean"}},
		{"ean 18 in v5", func(a *Article) { a.EAN = strings.Repeat("1", 18) }, V5, []string{}},
		{"ean 19 in v5", func(a *Article) { a.EAN = strings.Repeat("1", 19) }, V5, []string{"ean"}},
		{"matchcode too long", func(a *Article) { a.Matchcode = strings.Repeat("m", 16) }, V4, []string{"matchcode"}},
		{"umlauts counted as chars", func(a *Article) { a.Kurztext1 = strings.Repeat("ä", 40) }, V4, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			assert.Equal(t, tt.want, fields(ValidateArticle(a, tt.version)))
		})
	}
}

func TestValidatePrice(t *testing.T) {
	assert.Empty(t, ValidatePrice(Price{Kennzeichen: "1", Einheit: "Stk"}, V4))
	assert.Empty(t, ValidatePrice(Price{Kennzeichen: "2", Einheit: "Karton"}, V5))
	assert.Equal(t, []string{"einheit"}, fields(ValidatePrice(Price{Kennzeichen: "2", Einheit: "Karton"}, V4)))
	assert.Equal(t, []string{"kennzeichen"}, fields(ValidatePrice(Price{Kennzeichen: "3"}, V4)))
	assert.Equal(t, []string{"kennzeichen"}, fields(ValidatePrice(Price{}, V5)))
}

func TestViolationsError(t *testing.T) {
	v := ValidateArticle(Article{}, V4)
	require.Len(t, v, 2)
	var err error = v
	assert.Contains(t, err.Error(), "artnr")
	assert.Contains(t, err.Error(), "kurztext1")
}
