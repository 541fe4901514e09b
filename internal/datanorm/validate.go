// internal/datanorm/validate.go
package datanorm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var reArtnr = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Violation – naruszenie reguły dla jednego pola.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations implementuje error, żeby importer mógł go zapisać jak każdy błąd linii.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, x.Field+": "+x.Message)
	}
	return "walidacja: " + strings.Join(parts, "; ")
}

func maxLen(out Violations, field, value string, n int) Violations {
	if utf8.RuneCountInString(value) > n {
		return append(out, Violation{Field: field, Message: fmt.Sprintf("max %d znaków (jest %d)", n, utf8.RuneCountInString(value))})
	}
	return out
}

// ValidateArticle zwraca pustą listę, gdy rekord A jest poprawny.
func ValidateArticle(a Article, v Version) Violations {
	var out Violations

	artnr := strings.TrimSpace(a.Artnr)
	switch {
	case artnr == "":
		out = append(out, Violation{Field: "artnr", Message: "wymagane"})
	default:
		out = maxLen(out, "artnr", artnr, 15)
		if !reArtnr.MatchString(artnr) {
			out = append(out, Violation{Field: "artnr", Message: "dozwolone tylko [A-Za-z0-9_-]"})
		}
	}

	if strings.TrimSpace(a.Kurztext1) == "" {
		out = append(out, Violation{Field: "kurztext1", Message: "wymagane"})
	} else {
		out = maxLen(out, "kurztext1", a.Kurztext1, 40)
	}
	out = maxLen(out, "kurztext2", a.Kurztext2, 40)
	out = maxLen(out, "einheit", a.Einheit, 4)

	eanMax := 13
	if v == V5 {
		eanMax = 18
	}
	out = maxLen(out, "ean", a.EAN, eanMax)
	out = maxLen(out, "matchcode", a.Matchcode, 15)
	return out
}

// ValidatePrice – kennzeichen 1 (brutto) albo 2 (netto).
func ValidatePrice(p Price, v Version) Violations {
	var out Violations
	if p.Kennzeichen != "1" && p.Kennzeichen != "2" {
		out = append(out, Violation{Field: "kennzeichen", Message: fmt.Sprintf("oczekiwano '1' lub '2', jest %q", p.Kennzeichen)})
	}
	einheitMax := 4
	if v == V5 {
		einheitMax = 6
	}
	out = maxLen(out, "einheit", p.Einheit, einheitMax)
	return out
}
