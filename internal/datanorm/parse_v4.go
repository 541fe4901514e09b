// internal/datanorm/parse_v4.go
package datanorm

import (
	"strings"
	"unicode/utf8"
)

// col wycina pole o pozycji start (od 1) i długości n, potem trim.
// Liczymy w runach – linia jest już zdekodowana z code page.
func col(line []rune, start, n int) string {
	from := start - 1
	if from >= len(line) {
		return ""
	}
	to := from + n
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(string(line[from:to]))
}

// ParseV4 parsuje linię w układzie stałej szerokości.
func ParseV4(line string) Record {
	if line == "" {
		return nil
	}
	r := []rune(line)
	if !utf8.ValidString(line) {
		r = []rune(strings.ToValidUTF8(line, "?"))
	}

	switch upper(r[0]) {
	case 'V':
		return Header{Text: col(r, 2, 120)}
	case 'S':
		return Warengruppe{
			Hauptgruppe: col(r, 2, 4),
			Gruppe:      col(r, 6, 6),
			Bezeichnung: col(r, 12, 40),
		}
	case 'R':
		return Rabattgruppe{
			Nummer:      col(r, 2, 4),
			Bezeichnung: col(r, 6, 40),
		}
	case 'A':
		return Article{
			Artnr:        col(r, 2, 15),
			Kurztext1:    col(r, 17, 40),
			Kurztext2:    col(r, 57, 40),
			Einheit:      col(r, 97, 4),
			EAN:          col(r, 101, 13),
			Matchcode:    col(r, 114, 15),
			Warengruppe:  col(r, 129, 10),
			Rabattgruppe: col(r, 139, 4),
		}
	case 'B':
		return ArticleAdd{
			Artnr:             col(r, 2, 15),
			Katalogseite:      col(r, 17, 8),
			Steuerkennzeichen: col(r, 25, 1),
		}
	case 'T':
		return Text{
			Artnr: col(r, 2, 15),
			Zeile: col(r, 17, 3),
			Text:  col(r, 20, 70),
		}
	case 'P':
		return Price{
			Artnr:       col(r, 2, 15),
			Kennzeichen: col(r, 17, 1),
			Betrag:      col(r, 18, 12),
			Einheit:     col(r, 30, 4),
			GueltigAb:   col(r, 34, 8),
			GueltigBis:  col(r, 42, 8),
			Kundennr:    col(r, 50, 10),
		}
	case 'Z':
		return PriceTier{
			Artnr:       col(r, 2, 15),
			VonMenge:    col(r, 17, 10),
			Aufabschlag: col(r, 27, 12),
		}
	case 'G':
		return Media{
			Artnr:        col(r, 2, 15),
			Art:          col(r, 17, 2),
			Dateiname:    col(r, 19, 60),
			Beschreibung: col(r, 79, 40),
		}
	case 'E':
		return End{}
	}
	// J nie istnieje w v4
	return nil
}

func upper(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
