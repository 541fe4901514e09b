// internal/datanorm/parse_v5.go
package datanorm

import (
	"encoding/csv"
	"strings"
)

// splitV5 dzieli linię po średnikach; pola w cudzysłowach mogą zawierać ';'.
func splitV5(line string) []string {
	rd := csv.NewReader(strings.NewReader(line))
	rd.Comma = ';'
	rd.LazyQuotes = true
	rd.FieldsPerRecord = -1
	fields, err := rd.Read()
	if err != nil {
		// zepsute cudzysłowy – tniemy "na sztywno"
		fields = strings.Split(line, ";")
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"' {
			f = f[1 : len(f)-1]
		}
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// ParseV5 parsuje linię rozdzielaną średnikami.
func ParseV5(line string) Record {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	f := splitV5(line)
	at := func(i int) string {
		if i < len(f) {
			return f[i]
		}
		return ""
	}
	tag := strings.ToUpper(at(0))
	if len(tag) != 1 {
		return nil
	}

	switch tag[0] {
	case 'V':
		return Header{Version: at(1), Ersteller: at(2), Waehrung: at(3), Datum: at(4)}
	case 'S':
		return Warengruppe{Hauptgruppe: at(1), Gruppe: at(2), Bezeichnung: at(3)}
	case 'R':
		return Rabattgruppe{Nummer: at(1), Bezeichnung: at(2)}
	case 'A':
		return Article{
			Artnr:        at(1),
			Kurztext1:    at(2),
			Kurztext2:    at(3),
			Einheit:      at(4),
			EAN:          at(5),
			Matchcode:    at(6),
			Warengruppe:  at(7),
			Rabattgruppe: at(8),
		}
	case 'B':
		return ArticleAdd{Artnr: at(1), Katalogseite: at(2), Steuerkennzeichen: at(3)}
	case 'T':
		return Text{Artnr: at(1), Zeile: at(2), Text: at(3)}
	case 'P':
		return Price{
			Artnr:       at(1),
			Kennzeichen: at(2),
			Betrag:      at(3),
			Einheit:     at(4),
			GueltigAb:   at(5),
			GueltigBis:  at(6),
			Kundennr:    at(7),
		}
	case 'Z':
		return PriceTier{Artnr: at(1), VonMenge: at(2), Aufabschlag: at(3)}
	case 'G':
		return Media{Artnr: at(1), Art: at(2), Dateiname: at(3), Beschreibung: at(4)}
	case 'J':
		return Set{SetArtnr: at(1), Artnr: at(2), Menge: at(3)}
	case 'E':
		return End{}
	}
	return nil
}
