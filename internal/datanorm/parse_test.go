package datanorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed buduje linię v4: tag w kolumnie 1, pola od podanej kolumny (1-based).
func fixed(tag string, fields map[int]string) string {
	width := 1
	for start, v := range fields {
		if end := start - 1 + len([]rune(v)); end > width {
			width = end
		}
	}
	line := []rune(strings.Repeat(" ", width))
	line[0] = []rune(tag)[0]
	for start, v := range fields {
		copy(line[start-1:], []rune(v))
	}
	return string(line)
}

func TestParseV5_ArticleRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cols []string
	}{
		{"plain", []string{"A", "ART1", "Kupferrohr", "15mm", "m", "4012345678901", "KUPFER", "1010", "R1"}},
		{"empty optional", []string{"A", "X-2", "Muffe", "", "Stk", "", "", "", ""}},
		{"umlauts", []string{"A", "ÄB_9", "Größe 1/2", "weiß", "m", "", "MUFFE", "20", "7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quoted := make([]string, len(tt.cols))
			for i, c := range tt.cols {
				quoted[i] = c
				if i == 2 {
					quoted[i] = "\"" + c + "\""
				}
			}
			rec := ParseV5(strings.Join(quoted, ";"))
			a, ok := rec.(Article)
			require.True(t, ok, "got %T", rec)

			got := []string{"A", a.Artnr, a.Kurztext1, a.Kurztext2, a.Einheit, a.EAN, a.Matchcode, a.Warengruppe, a.Rabattgruppe}
			assert.Equal(t, tt.cols, got)
		})
	}
}

func TestParseV5_TrimsAndStripsQuotes(t *testing.T) {
	rec := ParseV5(`P; "ART1" ;1; 12,34 ;m;20240101;;K1`)
	p, ok := rec.(Price)
	require.True(t, ok)
	assert.Equal(t, "ART1", p.Artnr)
	assert.Equal(t, "12,34", p.Betrag)
	assert.Equal(t, "", p.GueltigBis)
	assert.Equal(t, "K1", p.Kundennr)
}

func TestParseV5_QuotedSemicolon(t *testing.T) {
	rec := ParseV5(`T;ART1;1;"a;b"`)
	tx, ok := rec.(Text)
	require.True(t, ok)
	assert.Equal(t, "a;b", tx.Text)
}

func TestParseV5_AllTags(t *testing.T) {
	tests := []struct {
		line string
		want Record
	}{
		{"V;050;ACME;EUR;20240101", Header{Version: "050", Ersteller: "ACME", Waehrung: "EUR", Datum: "20240101"}},
		{"S;10;1010;Rohre", Warengruppe{Hauptgruppe: "10", Gruppe: "1010", Bezeichnung: "Rohre"}},
		{"R;R1;Rabatt", Rabattgruppe{Nummer: "R1", Bezeichnung: "Rabatt"}},
		{"B;ART1;12;1", ArticleAdd{Artnr: "ART1", Katalogseite: "12", Steuerkennzeichen: "1"}},
		{"T;ART1;1;Hallo", Text{Artnr: "ART1", Zeile: "1", Text: "Hallo"}},
		{"Z;ART1;10;-1,50", PriceTier{Artnr: "ART1", VonMenge: "10", Aufabschlag: "-1,50"}},
		{"G;ART1;B;a.jpg;Bild", Media{Artnr: "ART1", Art: "B", Dateiname: "a.jpg", Beschreibung: "Bild"}},
		{"J;SET1;ART1;2", Set{SetArtnr: "SET1", Artnr: "ART1", Menge: "2"}},
		{"E", End{}},
		{"e;", End{}},
		{"A", Article{}},
		{"X;foo", nil},
		{"AB;foo", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseV5(tt.line))
		})
	}
}

func TestParseV4_ArticleOffsets(t *testing.T) {
	line := fixed("A", map[int]string{
		2:   "ART1",
		17:  "Kupferrohr",
		57:  "15mm",
		97:  "m",
		101: "4012345678901",
		114: "KUPFER",
		129: "1010",
		139: "R1",
	})
	rec := ParseV4(line)
	a, ok := rec.(Article)
	require.True(t, ok)
	assert.Equal(t, Article{
		Artnr:        "ART1",
		Kurztext1:    "Kupferrohr",
		Kurztext2:    "15mm",
		Einheit:      "m",
		EAN:          "4012345678901",
		Matchcode:    "KUPFER",
		Warengruppe:  "1010",
		Rabattgruppe: "R1",
	}, a)
}

func TestParseV4_FullWidthFieldsAreExact(t *testing.T) {
	// pola na pełną szerokość – sąsiednie kolumny nie mogą się przenikać
	artnr := "ABCDEFGHIJKLMNO"
	kurz := strings.Repeat("k", 40)
	kurz2 := strings.Repeat("z", 40)
	line := "A" + artnr + kurz + kurz2 + "Stk1"
	a := ParseV4(line).(Article)
	assert.Equal(t, artnr, a.Artnr)
	assert.Equal(t, kurz, a.Kurztext1)
	assert.Equal(t, kurz2, a.Kurztext2)
	assert.Equal(t, "Stk1", a.Einheit)
	assert.Equal(t, "", a.EAN)
}

func TestParseV4_OtherRecords(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{"S", fixed("S", map[int]string{2: "10", 6: "1010", 12: "Rohre"}), Warengruppe{Hauptgruppe: "10", Gruppe: "1010", Bezeichnung: "Rohre"}},
		{"R", fixed("R", map[int]string{2: "R1", 6: "Rabatt"}), Rabattgruppe{Nummer: "R1", Bezeichnung: "Rabatt"}},
		{"B", fixed("B", map[int]string{2: "ART1", 17: "12", 25: "1"}), ArticleAdd{Artnr: "ART1", Katalogseite: "12", Steuerkennzeichen: "1"}},
		{"T", fixed("T", map[int]string{2: "ART1", 17: "001", 20: "Erste Zeile"}), Text{Artnr: "ART1", Zeile: "001", Text: "Erste Zeile"}},
		{"P", fixed("P", map[int]string{2: "ART1", 17: "1", 18: "12,34", 30: "m", 34: "20240101", 42: "20241231", 50: "K1"}),
			Price{Artnr: "ART1", Kennzeichen: "1", Betrag: "12,34", Einheit: "m", GueltigAb: "20240101", GueltigBis: "20241231", Kundennr: "K1"}},
		{"Z", fixed("Z", map[int]string{2: "ART1", 17: "10", 27: "-1,50"}), PriceTier{Artnr: "ART1", VonMenge: "10", Aufabschlag: "-1,50"}},
		{"G", fixed("G", map[int]string{2: "ART1", 17: "B", 19: "art1.jpg", 79: "Bild"}), Media{Artnr: "ART1", Art: "B", Dateiname: "art1.jpg", Beschreibung: "Bild"}},
		{"V", "V Katalog 2024", Header{Text: "Katalog 2024"}},
		{"E", "E", End{}},
		{"lowercase tag", fixed("r", map[int]string{2: "R2"}), Rabattgruppe{Nummer: "R2"}},
		{"J is v5 only", "JSET1", nil},
		{"unknown", "Xfoo", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseV4(tt.line))
		})
	}
}

func TestParseV4_ShortLine(t *testing.T) {
	// linia kończy się w połowie kurztext1
	a := ParseV4(fixed("A", map[int]string{2: "ART1", 17: "Kupf"})).(Article)
	assert.Equal(t, "ART1", a.Artnr)
	assert.Equal(t, "Kupf", a.Kurztext1)
	assert.Equal(t, "", a.Rabattgruppe)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, V5, Detect("V;050;ACME"))
	assert.Equal(t, V4, Detect("V Katalog"))
	assert.Equal(t, V4, Detect(""))
}

func TestParseVersion(t *testing.T) {
	for in, want := range map[string]Version{"auto": VersionAuto, "": VersionAuto, "v4": V4, "V5": V5, "5": V5} {
		got, err := ParseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVersion("v3")
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
