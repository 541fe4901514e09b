// internal/datanorm/records.go
package datanorm

// Record to jeden sparsowany wiersz katalogu. Zbiór typów jest zamknięty
// (metoda tag jest prywatna), więc switch po typie w importerze obejmuje wszystko.
type Record interface {
	Tag() byte
	tag()
}

// Header – rekord V. W v4 tylko surowy tekst nagłówka.
type Header struct {
	Version   string `json:"version,omitempty"`
	Ersteller string `json:"ersteller,omitempty"`
	Waehrung  string `json:"waehrung,omitempty"`
	Datum     string `json:"datum,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Warengruppe – rekord S, klucz (Hauptgruppe, Gruppe).
type Warengruppe struct {
	Hauptgruppe string
	Gruppe      string
	Bezeichnung string
}

// Rabattgruppe – rekord R, klucz Nummer.
type Rabattgruppe struct {
	Nummer      string
	Bezeichnung string
}

// Article – rekord A.
type Article struct {
	Artnr        string
	Kurztext1    string
	Kurztext2    string
	Einheit      string
	EAN          string
	Matchcode    string
	Warengruppe  string
	Rabattgruppe string
}

// ArticleAdd – rekord B (uzupełnienie artykułu).
type ArticleAdd struct {
	Artnr             string
	Katalogseite      string
	Steuerkennzeichen string
}

// Text – rekord T, jedna linia długiego opisu.
type Text struct {
	Artnr string
	Zeile string
	Text  string
}

// Price – rekord P. Betrag zostaje stringiem (przecinek dziesiętny), konwersja w ToCents.
type Price struct {
	Artnr       string
	Kennzeichen string
	Betrag      string
	Einheit     string
	GueltigAb   string
	GueltigBis  string
	Kundennr    string
}

// PriceTier – rekord Z, próg ilościowy do ostatniej ceny artykułu.
type PriceTier struct {
	Artnr       string
	VonMenge    string
	Aufabschlag string
}

// Media – rekord G.
type Media struct {
	Artnr        string
	Art          string
	Dateiname    string
	Beschreibung string
}

// Set – rekord J (tylko v5): składnik zestawu.
type Set struct {
	SetArtnr string
	Artnr    string
	Menge    string
}

// End – rekord E.
type End struct{}

func (Header) Tag() byte       { return 'V' }
func (Warengruppe) Tag() byte  { return 'S' }
func (Rabattgruppe) Tag() byte { return 'R' }
func (Article) Tag() byte      { return 'A' }
func (ArticleAdd) Tag() byte   { return 'B' }
func (Text) Tag() byte         { return 'T' }
func (Price) Tag() byte        { return 'P' }
func (PriceTier) Tag() byte    { return 'Z' }
func (Media) Tag() byte        { return 'G' }
func (Set) Tag() byte          { return 'J' }
func (End) Tag() byte          { return 'E' }

func (Header) tag()       {}
func (Warengruppe) tag()  {}
func (Rabattgruppe) tag() {}
func (Article) tag()      {}
func (ArticleAdd) tag()   {}
func (Text) tag()         {}
func (Price) tag()        {}
func (PriceTier) tag()    {}
func (Media) tag()        {}
func (Set) tag()          {}
func (End) tag()          {}

// ArticlePatch opisuje upsert artykułu: nil = "nie ruszaj kolumny".
type ArticlePatch struct {
	Artnr             string
	Kurztext1         *string
	Kurztext2         *string
	Einheit           *string
	EAN               *string
	Matchcode         *string
	Warengruppe       *string
	Rabattgruppe      *string
	Katalogseite      *string
	Steuerkennzeichen *string
}

// Patch – rekord A ustawia wszystkie swoje pola.
func (a Article) Patch() ArticlePatch {
	return ArticlePatch{
		Artnr:        a.Artnr,
		Kurztext1:    ptr(a.Kurztext1),
		Kurztext2:    ptr(a.Kurztext2),
		Einheit:      ptr(a.Einheit),
		EAN:          ptr(a.EAN),
		Matchcode:    ptr(a.Matchcode),
		Warengruppe:  ptr(a.Warengruppe),
		Rabattgruppe: ptr(a.Rabattgruppe),
	}
}

// Patch – rekord B nie dotyka tekstów ustawionych przez A.
func (b ArticleAdd) Patch() ArticlePatch {
	return ArticlePatch{
		Artnr:             b.Artnr,
		Katalogseite:      ptr(b.Katalogseite),
		Steuerkennzeichen: ptr(b.Steuerkennzeichen),
	}
}

func ptr(s string) *string { return &s }
