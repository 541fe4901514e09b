// Package codepage dekoduje jednobajtowe strony kodowe DATANORM do UTF-8.
package codepage

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Default – DATANORM przychodzi z DOS-a, CP850. Nie zgadujemy z treści pliku.
const Default = "cp850"

// Lookup zwraca dekoder dla etykiety strony kodowej.
func Lookup(label string) (encoding.Encoding, error) {
	switch normalize(label) {
	case "", "cp850", "ibm850":
		return charmap.CodePage850, nil
	case "cp437", "ibm437":
		return charmap.CodePage437, nil
	}
	enc, name := charset.Lookup(normalize(label))
	if enc == nil {
		return nil, fmt.Errorf("nieznana strona kodowa %q", label)
	}
	if name == "utf-8" {
		return encoding.Nop, nil
	}
	return enc, nil
}

// NewReader dekoduje strumieniowo – nic nie jest buforowane w całości.
// Jednobajtowe strony mają mapowanie dla każdego bajtu, więc dekodowanie nie zwraca błędów.
func NewReader(r io.Reader, label string) (io.Reader, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// Lines czyta zdekodowane linie; granice linii (\n, \r\n) zostają zachowane, znaczniki końca obcięte.
type Lines struct {
	br   *bufio.Reader
	line string
	n    int
	err  error
}

func NewLines(r io.Reader) *Lines {
	return &Lines{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next przesuwa do kolejnej linii. Linie nie mają limitu długości.
func (l *Lines) Next() bool {
	if l.err != nil {
		return false
	}
	s, err := l.br.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			l.err = err
			return false
		}
		l.err = io.EOF
		if s == "" {
			return false
		}
	}
	l.n++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	// DOS-owy znacznik końca pliku (Ctrl-Z)
	s = strings.TrimSuffix(s, "\x1a")
	l.line = s
	return true
}

func (l *Lines) Text() string { return l.line }

// Number – numer fizycznej linii, od 1.
func (l *Lines) Number() int { return l.n }

func (l *Lines) Err() error {
	if l.err == io.EOF {
		return nil
	}
	return l.err
}

// normalize mapuje nietypowe etykiety na nazwy rozpoznawane przez charset.Lookup
func normalize(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "cp-850", "850", "dos", "oem":
		return "cp850"
	case "cp-437", "437":
		return "cp437"
	case "latin1", "latin-1", "iso8859-1", "iso_8859-1":
		return "iso-8859-1"
	case "latin9", "latin-9", "iso8859-15", "iso_8859-15":
		return "iso-8859-15"
	case "cp1252", "windows1252", "win-1252", "ansi":
		return "windows-1252"
	default:
		return c
	}
}
