// internal/datanorm/version.go
package datanorm

import (
	"errors"
	"fmt"
	"strings"
)

type Version int

const (
	VersionAuto Version = 0
	V4          Version = 4
	V5          Version = 5
)

var ErrUnknownVersion = errors.New("datanorm: nieznana wersja")

func (v Version) String() string {
	switch v {
	case V4:
		return "v4"
	case V5:
		return "v5"
	default:
		return "auto"
	}
}

// MarshalText – w raporcie/wyniku wersja jako "v4"/"v5".
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVersion przyjmuje auto|v4|v5 (także 4/5).
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return VersionAuto, nil
	case "v4", "4":
		return V4, nil
	case "v5", "5":
		return V5, nil
	}
	return VersionAuto, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
}

// Detect: średnik w pierwszej linii => v5, inaczej v4.
// Heurystyka jest słaba (średnik w tekście v4 da v5), stąd możliwość wymuszenia wersji.
func Detect(firstLine string) Version {
	if strings.Contains(firstLine, ";") {
		return V5
	}
	return V4
}

// Parser mapuje jedną zdekodowaną linię na rekord albo nil.
type Parser func(line string) Record

func ParserFor(v Version) Parser {
	if v == V5 {
		return ParseV5
	}
	return ParseV4
}
