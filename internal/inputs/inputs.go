// Package inputs zamienia ścieżkę (katalog albo archiwum) na posortowaną listę plików DATANORM.
package inputs

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFound – ścieżka nie istnieje.
var ErrNotFound = errors.New("inputs: plik nie istnieje")

// DATANORM.001, DATPREIS.001, ... (DAT + A/P + reszta)
var reCatalog = regexp.MustCompile(`(?i)^DAT[AP].+`)

type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Set – wynik rozwiązania ścieżki. Close sprząta katalog tymczasowy po archiwum.
type Set struct {
	Files   []File
	tempDir string
}

func (s *Set) Close() error {
	if s == nil || s.tempDir == "" {
		return nil
	}
	return os.RemoveAll(s.tempDir)
}

// IsCatalogName sprawdza konwencję nazewnictwa DATANORM.
func IsCatalogName(name string) bool {
	return reCatalog.MatchString(name)
}

// Resolve: katalog skanowany nierekurencyjnie, plik traktowany jako archiwum zip
// i rozpakowany w całości do świeżego katalogu tymczasowego.
func Resolve(path string) (*Set, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	if fi.IsDir() {
		files, err := scanDir(path)
		if err != nil {
			return nil, err
		}
		return &Set{Files: files}, nil
	}

	tmp, err := os.MkdirTemp("", "datanorm-*")
	if err != nil {
		return nil, err
	}
	if err := extractZip(path, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("rozpakowanie %s: %w", path, err)
	}
	files, err := scanDir(tmp)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, err
	}
	return &Set{Files: files, tempDir: tmp}, nil
}

func scanDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []File
	for _, e := range entries {
		if e.IsDir() || !IsCatalogName(e.Name()) {
			continue
		}
		out = append(out, File{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	// kolejność ma znaczenie – wersję wykrywamy na pierwszym pliku
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func extractZip(archive, dst string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	root := filepath.Clean(dst) + string(os.PathSeparator)
	for _, zf := range zr.File {
		target := filepath.Join(dst, zf.Name)
		// zip-slip
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("niedozwolona ścieżka w archiwum: %s", zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeEntry(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(zf *zip.File, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
