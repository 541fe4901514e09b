package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bartek5186/dnimport/internal/codepage"
	"github.com/bartek5186/dnimport/internal/datanorm"
	"github.com/bartek5186/dnimport/internal/inputs"
	"github.com/bartek5186/dnimport/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultErrorThreshold – powyżej 5% błędnych linii plik idzie do rollbacku.
const DefaultErrorThreshold = 0.05

type Options struct {
	Version        datanorm.Version // VersionAuto = wykrywanie per plik
	DryRun         bool
	Supplier       string // na razie tylko do logów/wyniku
	Encoding       string
	ErrorThreshold *float64 // nil = DefaultErrorThreshold; 0 = żadnych błędów
	ReportDir      string
	Progress       ProgressFunc
}

type Importer struct {
	log       zerolog.Logger
	store     store.Gateway
	opt       Options
	threshold float64
	now       func() time.Time
}

func New(log zerolog.Logger, gw store.Gateway, opt Options) *Importer {
	threshold := DefaultErrorThreshold
	if opt.ErrorThreshold != nil {
		threshold = *opt.ErrorThreshold
	}
	return &Importer{log: log, store: gw, opt: opt, threshold: threshold, now: time.Now}
}

// Run rozwiązuje ścieżkę wejściową i importuje pliki po kolei.
// Błąd otwarcia ścieżki/pliku przerywa całą sesję.
func (i *Importer) Run(ctx context.Context, path string) (*Result, error) {
	set, err := inputs.Resolve(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := set.Close(); err != nil {
			i.log.Warn().Err(err).Msg("nie udało się usunąć katalogu tymczasowego")
		}
	}()
	return i.ImportFiles(ctx, set.Files)
}

// ImportFiles przetwarza pliki sekwencyjnie; ctx sprawdzany tylko między plikami.
func (i *Importer) ImportFiles(ctx context.Context, files []inputs.File) (*Result, error) {
	res := &Result{
		SessionID: uuid.NewString(),
		Supplier:  i.opt.Supplier,
		Version:   i.opt.Version,
		DryRun:    i.opt.DryRun,
		Files:     []string{},
	}
	log := i.log.With().Str("session", res.SessionID).Logger()
	log.Info().Int("files", len(files)).Bool("dry_run", i.opt.DryRun).
		Str("supplier", i.opt.Supplier).Msg("start importu")

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("import przerwany")
			return nil, err
		}
		fr, err := i.processFile(ctx, log, f, res)
		if err != nil {
			return nil, err
		}
		if res.Version == datanorm.VersionAuto {
			res.Version = fr.Version
		}
		res.Files = append(res.Files, f.Name)
		res.FileInfo = append(res.FileInfo, fr)
		res.Counts.add(fr.Counts)
	}

	path, err := writeReport(i.opt.ReportDir, res, i.now())
	if err != nil {
		return nil, err
	}
	res.ReportPath = path

	log.Info().
		Int("articles", res.Counts.Articles).
		Int("prices", res.Counts.Prices).
		Int("errors", res.Counts.Errors).
		Str("report", path).
		Msg("import zakończony")
	return res, nil
}

// fileState – stan roboczy jednego pliku; tworzony na starcie pliku, porzucany na końcu.
type fileState struct {
	version   datanorm.Version
	texts     map[string]*textBlock
	textOrder []string
	lastPrice map[string]uint
}

type textBlock struct {
	lines    []string
	lastLine int
}

func newFileState(v datanorm.Version) *fileState {
	return &fileState{
		version:   v,
		texts:     map[string]*textBlock{},
		lastPrice: map[string]uint{},
	}
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeSkipped
)

func (i *Importer) processFile(ctx context.Context, log zerolog.Logger, f inputs.File, res *Result) (FileResult, error) {
	fr := FileResult{Name: f.Name}

	fh, err := os.Open(f.Path)
	if err != nil {
		return fr, fmt.Errorf("otwarcie %s: %w", f.Name, err)
	}
	defer fh.Close()

	dec, err := codepage.NewReader(fh, i.opt.Encoding)
	if err != nil {
		return fr, err
	}
	lines := codepage.NewLines(dec)

	tx, err := i.store.Begin(ctx)
	if err != nil {
		return fr, fmt.Errorf("begin tx: %w", err)
	}
	// zwolnienie transakcji na każdej ścieżce wyjścia; po Commit to no-op
	defer tx.Rollback()

	var (
		st       *fileState
		parse    datanorm.Parser
		lastLine int
	)
	fail := func(line int, err error) {
		fr.Errors++
		res.errors = append(res.errors, LineError{File: f.Name, Line: line, Err: err.Error()})
		log.Debug().Str("file", f.Name).Int("line", line).Err(err).Msg("błąd linii")
	}

	for lines.Next() {
		text := lines.Text()
		n := lines.Number()
		lastLine = n
		if st == nil {
			v := i.opt.Version
			if v == datanorm.VersionAuto {
				v = datanorm.Detect(text)
			}
			st = newFileState(v)
			parse = datanorm.ParserFor(v)
			fr.Version = v
			log.Info().Str("file", f.Name).Stringer("version", v).Msg("plik DATANORM")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fr.Lines++

		rec := parse(text)
		if h, ok := rec.(datanorm.Header); ok {
			fr.Header = &h
			log.Info().Str("file", f.Name).Str("ersteller", h.Ersteller).
				Str("waehrung", h.Waehrung).Str("datum", h.Datum).Msg("nagłówek katalogu")
		}

		out, err := i.dispatch(tx, st, rec, n, &fr.Counts)
		switch {
		case err != nil:
			fail(n, err)
		case out == outcomeSkipped:
			fr.Skipped++
		default:
			fr.Success++
		}

		i.progress(f.Name, n, &fr)
	}
	if err := lines.Err(); err != nil {
		return fr, fmt.Errorf("odczyt %s: %w", f.Name, err)
	}
	if st == nil {
		// pusty plik
		fr.Version = i.opt.Version
		st = newFileState(fr.Version)
	}

	before := fr.Errors
	i.flushTexts(tx, st, &fr.Counts, fail)
	if fr.Errors > before {
		// błędy zapisu tekstów wychodzą dopiero po ostatniej linii
		i.progress(f.Name, lastLine, &fr)
	}

	fr.Counts.Errors = fr.Errors
	if fr.Lines > 0 {
		fr.ErrorRatio = float64(fr.Errors) / float64(fr.Lines)
	}

	switch {
	case i.opt.DryRun:
		fr.Reason = ReasonDryRun
	case fr.ErrorRatio > i.threshold:
		fr.Reason = ReasonErrorRatio
	}

	ev := log.Info()
	if fr.Reason != "" {
		if err := tx.Rollback(); err != nil {
			return fr, fmt.Errorf("rollback %s: %w", f.Name, err)
		}
		if fr.Reason == ReasonErrorRatio {
			ev = log.Warn()
		}
	} else {
		if err := tx.Commit(); err != nil {
			return fr, fmt.Errorf("commit %s: %w", f.Name, err)
		}
		fr.Committed = true
	}
	ev.Str("file", f.Name).
		Int("lines", fr.Lines).
		Int("errors", fr.Errors).
		Int("skipped", fr.Skipped).
		Float64("error_ratio", fr.ErrorRatio).
		Bool("committed", fr.Committed).
		Str("reason", fr.Reason).
		Msg("plik przetworzony")
	return fr, nil
}

func (i *Importer) progress(file string, line int, fr *FileResult) {
	if i.opt.Progress == nil {
		return
	}
	i.opt.Progress(Progress{File: file, Line: line, Success: fr.Success, Skipped: fr.Skipped, Errors: fr.Errors})
}

// dispatch obsługuje jeden rekord. Błąd = błąd linii (nie przerywa pliku).
func (i *Importer) dispatch(tx store.Tx, st *fileState, rec datanorm.Record, line int, c *Counts) (outcome, error) {
	switch r := rec.(type) {
	case nil:
		return outcomeSkipped, nil

	case datanorm.Header, datanorm.End:
		return outcomeOK, nil

	case datanorm.Warengruppe:
		if err := tx.UpsertWarengruppe(r); err != nil {
			return outcomeOK, err
		}
		c.Warengruppen++

	case datanorm.Rabattgruppe:
		if err := tx.UpsertRabattgruppe(r); err != nil {
			return outcomeOK, err
		}
		c.Rabattgruppen++

	case datanorm.Article:
		if v := datanorm.ValidateArticle(r, st.version); len(v) > 0 {
			return outcomeOK, v
		}
		if _, err := tx.UpsertArticle(r.Patch()); err != nil {
			return outcomeOK, err
		}
		c.Articles++

	case datanorm.ArticleAdd:
		if r.Artnr == "" {
			return outcomeOK, datanorm.Violations{{Field: "artnr", Message: "wymagane"}}
		}
		if _, err := tx.UpsertArticle(r.Patch()); err != nil {
			return outcomeOK, err
		}

	case datanorm.Text:
		tb := st.texts[r.Artnr]
		if tb == nil {
			tb = &textBlock{}
			st.texts[r.Artnr] = tb
			st.textOrder = append(st.textOrder, r.Artnr)
		}
		tb.lines = append(tb.lines, r.Text)
		tb.lastLine = line

	case datanorm.Price:
		if v := datanorm.ValidatePrice(r, st.version); len(v) > 0 {
			return outcomeOK, v
		}
		id, ok, err := tx.FindArticleIDByNumber(r.Artnr)
		if err != nil {
			return outcomeOK, err
		}
		if !ok {
			// cena do nieznanego artykułu – pomijamy bez błędu, nawet przy złej kwocie
			return outcomeSkipped, nil
		}
		cents, err := datanorm.ToCents(r.Betrag)
		if err != nil {
			return outcomeOK, err
		}
		priceID, err := tx.InsertPrice(id, r, cents)
		if err != nil {
			return outcomeOK, err
		}
		st.lastPrice[r.Artnr] = priceID
		c.Prices++

	case datanorm.PriceTier:
		priceID, ok := st.lastPrice[r.Artnr]
		if !ok {
			return outcomeSkipped, nil
		}
		cents, err := datanorm.ToCents(r.Aufabschlag)
		if err != nil {
			return outcomeOK, err
		}
		menge, err := datanorm.ParseDecimal(r.VonMenge)
		if err != nil {
			return outcomeOK, err
		}
		if err := tx.InsertPriceTier(priceID, menge, cents); err != nil {
			return outcomeOK, err
		}
		c.PriceTiers++

	case datanorm.Media:
		id, ok, err := tx.FindArticleIDByNumber(r.Artnr)
		if err != nil {
			return outcomeOK, err
		}
		if !ok {
			return outcomeSkipped, nil
		}
		if err := tx.InsertMedia(id, r); err != nil {
			return outcomeOK, err
		}
		c.Media++

	case datanorm.Set:
		id, ok, err := tx.FindArticleIDByNumber(r.SetArtnr)
		if err != nil {
			return outcomeOK, err
		}
		if !ok {
			return outcomeSkipped, nil
		}
		menge, err := datanorm.ParseDecimal(r.Menge)
		if err != nil {
			return outcomeOK, err
		}
		if err := tx.InsertSetItem(id, r.Artnr, menge); err != nil {
			return outcomeOK, err
		}
		c.Sets++

	default:
		return outcomeSkipped, nil
	}
	return outcomeOK, nil
}

// flushTexts – jeden zapis długiego tekstu na artykuł, na końcu pliku.
func (i *Importer) flushTexts(tx store.Tx, st *fileState, c *Counts, fail func(int, error)) {
	for _, artnr := range st.textOrder {
		tb := st.texts[artnr]
		id, ok, err := tx.FindArticleIDByNumber(artnr)
		if err != nil {
			fail(tb.lastLine, err)
			continue
		}
		if !ok {
			i.log.Debug().Str("artnr", artnr).Msg("tekst do nieznanego artykułu – pomijam")
			continue
		}
		if err := tx.SetArticleText(id, strings.Join(tb.lines, "\n")); err != nil {
			fail(tb.lastLine, fmt.Errorf("tekst %s: %w", artnr, err))
			continue
		}
		c.Texts++
	}
}
