// internal/syncer/syncer.go
package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	conf "github.com/bartek5186/dnimport/internal/config"
	"github.com/bartek5186/dnimport/internal/db"
	"github.com/bartek5186/dnimport/internal/importer"
	"github.com/bartek5186/dnimport/internal/inputs"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RunFunc uruchamia jedną sesję importu dla ścieżki (archiwum albo katalog).
type RunFunc func(ctx context.Context, path string) (*importer.Result, error)

// Syncer pilnuje katalogu inbox i importuje nowe katalogi DATANORM.
// Sesje nigdy się nie nakładają – jeden worker.
type Syncer struct {
	log     zerolog.Logger
	db      *gorm.DB
	run     RunFunc
	mu      sync.Mutex
	cfg     conf.WatchConfig
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	ticks   uint64
	cron    *cron.Cron
	work    sync.Mutex // jedna sesja naraz
}

func New(log zerolog.Logger, cfg conf.WatchConfig, gdb *gorm.DB, run RunFunc) *Syncer {
	return &Syncer{log: log, cfg: cfg, db: gdb, run: run}
}

func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if err := os.MkdirAll(s.cfg.InboxDir, 0o755); err != nil {
		return fmt.Errorf("inbox %s: %w", s.cfg.InboxDir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.ticks = 0

	if s.cfg.Schedule != "" {
		c := cron.New(cron.WithSeconds())
		if _, err := c.AddFunc(s.cfg.Schedule, func() { s.tickOnce(ctx) }); err != nil {
			cancel()
			return fmt.Errorf("schedule %q: %w", s.cfg.Schedule, err)
		}
		s.cron = c
		c.Start()
		s.log.Info().Str("schedule", s.cfg.Schedule).Str("inbox", s.cfg.InboxDir).Msg("Syncer: start (cron)")
	} else {
		s.wg.Add(1)
		go s.loop(ctx)
		s.log.Info().Dur("interval", s.interval()).Str("inbox", s.cfg.InboxDir).Msg("Syncer: start")
	}
	s.running = true
	return nil
}

func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	c := s.cron
	s.cancel = nil
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		// czeka na trwające zadania
		<-c.Stop().Done()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("Syncer: stop")
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Syncer) interval() time.Duration {
	if s.cfg.PollSec > 0 {
		return time.Duration(s.cfg.PollSec) * time.Second
	}
	return 60 * time.Second
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	// pierwszy strzał od razu
	s.tickOnce(ctx)

	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Syncer: koniec pętli")
			return
		case <-ticker.C:
			s.tickOnce(ctx)
		}
	}
}

func (s *Syncer) tickOnce(ctx context.Context) {
	if !s.work.TryLock() {
		s.log.Debug().Msg("Syncer: poprzedni przebieg nadal trwa – pomijam")
		return
	}
	defer s.work.Unlock()

	s.mu.Lock()
	s.ticks++
	n := s.ticks
	s.mu.Unlock()

	s.log.Debug().Uint64("tick", n).Msg("Syncer: skan inboxa")
	s.ScanOnce(ctx)
}

// ScanOnce przetwarza wszystkie nowe wpisy inboxa (archiwa .zip i katalogi).
func (s *Syncer) ScanOnce(ctx context.Context) {
	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		s.log.Error().Err(err).Str("dir", s.cfg.InboxDir).Msg("nie mogę odczytać katalogu")
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		name := e.Name()
		if !e.IsDir() && !strings.EqualFold(filepath.Ext(name), ".zip") {
			continue
		}
		full := filepath.Join(s.cfg.InboxDir, name)

		importID, done, err := s.registerFile(full, name, e.IsDir())
		if err != nil {
			s.log.Error().Err(err).Str("file", name).Msg("rejestracja pliku nieudana")
			continue
		}
		if done {
			s.log.Debug().Str("file", name).Msg("plik już był i DONE, pomijam")
			continue
		}

		res, err := s.run(ctx, full)
		if err != nil {
			s.log.Error().Err(err).Str("file", name).Uint("import_id", importID).Msg("błąd przetwarzania pliku")
			s.markStatus(importID, name, map[string]any{"status": db.ImportError, "last_error": err.Error()})
			continue
		}

		now := time.Now()
		s.markStatus(importID, name, map[string]any{
			"status":       db.ImportDone,
			"processed_at": now,
			"report_path":  res.ReportPath,
			"articles":     res.Counts.Articles,
			"errors":       res.Counts.Errors,
			"last_error":   "",
		})
		s.log.Info().Str("file", name).Uint("import_id", importID).
			Int("articles", res.Counts.Articles).Int("errors", res.Counts.Errors).Msg("przetworzono OK")
	}
}

// markStatus – nieudany zapis DONE oznacza ponowny import przy następnym skanie.
func (s *Syncer) markStatus(importID uint, name string, fields map[string]any) {
	err := s.db.Model(&db.ImportFile{}).Where("import_id = ?", importID).Updates(fields).Error
	if err != nil {
		s.log.Warn().Err(err).Str("file", name).Uint("import_id", importID).
			Interface("status", fields["status"]).Msg("nie udało się zapisać statusu importu")
	}
}

// registerFile – idempotencja po sha256; zwraca done=true, gdy wpis był już przetworzony.
func (s *Syncer) registerFile(fullPath, name string, isDir bool) (uint, bool, error) {
	h, size, err := entrySHA256(fullPath, isDir)
	if err != nil {
		return 0, false, err
	}

	var existing db.ImportFile
	err = s.db.Where("sha256 = ?", h).Take(&existing).Error
	if err == nil {
		if existing.Status == db.ImportDone {
			return existing.ImportID, true, nil
		}
		s.log.Warn().Str("file", name).Uint("import_id", existing.ImportID).
			Int("status", existing.Status).Msg("plik istnieje, ale nie DONE, ponawiam przetwarzanie")
		return existing.ImportID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	rec := db.ImportFile{
		Filename:  name,
		SHA256:    h,
		SizeBytes: size,
		Status:    db.ImportPending,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return 0, false, err
	}
	return rec.ImportID, false, nil
}

// entrySHA256 – dla katalogu hash z nazw i treści plików DATANORM (w kolejności nazw).
func entrySHA256(path string, isDir bool) (string, int64, error) {
	h := sha256.New()
	var size int64

	files := []string{path}
	if isDir {
		set, err := inputs.Resolve(path)
		if err != nil {
			return "", 0, err
		}
		files = files[:0]
		for _, f := range set.Files {
			files = append(files, f.Path)
		}
	}

	for _, p := range files {
		if isDir {
			io.WriteString(h, filepath.Base(p))
		}
		n, err := hashFile(h, p)
		if err != nil {
			return "", 0, err
		}
		size += n
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

func hashFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}
