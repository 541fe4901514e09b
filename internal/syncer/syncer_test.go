package syncer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	conf "github.com/bartek5186/dnimport/internal/config"
	"github.com/bartek5186/dnimport/internal/db"
	"github.com/bartek5186/dnimport/internal/importer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRun struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRun) run(ctx context.Context, path string) (*importer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filepath.Base(path))
	if f.err != nil {
		return nil, f.err
	}
	return &importer.Result{ReportPath: "report.json", Counts: importer.Counts{Articles: 3}}, nil
}

func (f *fakeRun) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setupInbox(t *testing.T) (string, *gorm.DB) {
	t.Helper()
	h, err := db.OpenAt(t.TempDir(), db.Options{Driver: "sqlite-pure"})
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })

	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "b-acme.zip"), []byte("zip bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("x"), 0o644))
	batch := filepath.Join(inbox, "a-batch")
	require.NoError(t, os.Mkdir(batch, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(batch, "DATANORM.001"), []byte("A;ART1;Rohr\r\n"), 0o644))
	return inbox, h.DB
}

func TestScanOnceDedup(t *testing.T) {
	inbox, gdb := setupInbox(t)
	fr := &fakeRun{}
	s := New(zerolog.Nop(), conf.WatchConfig{InboxDir: inbox}, gdb, fr.run)

	s.ScanOnce(context.Background())
	assert.Equal(t, []string{"a-batch", "b-acme.zip"}, fr.calls)

	var rows []db.ImportFile
	require.NoError(t, gdb.Order("filename").Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, db.ImportDone, r.Status)
		assert.Equal(t, "report.json", r.ReportPath)
		assert.Equal(t, 3, r.Articles)
		assert.NotNil(t, r.ProcessedAt)
		assert.Len(t, r.SHA256, 64)
	}

	// drugi skan – nic nowego
	s.ScanOnce(context.Background())
	assert.Equal(t, 2, fr.count())

	// zmiana treści katalogu = nowy wpis
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "a-batch", "DATPREIS.001"), []byte("P\r\n"), 0o644))
	s.ScanOnce(context.Background())
	assert.Equal(t, 3, fr.count())
}

func TestScanOnceRetriesFailed(t *testing.T) {
	inbox, gdb := setupInbox(t)
	fr := &fakeRun{err: errors.New("baza niedostępna")}
	s := New(zerolog.Nop(), conf.WatchConfig{InboxDir: inbox}, gdb, fr.run)

	s.ScanOnce(context.Background())
	assert.Equal(t, 2, fr.count())

	var failed db.ImportFile
	require.NoError(t, gdb.Where("filename = ?", "b-acme.zip").Take(&failed).Error)
	assert.Equal(t, db.ImportError, failed.Status)
	assert.Equal(t, "baza niedostępna", failed.LastError)

	fr.mu.Lock()
	fr.err = nil
	fr.mu.Unlock()
	s.ScanOnce(context.Background())
	assert.Equal(t, 4, fr.count())

	var n int64
	gdb.Model(&db.ImportFile{}).Count(&n)
	assert.EqualValues(t, 2, n)
}

func TestStartStop(t *testing.T) {
	inbox, gdb := setupInbox(t)
	fr := &fakeRun{}
	s := New(zerolog.Nop(), conf.WatchConfig{InboxDir: inbox, PollSec: 3600}, gdb, fr.run)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	// pierwszy skan od razu po starcie
	assert.Eventually(t, func() bool { return fr.count() == 2 }, 5*time.Second, 20*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestStartBadSchedule(t *testing.T) {
	inbox, gdb := setupInbox(t)
	s := New(zerolog.Nop(), conf.WatchConfig{InboxDir: inbox, Schedule: "nie cron"}, gdb, (&fakeRun{}).run)

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestScanOnceLogsFailedStatusUpdate(t *testing.T) {
	inbox, gdb := setupInbox(t)
	var buf bytes.Buffer
	calls := 0
	run := func(ctx context.Context, path string) (*importer.Result, error) {
		calls++
		// tabela znika w trakcie importu – zapis DONE się nie uda
		require.NoError(t, gdb.Migrator().DropTable(&db.ImportFile{}))
		return &importer.Result{}, nil
	}
	s := New(zerolog.New(&buf), conf.WatchConfig{InboxDir: inbox}, gdb, run)

	s.ScanOnce(context.Background())
	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "nie udało się zapisać statusu importu")
}
