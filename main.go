package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	conf "github.com/bartek5186/dnimport/internal/config"
	"github.com/bartek5186/dnimport/internal/datanorm"
	"github.com/bartek5186/dnimport/internal/db"
	"github.com/bartek5186/dnimport/internal/importer"
	logs "github.com/bartek5186/dnimport/internal/logs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

var errUsage = errors.New("brak wymaganego --input")

// globalne flagi
type globalFlags struct {
	configPath string
	dbDriver   string
	dbDSN      string
	reportDir  string
	encoding   string
	verbose    bool
}

type importFlags struct {
	input    string
	supplier string
	version  string
	dryRun   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	var f importFlags

	root := &cobra.Command{
		Use:   "dnimport --input <katalog|archiwum.zip>",
		Short: "Import katalogów DATANORM 4/5 do bazy",
		Long: `Czyta katalogi dostawców w formacie DATANORM (v4 stała szerokość, v5 średniki)
i zapisuje je do bazy. Każdy plik to osobna transakcja: przy dry-run albo gdy
błędnych linii jest więcej niż próg (domyślnie 5%) cały plik idzie do rollbacku.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.input == "" {
				_ = cmd.Usage()
				return errUsage
			}
			return runImport(cmd.Context(), g, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Plik konfiguracji .json/.yaml (domyślnie w katalogu aplikacji)")
	pf.StringVar(&g.dbDriver, "db-driver", "", "Sterownik bazy: sqlite | sqlite-pure | postgres | mysql")
	pf.StringVar(&g.dbDSN, "db-dsn", "", "DSN bazy")
	pf.StringVar(&g.reportDir, "report-dir", "", "Katalog raportów JSON")
	pf.StringVar(&g.encoding, "encoding", "", "Strona kodowa plików (domyślnie cp850)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Logi debug + SQL")

	fl := root.Flags()
	fl.StringVar(&f.input, "input", "", "Katalog albo archiwum z plikami DATANORM (wymagane)")
	fl.StringVar(&f.supplier, "supplier", "", "Nazwa dostawcy (informacyjnie)")
	fl.StringVar(&f.version, "version", "auto", "Wersja formatu: auto | v4 | v5")
	fl.StringVar(&f.dryRun, "dry-run", "false", "true = nic nie zostaje zapisane")

	root.AddCommand(newWatchCmd(&g), newVersionCmd())
	return root
}

// app – wspólne zasoby komend
type app struct {
	cfg *conf.Config
	log zerolog.Logger
	dbh *db.Handle
}

func setup(g globalFlags) (*app, error) {
	appDir := mustAppDataDir("dnimport")

	cfgPath := g.configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(appDir, "config.json")
	}
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		return nil, err
	}

	if g.dbDriver != "" {
		cfg.Database.Driver = g.dbDriver
	}
	if g.dbDSN != "" {
		cfg.Database.DSN = g.dbDSN
	}
	if g.reportDir != "" {
		cfg.ReportDir = g.reportDir
	}
	if g.encoding != "" {
		cfg.Encoding = g.encoding
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logs.New(cfg.Log.File, cfg.Log.Console, cfg.Log.Level)
	if firstRun {
		log.Info().Msgf("Utworzono domyślną konfigurację: %s", cfgPath)
	}

	dbh, err := db.OpenAt(appDir, db.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN, Verbose: g.verbose})
	if err != nil {
		return nil, fmt.Errorf("DB open error: %w", err)
	}
	if err := dbh.Migrate(); err != nil {
		dbh.Close()
		return nil, fmt.Errorf("DB migrate error: %w", err)
	}
	log.Info().Str("driver", dbh.Driver).Msg("DB ready")

	return &app{cfg: cfg, log: log, dbh: dbh}, nil
}

func (a *app) newImporter(opt importer.Options) *importer.Importer {
	opt.Encoding = a.cfg.Encoding
	threshold := a.cfg.ErrorThreshold
	opt.ErrorThreshold = &threshold
	opt.ReportDir = a.cfg.ReportDir
	return importer.New(a.log, db.NewGateway(a.dbh.DB), opt)
}

func runImport(ctx context.Context, g globalFlags, f importFlags) error {
	version, err := datanorm.ParseVersion(f.version)
	if err != nil {
		return err
	}
	dryRun, err := strconv.ParseBool(f.dryRun)
	if err != nil {
		return fmt.Errorf("--dry-run: oczekiwano true|false, jest %q", f.dryRun)
	}

	a, err := setup(g)
	if err != nil {
		return err
	}
	defer a.dbh.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	// Ctrl+C przerywa import między plikami
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	imp := a.newImporter(importer.Options{
		Version:  version,
		DryRun:   dryRun,
		Supplier: f.supplier,
		Progress: progressLogger(a.log),
	})
	res, err := imp.Run(ctx, f.input)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// progressLogger – co 1000 linii wpis debug
func progressLogger(log zerolog.Logger) importer.ProgressFunc {
	return func(p importer.Progress) {
		if p.Line%1000 != 0 {
			return
		}
		log.Debug().Str("file", p.File).Int("line", p.Line).
			Int("ok", p.Success).Int("skipped", p.Skipped).Int("errors", p.Errors).
			Msg("postęp")
	}
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}
