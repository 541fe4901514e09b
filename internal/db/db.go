package db

import (
	"fmt"
	"path/filepath"

	pure "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Handle struct {
	DB     *gorm.DB
	Driver string
	Path   string
}

// Options – wybór sterownika. Pusty DSN dla sqlite => plik w katalogu aplikacji.
type Options struct {
	Driver  string
	DSN     string
	Verbose bool
}

// OpenAt otwiera bazę; domyślnie sqlite w dir/datanorm.db.
func OpenAt(dir string, opt Options) (*Handle, error) {
	driver := opt.Driver
	if driver == "" {
		driver = "sqlite"
	}
	dsn := opt.DSN

	var dial gorm.Dialector
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = filepath.Join(dir, "datanorm.db")
		}
		dial = sqlite.Open(dsn)
	case "sqlite-pure":
		// bez cgo
		if dsn == "" {
			dsn = filepath.Join(dir, "datanorm.db")
		}
		dial = pure.Open(dsn)
	case "postgres":
		dial = postgres.Open(dsn)
	case "mysql":
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("nieznany sterownik bazy %q", driver)
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if opt.Verbose {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}
	gdb, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &Handle{DB: gdb, Driver: driver, Path: dsn}, nil
}

func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
