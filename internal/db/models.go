// internal/db/models.go
package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// import_files – archiwa z inboxa (tryb watch), dedup po nazwie/sha256
type ImportFile struct {
	ImportID    uint   `gorm:"primaryKey;column:import_id"`
	Filename    string `gorm:"size:255;index"`
	SHA256      string `gorm:"column:sha256;size:64;uniqueIndex"`
	SizeBytes   int64
	Status      int    `gorm:"index"` // 0=pending, 1=done, 2=error
	LastError   string `gorm:"type:text"`
	ReportPath  string
	Articles    int
	Errors      int
	ReceivedAt  time.Time `gorm:"autoCreateTime"`
	ProcessedAt *time.Time
}

const (
	ImportPending = 0
	ImportDone    = 1
	ImportError   = 2
)

// warengruppen
type Warengruppe struct {
	ID          uint   `gorm:"primaryKey"`
	Hauptgruppe string `gorm:"size:16;uniqueIndex:uniq_wg"`
	Gruppe      string `gorm:"size:16;uniqueIndex:uniq_wg"`
	Bezeichnung string `gorm:"size:80"`
}

func (Warengruppe) TableName() string { return "warengruppen" }

// rabattgruppen
type Rabattgruppe struct {
	ID          uint   `gorm:"primaryKey"`
	Nummer      string `gorm:"size:16;uniqueIndex"`
	Bezeichnung string `gorm:"size:80"`
}

func (Rabattgruppe) TableName() string { return "rabattgruppen" }

// articles – artnr to jedyna stała tożsamość
type Article struct {
	ID                uint   `gorm:"primaryKey"`
	Artnr             string `gorm:"size:32;uniqueIndex;not null"`
	Kurztext1         string `gorm:"size:80"`
	Kurztext2         string `gorm:"size:80"`
	Einheit           string `gorm:"size:8"`
	EAN               string `gorm:"column:ean;size:32;index"`
	Matchcode         string `gorm:"size:32"`
	Warengruppe       string `gorm:"size:16"`
	Rabattgruppe      string `gorm:"size:16"`
	Katalogseite      string `gorm:"size:16"`
	Steuerkennzeichen string `gorm:"size:2"`
	Langtext          string `gorm:"type:text"`
	UpdatedAt         time.Time
}

// prices – kwoty w groszach/centach
type Price struct {
	ID          uint   `gorm:"primaryKey"`
	ArticleID   uint   `gorm:"index;not null"`
	Kennzeichen string `gorm:"size:1"`
	BetragCents int64
	Einheit     string `gorm:"size:8"`
	GueltigAb   string `gorm:"size:10"`
	GueltigBis  string `gorm:"size:10"`
	Kundennr    string `gorm:"size:16"`
}

// price_tiers
type PriceTier struct {
	ID               uint            `gorm:"primaryKey"`
	PriceID          uint            `gorm:"index;not null"`
	VonMenge         decimal.Decimal `gorm:"type:decimal(14,3)"`
	AufabschlagCents int64
}

// media
type Media struct {
	ID           uint   `gorm:"primaryKey"`
	ArticleID    uint   `gorm:"index;not null"`
	Art          string `gorm:"size:4"`
	Dateiname    string `gorm:"size:255"`
	Beschreibung string `gorm:"size:80"`
}

func (Media) TableName() string { return "media" }

// article_sets – składniki zestawów (J)
type ArticleSet struct {
	ID           uint            `gorm:"primaryKey"`
	SetArticleID uint            `gorm:"index;not null"`
	Artnr        string          `gorm:"size:32"`
	Menge        decimal.Decimal `gorm:"type:decimal(14,3)"`
}
