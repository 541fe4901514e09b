// internal/db/gateway.go
package db

import (
	"context"
	"errors"

	"github.com/bartek5186/dnimport/internal/datanorm"
	"github.com/bartek5186/dnimport/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway – implementacja store.Gateway na gorm.
type Gateway struct {
	db *gorm.DB
}

func NewGateway(gdb *gorm.DB) *Gateway {
	return &Gateway{db: gdb}
}

// Begin otwiera transakcję pliku. Anulowanie ctx jej nie przerywa –
// rozpoczęty plik zawsze kończy się commitem albo rollbackiem.
func (g *Gateway) Begin(ctx context.Context) (store.Tx, error) {
	tx := g.db.WithContext(context.WithoutCancel(ctx)).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &catalogTx{tx: tx}, nil
}

type catalogTx struct {
	tx   *gorm.DB
	done bool
}

const savepoint = "dn_line"

// guard – każda operacja w savepoincie, żeby błąd (np. unique na postgresie)
// nie zablokował reszty transakcji pliku.
func (c *catalogTx) guard(fn func(tx *gorm.DB) error) error {
	if err := c.tx.SavePoint(savepoint).Error; err != nil {
		return err
	}
	if err := fn(c.tx); err != nil {
		_ = c.tx.RollbackTo(savepoint).Error
		return err
	}
	return c.tx.Exec("RELEASE SAVEPOINT " + savepoint).Error
}

func (c *catalogTx) UpsertWarengruppe(w datanorm.Warengruppe) error {
	row := Warengruppe{Hauptgruppe: w.Hauptgruppe, Gruppe: w.Gruppe, Bezeichnung: w.Bezeichnung}
	return c.guard(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hauptgruppe"}, {Name: "gruppe"}},
			DoUpdates: clause.AssignmentColumns([]string{"bezeichnung"}),
		}).Create(&row).Error
	})
}

func (c *catalogTx) UpsertRabattgruppe(r datanorm.Rabattgruppe) error {
	row := Rabattgruppe{Nummer: r.Nummer, Bezeichnung: r.Bezeichnung}
	return c.guard(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "nummer"}},
			DoUpdates: clause.AssignmentColumns([]string{"bezeichnung"}),
		}).Create(&row).Error
	})
}

// UpsertArticle aktualizuje tylko kolumny ustawione w patchu (nil = nie ruszaj).
func (c *catalogTx) UpsertArticle(p datanorm.ArticlePatch) (uint, error) {
	row := Article{Artnr: p.Artnr}
	var cols []string
	set := func(dst *string, v *string, col string) {
		if v != nil {
			*dst = *v
			cols = append(cols, col)
		}
	}
	set(&row.Kurztext1, p.Kurztext1, "kurztext1")
	set(&row.Kurztext2, p.Kurztext2, "kurztext2")
	set(&row.Einheit, p.Einheit, "einheit")
	set(&row.EAN, p.EAN, "ean")
	set(&row.Matchcode, p.Matchcode, "matchcode")
	set(&row.Warengruppe, p.Warengruppe, "warengruppe")
	set(&row.Rabattgruppe, p.Rabattgruppe, "rabattgruppe")
	set(&row.Katalogseite, p.Katalogseite, "katalogseite")
	set(&row.Steuerkennzeichen, p.Steuerkennzeichen, "steuerkennzeichen")
	cols = append(cols, "updated_at")

	var id uint
	err := c.guard(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artnr"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).Create(&row).Error; err != nil {
			return err
		}
		// przy konflikcie nie każdy sterownik zwraca id – czytamy po kluczu
		return tx.Model(&Article{}).Where("artnr = ?", p.Artnr).Select("id").Scan(&id).Error
	})
	return id, err
}

func (c *catalogTx) SetArticleText(articleID uint, text string) error {
	return c.guard(func(tx *gorm.DB) error {
		res := tx.Model(&Article{}).Where("id = ?", articleID).Update("langtext", text)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (c *catalogTx) FindArticleIDByNumber(artnr string) (uint, bool, error) {
	var a Article
	err := c.tx.Select("id").Where("artnr = ?", artnr).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return a.ID, true, nil
}

func (c *catalogTx) InsertPrice(articleID uint, p datanorm.Price, cents int64) (uint, error) {
	row := Price{
		ArticleID:   articleID,
		Kennzeichen: p.Kennzeichen,
		BetragCents: cents,
		Einheit:     p.Einheit,
		GueltigAb:   p.GueltigAb,
		GueltigBis:  p.GueltigBis,
		Kundennr:    p.Kundennr,
	}
	err := c.guard(func(tx *gorm.DB) error { return tx.Create(&row).Error })
	return row.ID, err
}

func (c *catalogTx) InsertPriceTier(priceID uint, vonMenge decimal.Decimal, cents int64) error {
	row := PriceTier{PriceID: priceID, VonMenge: vonMenge, AufabschlagCents: cents}
	return c.guard(func(tx *gorm.DB) error { return tx.Create(&row).Error })
}

func (c *catalogTx) InsertMedia(articleID uint, m datanorm.Media) error {
	row := Media{ArticleID: articleID, Art: m.Art, Dateiname: m.Dateiname, Beschreibung: m.Beschreibung}
	return c.guard(func(tx *gorm.DB) error { return tx.Create(&row).Error })
}

func (c *catalogTx) InsertSetItem(setArticleID uint, artnr string, menge decimal.Decimal) error {
	row := ArticleSet{SetArticleID: setArticleID, Artnr: artnr, Menge: menge}
	return c.guard(func(tx *gorm.DB) error { return tx.Create(&row).Error })
}

func (c *catalogTx) Commit() error {
	if c.done {
		return nil
	}
	c.done = true
	return c.tx.Commit().Error
}

// Rollback jest idempotentny – importer woła go w defer.
func (c *catalogTx) Rollback() error {
	if c.done {
		return nil
	}
	c.done = true
	return c.tx.Rollback().Error
}
