// Package store opisuje kontrakt warstwy zapisu, z którego korzysta importer.
// Implementacja (gorm) jest w internal/db.
package store

import (
	"context"

	"github.com/bartek5186/dnimport/internal/datanorm"
	"github.com/shopspring/decimal"
)

// Gateway otwiera transakcję obejmującą jeden plik katalogu.
type Gateway interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx – wszystkie upserty są kluczowane naturalnymi identyfikatorami,
// nigdy id podanym przez wołającego. Błąd jednej operacji nie psuje transakcji.
type Tx interface {
	UpsertWarengruppe(w datanorm.Warengruppe) error
	UpsertRabattgruppe(r datanorm.Rabattgruppe) error
	UpsertArticle(p datanorm.ArticlePatch) (uint, error)
	SetArticleText(articleID uint, text string) error
	FindArticleIDByNumber(artnr string) (uint, bool, error)
	InsertPrice(articleID uint, p datanorm.Price, cents int64) (uint, error)
	InsertPriceTier(priceID uint, vonMenge decimal.Decimal, cents int64) error
	InsertMedia(articleID uint, m datanorm.Media) error
	InsertSetItem(setArticleID uint, artnr string, menge decimal.Decimal) error

	Commit() error
	Rollback() error
}
