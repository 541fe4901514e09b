package db

import (
	"fmt"
)

// Migrate tworzy/aktualizuje schemat bazy.
func (h *Handle) Migrate() error {
	if err := h.DB.AutoMigrate(
		&ImportFile{},
		&Warengruppe{},
		&Rabattgruppe{},
		&Article{},
		&Price{},
		&PriceTier{},
		&Media{},
		&ArticleSet{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}
	return nil
}
