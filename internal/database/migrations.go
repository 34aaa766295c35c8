package database

import (
	"log"
	"log/slog"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(&Document{}, &ChatArchive{})
			},
		},
		{
			ID: "1",
			Migrate: func(txn *gorm.DB) error {
				if err := txn.Migrator().AddColumn(&Document{}, "Seq"); err != nil {
					return err
				}

				// Backfill existing rows; upload time is the best ordering we
				// have for documents registered before the column existed.
				var docs []Document
				if err := txn.Order("uploaded_at ASC, id ASC").Find(&docs).Error; err != nil {
					return err
				}
				for i, doc := range docs {
					err := txn.Model(&Document{}).Where("id = ?", doc.Id).Update("seq", i+1).Error
					if err != nil {
						return err
					}
				}
				return nil
			},
		},
	})

	migrator.InitSchema(func(txn *gorm.DB) error {
		// Run by the migrator when no previous migration is detected, so a
		// clean database gets the latest schema directly.

		log.Println("clean database detected, running full schema initialization")

		dbType := db.Dialector.Name()
		if dbType == "sqlite" || dbType == "sqlite3" {
			// Sqlite does not enable foreign key constraints by default.
			if err := txn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				slog.Error("error enabling foreign keys for SQLite", "error", err)
			}
		}

		return txn.AutoMigrate(&Document{}, &ChatArchive{})
	})

	return migrator
}
