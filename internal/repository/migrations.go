package repository

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/mailsift/internal/models"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202410150001_create_emails",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Email{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("emails")
			},
		},
		{
			ID: "202410150002_create_email_attachments",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.EmailAttachment{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("email_attachments")
			},
		},
	}
}

// MigrateDB applies pending schema migrations in order.
func MigrateDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(5)

	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	return nil
}

// RollbackLast reverts the most recent migration.
func RollbackLast(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	return m.RollbackLast()
}
