package database

import (
	"backend/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError turns driver unique/foreign-key violations into
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated so the service
// layer can map them to domain errors.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Client{},
		&model.Invoice{},
		&model.YearCounter{},
		&model.Cost{},
		&model.PricingRule{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}
