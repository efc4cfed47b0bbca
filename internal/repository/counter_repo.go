package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository allocates per-year sequential invoice numbers.
type CounterRepository interface {
	// NextNumber atomically reserves and returns the next number for
	// the given fiscal year, creating the counter row on first use.
	// Concurrent calls for the same year never receive the same number.
	NextNumber(ctx context.Context, year int) (int, error)
	// Current returns the last issued number for a year, zero if none.
	Current(ctx context.Context, year int) (int, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) NextNumber(ctx context.Context, year int) (int, error) {
	db := GetDB(ctx, r.db)

	counter := model.YearCounter{Year: year}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
		return 0, err
	}

	// The increment happens in a single statement so the database row
	// lock is the serialization point; a plain read-then-write would
	// hand out duplicate numbers under concurrency.
	var next int
	err := db.Raw(
		"UPDATE year_counters SET last_number = last_number + 1 WHERE year = ? RETURNING last_number",
		year,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *counterRepository) Current(ctx context.Context, year int) (int, error) {
	var counter model.YearCounter
	err := GetDB(ctx, r.db).First(&counter, "year = ?", year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}
