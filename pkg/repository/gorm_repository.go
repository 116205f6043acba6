package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/models"
)

// The helpers below expect db to be already scoped to its table, e.g.
// db.WithContext(ctx).Table("content.genre").

// Create validates and inserts a new entity.
func Create[T any](db *gorm.DB, entity *T) error {
	if err := models.Validate(entity); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "invalid entity", err)
	}
	if err := db.Create(entity).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict("entity already exists")
		}
		return err
	}
	return nil
}

// InsertIgnore inserts entity unless it collides with an existing row on any
// unique key. It reports whether a row was written.
func InsertIgnore[T any](db *gorm.DB, entity *T) (bool, error) {
	if err := models.Validate(entity); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.ErrorTypeInvalidData, "invalid entity", err)
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(entity)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds an entity by its ID.
func FindByID[T any](db *gorm.DB, id uuid.UUID) (*T, error) {
	var entity T
	if err := db.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("entity not found")
		}
		return nil, err
	}
	return &entity, nil
}

// FindOneBy finds a single entity by a query condition.
func FindOneBy[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var entity T
	if err := db.Where(query, args...).Order("created_at, id").First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("entity not found")
		}
		return nil, err
	}
	return &entity, nil
}

// Update validates and saves all fields of an entity.
func Update[T any](db *gorm.DB, entity *T) error {
	if err := models.Validate(entity); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "invalid entity", err)
	}
	if err := db.Save(entity).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict("entity already exists")
		}
		return err
	}
	return nil
}

// Delete removes an entity by its ID.
func Delete[T any](db *gorm.DB, id uuid.UUID) error {
	var entity T
	result := db.Delete(&entity, "id = ?", id)
	if result.Error != nil {
		if pkgerrors.IsForeignKeyError(result.Error) {
			return pkgerrors.Wrap(pkgerrors.ErrorTypeConflict, "entity is still referenced", result.Error)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.NotFound("entity not found for deletion")
	}
	return nil
}

// List retrieves a page of entities in the given order.
func List[T any](db *gorm.DB, order string, limit, offset int) ([]*T, error) {
	var entities []*T
	if err := db.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Count returns the total number of entities.
func Count[T any](db *gorm.DB) (int64, error) {
	var count int64
	var entity T
	if err := db.Model(&entity).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// WithContext is a shorthand for scoping db to ctx and a schema table.
func WithContext(ctx context.Context, db *gorm.DB, schema models.Schema, table string) *gorm.DB {
	return db.WithContext(ctx).Table(schema.Table(table))
}
