package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/models"
	"github.com/narwhalmedia/catalog/pkg/repository"
)

// Enumerations maps career and filmwork type names to their ids in the target store.
type Enumerations struct {
	Careers map[string]uuid.UUID
	Types   map[string]uuid.UUID
}

// CareerID returns the id of the named career.
func (e *Enumerations) CareerID(name string) (uuid.UUID, error) {
	id, ok := e.Careers[name]
	if !ok {
		return uuid.Nil, pkgerrors.NotFound(fmt.Sprintf("career %q not bootstrapped", name))
	}
	return id, nil
}

// TypeID returns the id of the named filmwork type.
func (e *Enumerations) TypeID(name string) (uuid.UUID, error) {
	id, ok := e.Types[name]
	if !ok {
		return uuid.Nil, pkgerrors.NotFound(fmt.Sprintf("filmwork type %q not bootstrapped", name))
	}
	return id, nil
}

// Bootstrap makes sure every well-known career and filmwork type exists,
// reusing rows already present by name, and returns their ids.
func Bootstrap(ctx context.Context, db *gorm.DB, schema models.Schema) (*Enumerations, error) {
	enums := &Enumerations{
		Careers: make(map[string]uuid.UUID, len(models.Careers)),
		Types:   make(map[string]uuid.UUID, len(models.FilmworkTypes)),
	}

	for _, name := range models.Careers {
		id, err := ensureNamed(ctx, db, schema, models.TableCareer, name, func(id uuid.UUID) *models.Career {
			return &models.Career{ID: id, Name: name}
		}, func(c *models.Career) uuid.UUID { return c.ID })
		if err != nil {
			return nil, fmt.Errorf("failed to bootstrap career %s: %w", name, err)
		}
		enums.Careers[name] = id
	}

	for _, name := range models.FilmworkTypes {
		id, err := ensureNamed(ctx, db, schema, models.TableFilmworkType, name, func(id uuid.UUID) *models.FilmworkType {
			return &models.FilmworkType{ID: id, Name: name}
		}, func(t *models.FilmworkType) uuid.UUID { return t.ID })
		if err != nil {
			return nil, fmt.Errorf("failed to bootstrap filmwork type %s: %w", name, err)
		}
		enums.Types[name] = id
	}

	return enums, nil
}

func ensureNamed[T any](
	ctx context.Context,
	db *gorm.DB,
	schema models.Schema,
	table, name string,
	build func(uuid.UUID) *T,
	idOf func(*T) uuid.UUID,
) (uuid.UUID, error) {
	existing, err := repository.FindOneBy[T](repository.WithContext(ctx, db, schema, table), "name = ?", name)
	if err == nil {
		return idOf(existing), nil
	}
	if !pkgerrors.IsNotFound(err) {
		return uuid.Nil, err
	}

	entity := build(uuid.New())
	if _, err := repository.InsertIgnore(repository.WithContext(ctx, db, schema, table), entity); err != nil {
		return uuid.Nil, err
	}
	return idOf(entity), nil
}
