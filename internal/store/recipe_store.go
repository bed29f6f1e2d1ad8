package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Recipe represents a row in the recipes table. The validate tags are the
// authoritative field rules; see ValidateRecipe.
type Recipe struct {
	ID           int64  `db:"id"`
	Name         string `db:"name" json:"name" validate:"notblank,max=100"`
	Ingredients  string `db:"ingredients" json:"ingredients" validate:"notblank"`
	Instructions string `db:"instructions" json:"instructions" validate:"notblank"`
	PrepTime     int    `db:"prep_time" json:"prepTime" validate:"min=1,max=1000"`
}

// RecipeStore is the sqlx-backed implementation of RecipeStoreIface.
type RecipeStore struct {
	db *sqlx.DB
}

// NewRecipeStore creates a new RecipeStore. The schema must already be
// migrated.
func NewRecipeStore(db *sqlx.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *RecipeStore) q(query string) string { return s.db.Rebind(query) }

// List returns all recipes ordered by id.
func (s *RecipeStore) List(ctx context.Context) ([]*Recipe, error) {
	recipes := []*Recipe{}
	err := s.db.SelectContext(ctx, &recipes,
		`SELECT id, name, ingredients, instructions, prep_time FROM recipes ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Get returns the recipe with the given id, or ErrNotFound.
func (s *RecipeStore) Get(ctx context.Context, id int64) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r, s.q(
		`SELECT id, name, ingredients, instructions, prep_time FROM recipes WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Insert validates r and stores it under a fresh id. Any id already set on r
// is ignored. The returned recipe carries the assigned id.
func (s *RecipeStore) Insert(ctx context.Context, r *Recipe) (*Recipe, error) {
	if err := ValidateRecipe(r); err != nil {
		return nil, err
	}

	var id int64
	switch s.db.DriverName() {
	case "mysql":
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO recipes (name, ingredients, instructions, prep_time) VALUES (?, ?, ?, ?)
		`, r.Name, r.Ingredients, r.Instructions, r.PrepTime)
		if err != nil {
			return nil, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, err
		}
	default: // sqlite, postgres
		err := s.db.QueryRowxContext(ctx, s.q(`
			INSERT INTO recipes (name, ingredients, instructions, prep_time) VALUES (?, ?, ?, ?)
			RETURNING id
		`), r.Name, r.Ingredients, r.Instructions, r.PrepTime).Scan(&id)
		if err != nil {
			return nil, err
		}
	}

	created := *r
	created.ID = id
	return &created, nil
}

// Replace overwrites every field of the recipe with the given id, keeping the
// id. The write is a single conditional UPDATE, so a recipe deleted
// concurrently is reported as ErrNotFound instead of being recreated.
func (s *RecipeStore) Replace(ctx context.Context, id int64, r *Recipe) error {
	if err := ValidateRecipe(r); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE recipes SET name = ?, ingredients = ?, instructions = ?, prep_time = ? WHERE id = ?
	`), r.Name, r.Ingredients, r.Instructions, r.PrepTime, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Remove permanently deletes the recipe with the given id, or returns
// ErrNotFound.
func (s *RecipeStore) Remove(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM recipes WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Count returns the number of stored recipes.
func (s *RecipeStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM recipes`); err != nil {
		return 0, err
	}
	return n, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
