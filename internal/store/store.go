package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested recipe does not exist.
var ErrNotFound = errors.New("not found")

// RecipeStoreIface exposes all recipe data operations.
// No handler may query the DB directly; all access goes through this interface.
type RecipeStoreIface interface {
	List(ctx context.Context) ([]*Recipe, error)
	Get(ctx context.Context, id int64) (*Recipe, error)
	Insert(ctx context.Context, r *Recipe) (*Recipe, error)
	Replace(ctx context.Context, id int64, r *Recipe) error
	Remove(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

var _ RecipeStoreIface = (*RecipeStore)(nil)
