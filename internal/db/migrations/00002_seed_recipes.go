package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

type seedRecipe struct {
	id           int64
	name         string
	ingredients  string
	instructions string
	prepTime     int
}

// seedRecipes is the known initial state of a fresh database.
var seedRecipes = []seedRecipe{
	{
		id:           1,
		name:         "Classic Pancakes",
		ingredients:  "1 cup all-purpose flour, 2 tablespoons sugar, 2 teaspoons baking powder, 1/2 teaspoon salt, 1 cup milk, 2 tablespoons vegetable oil, 1 egg",
		instructions: "1. Whisk dry ingredients. 2. Mix wet ingredients separately. 3. Combine wet and dry ingredients. 4. Cook on a hot griddle until bubbles form, then flip.",
		prepTime:     20,
	},
	{
		id:           2,
		name:         "Simple Pasta Carbonara",
		ingredients:  "8 oz spaghetti, 2 large eggs, 1/2 cup grated Parmesan cheese, 4 slices bacon, 2 cloves garlic, salt and pepper",
		instructions: "1. Cook pasta. 2. Fry bacon and garlic. 3. Beat eggs and cheese in a bowl. 4. Toss hot pasta with bacon, then quickly with egg mixture. 5. Season and serve immediately.",
		prepTime:     25,
	},
	{
		id:           3,
		name:         "Vegetable Stir Fry",
		ingredients:  "1 bell pepper, 1 carrot, 1 broccoli head, 2 tablespoons soy sauce, 1 tablespoon oil, 1 teaspoon garlic powder",
		instructions: "1. Chop all vegetables. 2. Heat oil in wok or large pan. 3. Add vegetables and stir fry for 5-7 minutes. 4. Add soy sauce and seasonings. 5. Serve hot.",
		prepTime:     15,
	},
}

func init() {
	goose.AddMigrationContext(upSeedRecipes, downSeedRecipes)
}

func upSeedRecipes(ctx context.Context, tx *sql.Tx) error {
	insert := `INSERT INTO recipes (id, name, ingredients, instructions, prep_time) VALUES (?, ?, ?, ?, ?)`
	if dialect == "postgres" {
		insert = `INSERT INTO recipes (id, name, ingredients, instructions, prep_time) VALUES ($1, $2, $3, $4, $5)`
	}
	for _, r := range seedRecipes {
		if _, err := tx.ExecContext(ctx, insert, r.id, r.name, r.ingredients, r.instructions, r.prepTime); err != nil {
			return fmt.Errorf("seed recipe %d: %w", r.id, err)
		}
	}

	// Explicit ids do not advance a postgres sequence; move it past the seed
	// so the next insert does not collide with id 1.
	if dialect == "postgres" {
		if _, err := tx.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('recipes', 'id'), (SELECT MAX(id) FROM recipes))`); err != nil {
			return fmt.Errorf("advance recipes id sequence: %w", err)
		}
	}
	return nil
}

func downSeedRecipes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id IN (1, 2, 3)`)
	return err
}
