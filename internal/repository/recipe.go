package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

// ErrUnknownReference indicates a recipe refers to a tag or ingredient that does not exist.
var ErrUnknownReference = errors.New("unknown reference")

// UnknownReferenceError lists the IDs of one field that could not be resolved.
type UnknownReferenceError struct {
	Field string
	IDs   []string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: unknown ids %v", e.Field, e.IDs)
}

func (e *UnknownReferenceError) Unwrap() error {
	return ErrUnknownReference
}

// RecipeStore persists recipes with their tag and ingredient associations.
type RecipeStore struct {
	repo *Repository
}

// NewRecipeStore returns the store backing recipes.
func NewRecipeStore(r *Repository) *RecipeStore {
	return &RecipeStore{repo: r}
}

// Create inserts the recipe and its join rows in one transaction.
func (s *RecipeStore) Create(ctx context.Context, recipe *model.Recipe) error {
	return s.repo.WithTx(ctx, func(tx *Repository) error {
		if err := checkReferences(ctx, tx, "tags", "tags", recipe.TagIDs); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, "ingredients", "ingredient", recipe.IngredientIDs); err != nil {
			return err
		}

		_, err := tx.db.Exec(ctx, `
			INSERT INTO recipes (id, title, time_minutes, price_cents, link, owner_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			recipe.ID,
			recipe.Title,
			recipe.TimeMinutes,
			int64(recipe.Price),
			recipe.Link,
			recipe.OwnerID,
			recipe.CreatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		if len(recipe.TagIDs) > 0 {
			if _, err := tx.db.Exec(ctx, `
				INSERT INTO recipe_tags (recipe_id, tag_id)
				SELECT $1, unnest($2::text[])
			`, recipe.ID, pq.Array(recipe.TagIDs)); err != nil {
				return fmt.Errorf("failed to link recipe tags: %w", err)
			}
		}

		if len(recipe.IngredientIDs) > 0 {
			if _, err := tx.db.Exec(ctx, `
				INSERT INTO recipe_ingredients (recipe_id, ingredient_id)
				SELECT $1, unnest($2::text[])
			`, recipe.ID, pq.Array(recipe.IngredientIDs)); err != nil {
				return fmt.Errorf("failed to link recipe ingredients: %w", err)
			}
		}

		return nil
	})
}

// ListByOwner returns recipes owned by ownerID, most recently created first.
func (s *RecipeStore) ListByOwner(ctx context.Context, ownerID string) ([]*model.Recipe, error) {
	query := `
		SELECT r.id, r.title, r.time_minutes, r.price_cents, r.link, r.owner_id, r.created_at,
		       ARRAY(SELECT tag_id FROM recipe_tags WHERE recipe_id = r.id ORDER BY tag_id),
		       ARRAY(SELECT ingredient_id FROM recipe_ingredients WHERE recipe_id = r.id ORDER BY ingredient_id)
		FROM recipes r
		WHERE r.owner_id = $1
		ORDER BY r.id DESC
	`

	rows, err := s.repo.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]*model.Recipe, 0)
	for rows.Next() {
		var (
			recipe model.Recipe
			cents  int64
			tags   []string
			ingr   []string
		)
		err := rows.Scan(
			&recipe.ID,
			&recipe.Title,
			&recipe.TimeMinutes,
			&cents,
			&recipe.Link,
			&recipe.OwnerID,
			&recipe.CreatedAt,
			pq.Array(&tags),
			pq.Array(&ingr),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipe.Price = model.Price(cents)
		recipe.TagIDs = nonNil(tags)
		recipe.IngredientIDs = nonNil(ingr)
		recipes = append(recipes, &recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

// checkReferences verifies every id exists in table.
func checkReferences(ctx context.Context, tx *Repository, table, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := tx.db.Query(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1::text[])`, table),
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating %s: %w", table, err)
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &UnknownReferenceError{Field: field, IDs: missing}
	}

	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
