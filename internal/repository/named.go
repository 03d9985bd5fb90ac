package repository

import (
	"context"
	"fmt"

	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

// NamedEntity is a pointer to a type embedding model.NamedResource.
type NamedEntity[T any] interface {
	*T
	Resource() *model.NamedResource
}

// NamedStore persists owner-scoped {id, name} rows in a single table.
type NamedStore[T any, P NamedEntity[T]] struct {
	repo  *Repository
	table string
}

// NewTagStore returns the store backing tags.
func NewTagStore(r *Repository) *NamedStore[model.Tag, *model.Tag] {
	return &NamedStore[model.Tag, *model.Tag]{repo: r, table: "tags"}
}

// NewIngredientStore returns the store backing ingredients.
func NewIngredientStore(r *Repository) *NamedStore[model.Ingredient, *model.Ingredient] {
	return &NamedStore[model.Ingredient, *model.Ingredient]{repo: r, table: "ingredients"}
}

// Create inserts a new row.
func (s *NamedStore[T, P]) Create(ctx context.Context, item *T) error {
	res := P(item).Resource()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, s.table)

	_, err := s.repo.db.Exec(ctx, query, res.ID, res.Name, res.OwnerID, res.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create %s row: %w", s.table, err)
	}

	return nil
}

// ListByOwner returns rows owned by ownerID in reverse name order.
func (s *NamedStore[T, P]) ListByOwner(ctx context.Context, ownerID string) ([]*T, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY name DESC, id DESC
	`, s.table)

	rows, err := s.repo.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item := new(T)
		res := P(item).Resource()
		if err := rows.Scan(&res.ID, &res.Name, &res.OwnerID, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.table, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.table, err)
	}

	return items, nil
}
