package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

const maxResourceNameLength = 255

// NamedInput is the create payload for tags and ingredients.
type NamedInput struct {
	Name string
}

// TagStore is the owner-scoped tag store.
type TagStore = ScopedStore[model.Tag, NamedInput]

// IngredientStore is the owner-scoped ingredient store.
type IngredientStore = ScopedStore[model.Ingredient, NamedInput]

// NewTagStore returns the owner-scoped tag store.
func NewTagStore(repo OwnedRepository[model.Tag], recorder metrics.Recorder) *TagStore {
	return NewScopedStore("tag", repo, func(ownerID string, in NamedInput) (*model.Tag, error) {
		res, err := buildNamed(ownerID, in)
		if err != nil {
			return nil, err
		}
		return &model.Tag{NamedResource: res}, nil
	}, recorder)
}

// NewIngredientStore returns the owner-scoped ingredient store.
func NewIngredientStore(repo OwnedRepository[model.Ingredient], recorder metrics.Recorder) *IngredientStore {
	return NewScopedStore("ingredient", repo, func(ownerID string, in NamedInput) (*model.Ingredient, error) {
		res, err := buildNamed(ownerID, in)
		if err != nil {
			return nil, err
		}
		return &model.Ingredient{NamedResource: res}, nil
	}, recorder)
}

func buildNamed(ownerID string, in NamedInput) (model.NamedResource, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return model.NamedResource{}, fieldError("name", msgBlank)
	case utf8.RuneCountInString(name) > maxResourceNameLength:
		return model.NamedResource{}, fieldError("name", msgMaxLength(maxResourceNameLength))
	}

	return model.NamedResource{
		ID:        ulid.Make().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
