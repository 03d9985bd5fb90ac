package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/handler/dto"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/service"
)

// ResourceStore is an owner-scoped list and create store.
type ResourceStore[T, In any] interface {
	Kind() string
	List(ctx context.Context, owner *model.AuthContext) ([]*T, error)
	Create(ctx context.Context, owner *model.AuthContext, in In) (*T, error)
}

// ResourceHandler serves the list and create endpoints of one resource kind.
// Req is the request body, converted to the store input by toInput.
type ResourceHandler[T, In, Req any] struct {
	responder
	store   ResourceStore[T, In]
	toInput func(Req) In
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler[T, In, Req any](store ResourceStore[T, In], toInput func(Req) In, logger *slog.Logger) *ResourceHandler[T, In, Req] {
	return &ResourceHandler[T, In, Req]{
		responder: responder{logger: logger},
		store:     store,
		toInput:   toInput,
	}
}

// NewTagHandler serves /recipe/tags.
func NewTagHandler(store *service.TagStore, logger *slog.Logger) *ResourceHandler[model.Tag, service.NamedInput, dto.NamedRequest] {
	return NewResourceHandler[model.Tag, service.NamedInput, dto.NamedRequest](store, namedInput, logger)
}

// NewIngredientHandler serves /recipe/ingredients.
func NewIngredientHandler(store *service.IngredientStore, logger *slog.Logger) *ResourceHandler[model.Ingredient, service.NamedInput, dto.NamedRequest] {
	return NewResourceHandler[model.Ingredient, service.NamedInput, dto.NamedRequest](store, namedInput, logger)
}

// NewRecipeHandler serves /recipe/recipes.
func NewRecipeHandler(store *service.RecipeStore, logger *slog.Logger) *ResourceHandler[model.Recipe, service.RecipeInput, dto.RecipeRequest] {
	return NewResourceHandler[model.Recipe, service.RecipeInput, dto.RecipeRequest](store, recipeInput, logger)
}

func namedInput(req dto.NamedRequest) service.NamedInput {
	return service.NamedInput{Name: req.Name}
}

func recipeInput(req dto.RecipeRequest) service.RecipeInput {
	return service.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredient,
	}
}

// List handles GET on the collection. Only the caller's items are returned.
func (h *ResourceHandler[T, In, Req]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context(), auth.AuthFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Create handles POST on the collection. The caller becomes the owner.
func (h *ResourceHandler[T, In, Req]) Create(w http.ResponseWriter, r *http.Request) {
	var req Req
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	owner := auth.AuthFromContext(r.Context())
	item, err := h.store.Create(r.Context(), owner, h.toInput(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info(h.store.Kind()+"_created", slog.String("user_id", owner.UserID))
	writeJSON(w, http.StatusCreated, item)
}
