package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

const (
	maxTitleLength = 255
	maxLinkLength  = 255
)

// RecipeInput is the create payload for recipes. Nil pointers mean the field was absent.
type RecipeInput struct {
	Title         string
	TimeMinutes   *int
	Price         *model.Price
	Link          string
	TagIDs        []string
	IngredientIDs []string
}

// RecipeStore is the owner-scoped recipe store.
type RecipeStore = ScopedStore[model.Recipe, RecipeInput]

// NewRecipeStore returns the owner-scoped recipe store.
func NewRecipeStore(repo OwnedRepository[model.Recipe], recorder metrics.Recorder) *RecipeStore {
	return NewScopedStore("recipe", repo, buildRecipe, recorder)
}

func buildRecipe(ownerID string, in RecipeInput) (*model.Recipe, error) {
	verr := &ValidationError{}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.Add("title", msgBlank)
	case utf8.RuneCountInString(title) > maxTitleLength:
		verr.Add("title", msgMaxLength(maxTitleLength))
	}

	switch {
	case in.TimeMinutes == nil:
		verr.Add("time_minutes", msgRequired)
	case *in.TimeMinutes < 0:
		verr.Add("time_minutes", "Ensure this value is greater than or equal to 0.")
	}

	switch {
	case in.Price == nil:
		verr.Add("price", msgRequired)
	case *in.Price < 0:
		verr.Add("price", "Ensure this value is greater than or equal to 0.")
	case *in.Price > model.MaxPriceCents:
		verr.Add("price", "Ensure that there are no more than 5 digits in total.")
	}

	link := strings.TrimSpace(in.Link)
	if utf8.RuneCountInString(link) > maxLinkLength {
		verr.Add("link", msgMaxLength(maxLinkLength))
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &model.Recipe{
		ID:            ulid.Make().String(),
		Title:         title,
		TimeMinutes:   *in.TimeMinutes,
		Price:         *in.Price,
		Link:          link,
		TagIDs:        dedupe(in.TagIDs),
		IngredientIDs: dedupe(in.IngredientIDs),
		OwnerID:       ownerID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// dedupe drops repeated IDs, keeping first-seen order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
