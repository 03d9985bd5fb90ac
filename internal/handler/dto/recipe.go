package dto

import "github.com/ritesshguptaa/recipy-app-api/internal/model"

// NamedRequest is the body for creating a tag or an ingredient.
type NamedRequest struct {
	Name string `json:"name"`
}

// RecipeRequest is the body of POST /recipe/recipes.
type RecipeRequest struct {
	Title       string       `json:"title"`
	TimeMinutes *int         `json:"time_minutes"`
	Price       *model.Price `json:"price"`
	Link        string       `json:"link"`
	Tags        []string     `json:"tags"`
	Ingredient  []string     `json:"ingredient"`
}
