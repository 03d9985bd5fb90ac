package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
	"github.com/ritesshguptaa/recipy-app-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

var (
	alice = &model.AuthContext{UserID: "alice"}
	bob   = &model.AuthContext{UserID: "bob"}
)

func intPtr(v int) *int { return &v }

func pricePtr(v model.Price) *model.Price { return &v }

func TestTagStore_CreateStampsOwner(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	store := NewTagStore(newMemTags(), rec)

	tag, err := store.Create(context.Background(), alice, NamedInput{Name: "  Vegan "})
	require.NoError(t, err)
	require.Equal(t, "Vegan", tag.Name)
	require.Equal(t, "alice", tag.OwnerID)
	require.NotEmpty(t, tag.ID)
	require.Equal(t, uint64(1), rec.Snapshot().ResourcesCreated["tag"])
}

func TestTagStore_Validation(t *testing.T) {
	t.Parallel()

	store := NewTagStore(newMemTags(), nil)

	for _, name := range []string{"", "   ", strings.Repeat("x", 256)} {
		_, err := store.Create(context.Background(), alice, NamedInput{Name: name})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.NotEmpty(t, verr.Fields["name"])
	}
}

func TestScopedStore_RequiresOwner(t *testing.T) {
	t.Parallel()

	store := NewIngredientStore(testutil.NewMemIngredients(), nil)

	_, err := store.List(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoOwner)

	_, err = store.Create(context.Background(), &model.AuthContext{}, NamedInput{Name: "Salt"})
	require.ErrorIs(t, err, ErrNoOwner)
}

func TestScopedStore_ListNeverLeaksAcrossOwners(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTagStore(newMemTags(), nil)

	// Interleave creations by two owners.
	for i := 0; i < 10; i++ {
		owner := alice
		if i%2 == 1 {
			owner = bob
		}
		_, err := store.Create(ctx, owner, NamedInput{Name: fmt.Sprintf("tag-%02d", i)})
		require.NoError(t, err)
	}

	for _, owner := range []*model.AuthContext{alice, bob} {
		tags, err := store.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, tags, 5)
		for _, tag := range tags {
			require.Equal(t, owner.UserID, tag.OwnerID)
		}
	}
}

func TestTagStore_ListReverseAlphabetical(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTagStore(newMemTags(), nil)

	for _, name := range []string{"Breakfast", "Vegan", "Dessert"} {
		_, err := store.Create(ctx, alice, NamedInput{Name: name})
		require.NoError(t, err)
	}

	tags, err := store.List(ctx, alice)
	require.NoError(t, err)

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	require.Equal(t, []string{"Vegan", "Dessert", "Breakfast"}, names)
}

func TestRecipeStore_Create(t *testing.T) {
	t.Parallel()

	store := NewRecipeStore(newMemRecipes(), nil)

	recipe, err := store.Create(context.Background(), alice, RecipeInput{
		Title:         " Soup ",
		TimeMinutes:   intPtr(10),
		Price:         pricePtr(500),
		TagIDs:        []string{"t1", "t2", "t1"},
		IngredientIDs: nil,
	})
	require.NoError(t, err)
	require.Equal(t, "Soup", recipe.Title)
	require.Equal(t, "alice", recipe.OwnerID)
	require.Equal(t, []string{"t1", "t2"}, recipe.TagIDs)
	require.Equal(t, []string{}, recipe.IngredientIDs)
	require.Equal(t, "5.00", recipe.Price.String())
}

func TestRecipeStore_Validation(t *testing.T) {
	t.Parallel()

	valid := func() RecipeInput {
		return RecipeInput{Title: "Soup", TimeMinutes: intPtr(5), Price: pricePtr(500)}
	}

	tests := []struct {
		name      string
		mutate    func(*RecipeInput)
		wantField string
	}{
		{"missing title", func(in *RecipeInput) { in.Title = "" }, "title"},
		{"long title", func(in *RecipeInput) { in.Title = strings.Repeat("t", 256) }, "title"},
		{"missing time", func(in *RecipeInput) { in.TimeMinutes = nil }, "time_minutes"},
		{"negative time", func(in *RecipeInput) { in.TimeMinutes = intPtr(-1) }, "time_minutes"},
		{"missing price", func(in *RecipeInput) { in.Price = nil }, "price"},
		{"negative price", func(in *RecipeInput) { in.Price = pricePtr(-1) }, "price"},
		{"price too large", func(in *RecipeInput) { in.Price = pricePtr(100000) }, "price"},
		{"long link", func(in *RecipeInput) { in.Link = "https://" + strings.Repeat("l", 250) }, "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newMemRecipes()
			store := NewRecipeStore(repo, nil)

			in := valid()
			tt.mutate(&in)

			_, err := store.Create(context.Background(), alice, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields[tt.wantField], "fields: %v", verr.Fields)
			require.Zero(t, repo.Len(), "invalid recipe must not be persisted")
		})
	}
}

func TestRecipeStore_UnknownReference(t *testing.T) {
	t.Parallel()

	repo := newMemRecipes()
	repo.Err = &repository.UnknownReferenceError{Field: "tags", IDs: []string{"ghost"}}
	store := NewRecipeStore(repo, nil)

	_, err := store.Create(context.Background(), alice, RecipeInput{Title: "Soup", TimeMinutes: intPtr(5), Price: pricePtr(500), TagIDs: []string{"ghost"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{`Invalid pk "ghost" - object does not exist.`}, verr.Fields["tags"])
}

func TestRecipeStore_StorageErrorIsWrapped(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	repo := newMemRecipes()
	repo.Err = boom
	store := NewRecipeStore(repo, nil)

	_, err := store.Create(context.Background(), alice, RecipeInput{Title: "Soup", TimeMinutes: intPtr(5), Price: pricePtr(500)})
	require.ErrorIs(t, err, boom)

	var verr *ValidationError
	require.False(t, errors.As(err, &verr))
}

func TestRecipeStore_TwoUsersListOwnNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewRecipeStore(newMemRecipes(), nil)

	in := RecipeInput{Title: "Soup", TimeMinutes: intPtr(5), Price: pricePtr(500)}
	first, err := store.Create(ctx, alice, in)
	require.NoError(t, err)
	_, err = store.Create(ctx, bob, in)
	require.NoError(t, err)
	second, err := store.Create(ctx, alice, in)
	require.NoError(t, err)

	recipes, err := store.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	require.Equal(t, second.ID, recipes[0].ID)
	require.Equal(t, first.ID, recipes[1].ID)

	recipes, err = store.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
}
