//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
	"github.com/ritesshguptaa/recipy-app-api/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	tables := []string{
		"users",
		"auth_tokens",
		"tags",
		"ingredients",
		"recipes",
		"recipe_tags",
		"recipe_ingredients",
	}

	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, repo.Pool(), table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("create"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, user.ID)
	}
	if byEmail.PasswordHash != user.PasswordHash {
		t.Error("password hash should round-trip")
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email mismatch: got %q, want %q", byID.Email, user.Email)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	email := testutil.UniqueEmail("dup")
	if err := repo.CreateUser(ctx, testutil.NewTestUser(t, email)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	err := repo.CreateUser(ctx, testutil.NewTestUser(t, email))
	if !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.GetUserByEmail(ctx, "missing@example.com")
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdatePasswordRevokesTokens(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	if _, err := repo.ReplaceToken(ctx, user.ID, "digest-1"); err != nil {
		t.Fatalf("ReplaceToken failed: %v", err)
	}

	name := "new_name"
	hash := "$argon2id$v=19$m=1024,t=1,p=1$bmV3$bmV3"
	updated, revoked, err := repo.UpdateUser(ctx, user.ID, repository.UserUpdate{Name: &name, PasswordHash: &hash})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if updated.Name != name || updated.PasswordHash != hash {
		t.Errorf("update not applied: %+v", updated)
	}
	if len(revoked) != 1 || revoked[0] != "digest-1" {
		t.Errorf("revoked = %v, want [digest-1]", revoked)
	}

	if _, err := repo.GetUserByTokenDigest(ctx, "digest-1"); !errors.Is(err, repository.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound after password change, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdateNameKeepsTokens(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	if _, err := repo.ReplaceToken(ctx, user.ID, "digest-keep"); err != nil {
		t.Fatalf("ReplaceToken failed: %v", err)
	}

	name := "renamed"
	_, revoked, err := repo.UpdateUser(ctx, user.ID, repository.UserUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if len(revoked) != 0 {
		t.Errorf("name change must not revoke tokens, got %v", revoked)
	}
	if _, err := repo.GetUserByTokenDigest(ctx, "digest-keep"); err != nil {
		t.Errorf("token should survive name change: %v", err)
	}
}

// ============================================================================
// Token Repository Integration Tests
// ============================================================================

func TestIntegrationTokenRepository_ReplaceToken(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := mustCreateUser(t, ctx, repo)

	prev, err := repo.ReplaceToken(ctx, user.ID, "first")
	if err != nil {
		t.Fatalf("ReplaceToken failed: %v", err)
	}
	if prev != "" {
		t.Errorf("first token should replace nothing, got %q", prev)
	}

	prev, err = repo.ReplaceToken(ctx, user.ID, "second")
	if err != nil {
		t.Fatalf("ReplaceToken failed: %v", err)
	}
	if prev != "first" {
		t.Errorf("previous = %q, want first", prev)
	}

	if _, err := repo.GetUserByTokenDigest(ctx, "first"); !errors.Is(err, repository.ErrTokenNotFound) {
		t.Errorf("old token should be gone, got: %v", err)
	}
	got, err := repo.GetUserByTokenDigest(ctx, "second")
	if err != nil {
		t.Fatalf("GetUserByTokenDigest failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("token resolved to %q, want %q", got.ID, user.ID)
	}
}

func TestIntegrationTokenRepository_UnknownUser(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.ReplaceToken(ctx, "no-such-user", "digest")
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

// ============================================================================
// Scoped Store Integration Tests
// ============================================================================

func TestIntegrationTagStore_ListScopedAndOrdered(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	alice := mustCreateUser(t, ctx, repo)
	bob := mustCreateUser(t, ctx, repo)
	tags := repository.NewTagStore(repo)

	for _, name := range []string{"Breakfast", "Vegan", "Dessert"} {
		if err := tags.Create(ctx, testutil.NewTestTag(t, alice.ID, name)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := tags.Create(ctx, testutil.NewTestTag(t, bob.ID, "Zesty")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := tags.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}

	want := []string{"Vegan", "Dessert", "Breakfast"}
	if len(got) != len(want) {
		t.Fatalf("got %d tags, want %d", len(got), len(want))
	}
	for i, tag := range got {
		if tag.Name != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, tag.Name, want[i])
		}
		if tag.OwnerID != alice.ID {
			t.Errorf("tag[%d] owned by %q, want %q", i, tag.OwnerID, alice.ID)
		}
	}
}

func TestIntegrationIngredientStore_Empty(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	got, err := repository.NewIngredientStore(repo).ListByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %v", got)
	}
}

func TestIntegrationRecipeStore_CreateWithReferences(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	tag := testutil.NewTestTag(t, user.ID, "Dinner")
	ingredient := testutil.NewTestIngredient(t, user.ID, "Salt")
	if err := repository.NewTagStore(repo).Create(ctx, tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := repository.NewIngredientStore(repo).Create(ctx, ingredient); err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	recipes := repository.NewRecipeStore(repo)
	recipe := testutil.NewTestRecipe(t, user.ID, "Soup")
	recipe.TagIDs = []string{tag.ID}
	recipe.IngredientIDs = []string{ingredient.ID}
	recipe.Price = 1250
	recipe.Link = "https://example.com/soup"

	if err := recipes.Create(ctx, recipe); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := recipes.ListByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d recipes, want 1", len(got))
	}
	if got[0].Price != 1250 {
		t.Errorf("Price = %s, want 12.50", got[0].Price)
	}
	if len(got[0].TagIDs) != 1 || got[0].TagIDs[0] != tag.ID {
		t.Errorf("TagIDs = %v, want [%s]", got[0].TagIDs, tag.ID)
	}
	if len(got[0].IngredientIDs) != 1 || got[0].IngredientIDs[0] != ingredient.ID {
		t.Errorf("IngredientIDs = %v, want [%s]", got[0].IngredientIDs, ingredient.ID)
	}
}

func TestIntegrationRecipeStore_UnknownReferenceRollsBack(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	recipes := repository.NewRecipeStore(repo)

	recipe := testutil.NewTestRecipe(t, user.ID, "Ghost")
	recipe.TagIDs = []string{"missing-tag"}

	err := recipes.Create(ctx, recipe)
	var refErr *repository.UnknownReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("Expected UnknownReferenceError, got: %v", err)
	}
	if refErr.Field != "tags" || len(refErr.IDs) != 1 || refErr.IDs[0] != "missing-tag" {
		t.Errorf("unexpected error detail: %+v", refErr)
	}
	if !errors.Is(err, repository.ErrUnknownReference) {
		t.Error("error should wrap ErrUnknownReference")
	}

	got, err := recipes.ListByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("failed create must not persist a recipe, got %d", len(got))
	}
}

func TestIntegrationRecipeStore_ListNewestFirstPerOwner(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	alice := mustCreateUser(t, ctx, repo)
	bob := mustCreateUser(t, ctx, repo)
	recipes := repository.NewRecipeStore(repo)

	first := testutil.NewTestRecipe(t, alice.ID, "First")
	second := testutil.NewTestRecipe(t, alice.ID, "Second")
	other := testutil.NewTestRecipe(t, bob.ID, "Other")
	for _, r := range []*model.Recipe{first, other, second} {
		if err := recipes.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := recipes.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d recipes, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%s %s], want [%s %s]", got[0].Title, got[1].Title, "Second", "First")
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func mustCreateUser(t *testing.T, ctx context.Context, repo *repository.Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, testutil.UniqueEmail("user"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func newRepoTestEnv(t *testing.T) (context.Context, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.DatabaseURL(t)

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
