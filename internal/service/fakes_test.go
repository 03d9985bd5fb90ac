package service

import (
	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/testutil"
)

var testHasher = auth.NewArgon2Hasher(auth.Argon2Params{MemoryKB: 1024, Iterations: 1, Parallelism: 1})

type (
	memStore = testutil.MemStore
	memCache = testutil.MemCache
)

var (
	newMemStore   = testutil.NewMemStore
	newMemCache   = testutil.NewMemCache
	newMemTags    = testutil.NewMemTags
	newMemRecipes = testutil.NewMemRecipes
)
