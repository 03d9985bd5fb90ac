package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
)

// MemStore is an in-memory user and token store.
type MemStore struct {
	mu       sync.Mutex
	Users    map[string]*model.User // by id
	Tokens   map[string]string      // user id -> digest
	FailNext error                  // returned once by the next CreateUser
}

func NewMemStore() *MemStore {
	return &MemStore{
		Users:  make(map[string]*model.User),
		Tokens: make(map[string]string),
	}
}

func (m *MemStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	for _, u := range m.Users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemStore) UpdateUser(_ context.Context, id string, upd repository.UserUpdate) (*model.User, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil, repository.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	var revoked []string
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
		if d, ok := m.Tokens[id]; ok {
			revoked = append(revoked, d)
			delete(m.Tokens, id)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, revoked, nil
}

func (m *MemStore) ReplaceToken(_ context.Context, userID, digest string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[userID]; !ok {
		return "", repository.ErrUserNotFound
	}
	prev := m.Tokens[userID]
	m.Tokens[userID] = digest
	return prev, nil
}

func (m *MemStore) GetUserByTokenDigest(_ context.Context, digest string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, d := range m.Tokens {
		if d == digest {
			cp := *m.Users[uid]
			return &cp, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

// MemCache is an in-memory auth context cache. Like the Redis cache,
// deleted digests are remembered and never cached again.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]model.AuthContext
	revoked map[string]bool
}

func NewMemCache() *MemCache {
	return &MemCache{
		entries: make(map[string]model.AuthContext),
		revoked: make(map[string]bool),
	}
}

func (c *MemCache) GetAuthContext(_ context.Context, digest string) (*model.AuthContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ac, ok := c.entries[digest]
	if !ok {
		return nil, nil
	}
	return &ac, nil
}

func (c *MemCache) SetAuthContext(_ context.Context, digest string, ac *model.AuthContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revoked[digest] {
		return nil
	}
	c.entries[digest] = *ac
	return nil
}

func (c *MemCache) DeleteAuthContext(_ context.Context, digests ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range digests {
		delete(c.entries, d)
		c.revoked[d] = true
	}
	return nil
}

// Len returns the number of cached entries.
func (c *MemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MemOwned is an in-memory OwnedRepository ordered by a caller-supplied less func.
type MemOwned[T any] struct {
	mu    sync.Mutex
	Items []*T
	Owner func(*T) string
	Less  func(a, b *T) bool
	Err   error // returned by every Create when set
}

func (m *MemOwned[T]) ListByOwner(_ context.Context, ownerID string) ([]*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*T, 0)
	for _, it := range m.Items {
		if m.Owner(it) == ownerID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return m.Less(out[i], out[j]) })
	return out, nil
}

func (m *MemOwned[T]) Create(_ context.Context, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Items = append(m.Items, item)
	return nil
}

// NewMemTags returns a tag store ordered name desc, id desc.
func NewMemTags() *MemOwned[model.Tag] {
	return &MemOwned[model.Tag]{
		Owner: func(t *model.Tag) string { return t.OwnerID },
		Less:  func(a, b *model.Tag) bool { return namedLess(&a.NamedResource, &b.NamedResource) },
	}
}

// NewMemRecipes returns a recipe store ordered newest first.
func NewMemRecipes() *MemOwned[model.Recipe] {
	return &MemOwned[model.Recipe]{
		Owner: func(r *model.Recipe) string { return r.OwnerID },
		Less:  func(a, b *model.Recipe) bool { return a.ID > b.ID },
	}
}

// NewMemIngredients returns an ingredient store ordered like the SQL store: name desc, id desc.
func NewMemIngredients() *MemOwned[model.Ingredient] {
	return &MemOwned[model.Ingredient]{
		Owner: func(i *model.Ingredient) string { return i.OwnerID },
		Less:  func(a, b *model.Ingredient) bool { return namedLess(&a.NamedResource, &b.NamedResource) },
	}
}

func namedLess(a, b *model.NamedResource) bool {
	if a.Name != b.Name {
		return a.Name > b.Name
	}
	return a.ID > b.ID
}

// SetActive flips the active flag of a stored user.
func (m *MemStore) SetActive(id string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		u.IsActive = active
	}
}

// UserCount returns the number of stored users.
func (m *MemStore) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users)
}

// Len returns the number of stored items.
func (m *MemOwned[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Items)
}
