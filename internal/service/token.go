package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
	"golang.org/x/sync/singleflight"
)

// tokenLookupTimeout bounds the database query shared by concurrent resolves.
const tokenLookupTimeout = 5 * time.Second

// TokenStore persists the one-token-per-user mapping.
type TokenStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ReplaceToken(ctx context.Context, userID, digest string) (string, error)
	GetUserByTokenDigest(ctx context.Context, digest string) (*model.User, error)
}

// TokenService issues and resolves opaque auth tokens.
type TokenService struct {
	store     TokenStore
	hasher    auth.Hasher
	cache     AuthCache
	metrics   metrics.Recorder
	logger    *slog.Logger
	dummyHash string
	lookups   singleflight.Group
}

// NewTokenService creates a new TokenService. cache may be nil.
func NewTokenService(store TokenStore, hasher auth.Hasher, cache AuthCache, recorder metrics.Recorder, logger *slog.Logger) *TokenService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Verified against when the email is unknown so both failure paths cost the same.
	dummyHash, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		logger.Warn("failed to prepare dummy hash", slog.String("error", err.Error()))
	}

	return &TokenService{
		store:     store,
		hasher:    hasher,
		cache:     cache,
		metrics:   recorder,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// Issue authenticates a credential pair and returns a fresh token key.
// Any previous token of the user stops working.
func (s *TokenService) Issue(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		s.metrics.IncLoginFailed()
		return "", ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("failed to load user: %w", err)
		}
		if s.dummyHash != "" {
			_, _ = s.hasher.Verify(password, s.dummyHash)
		}
		s.metrics.IncLoginFailed()
		return "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok || !user.IsActive {
		s.metrics.IncLoginFailed()
		return "", ErrInvalidCredentials
	}

	tok, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}

	previous, err := s.store.ReplaceToken(ctx, user.ID, tok.Digest)
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	if previous != "" {
		s.evict(ctx, previous)
	}

	s.metrics.IncTokenIssued()
	return tok.Plaintext, nil
}

// Resolve maps a token key to the identity it was issued for.
func (s *TokenService) Resolve(ctx context.Context, key string) (*model.AuthContext, error) {
	if !auth.ValidateTokenFormat(key) {
		return nil, ErrInvalidToken
	}
	digest := auth.Digest(key)

	if s.cache != nil {
		cached, err := s.cache.GetAuthContext(ctx, digest)
		if err == nil && cached != nil {
			s.metrics.IncAuthCacheHit()
			return cached, nil
		}
		s.metrics.IncAuthCacheMiss()
	}

	// Collapse concurrent lookups of the same token into one query. The
	// shared query outlives any single caller's cancellation.
	flight := s.lookups.DoChan(digest, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenLookupTimeout)
		defer cancel()

		user, err := s.store.GetUserByTokenDigest(lookupCtx, digest)
		if err != nil {
			return nil, err
		}
		if !user.IsActive {
			return nil, ErrInvalidToken
		}
		return user.AuthContext(digest), nil
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) || errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	shared := v.(*model.AuthContext)
	ac := *shared

	if s.cache != nil {
		if err := s.cache.SetAuthContext(ctx, digest, &ac); err != nil {
			s.logger.Warn("failed to cache auth context", slog.String("error", err.Error()))
		}
	}

	return &ac, nil
}

// evict runs after the revocation committed, so it ignores caller cancellation.
func (s *TokenService) evict(ctx context.Context, digests ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteAuthContext(context.WithoutCancel(ctx), digests...); err != nil {
		s.logger.Warn("failed to evict token", slog.String("error", err.Error()))
	}
}
