package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/service"
)

// TokenScheme is the Authorization scheme clients are told to use.
const TokenScheme = "Token"

// Auth failure reasons reported to logs and metrics.
const (
	reasonMissing   = "missing_token"
	reasonMalformed = "malformed_token"
	reasonInvalid   = "invalid_token"
	reasonBackend   = "backend_error"
)

// TokenResolver maps a presented token key onto its caller.
type TokenResolver interface {
	Resolve(ctx context.Context, key string) (*model.AuthContext, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  TokenResolver
	Metrics metrics.Recorder
	// MinDuration pads every authentication attempt to at least this long.
	// Zero disables padding.
	MinDuration time.Duration
}

// Auth returns a middleware that authenticates requests by token.
// It extracts the key from the Authorization header, resolves it,
// and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, reason, err := authenticate(r, cfg.Tokens, cfg.MinDuration)
			if authCtx == nil {
				recorder.IncAuthFailed(reason)

				attrs := []any{
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				}
				if reason == reasonBackend {
					logger.Error("authentication backend error", append(attrs, slog.String("error", err.Error()))...)
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
					return
				}

				logger.Warn("authentication failed", attrs...)
				writeAuthError(w)
				return
			}

			logger.Debug("authentication successful",
				slog.String("user_id", authCtx.UserID),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			noteUser(r.Context(), authCtx.UserID)
			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate returns the caller, or an empty context plus the failure reason.
func authenticate(r *http.Request, tokens TokenResolver, minDuration time.Duration) (*model.AuthContext, string, error) {
	if minDuration > 0 {
		start := time.Now()
		defer func() {
			if elapsed := time.Since(start); elapsed < minDuration {
				time.Sleep(minDuration - elapsed)
			}
		}()
	}

	key, present := extractToken(r)
	if !present {
		return nil, reasonMissing, nil
	}
	if !auth.ValidateTokenFormat(key) {
		return nil, reasonMalformed, nil
	}

	authCtx, err := tokens.Resolve(r.Context(), key)
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return nil, reasonInvalid, nil
	case err != nil:
		return nil, reasonBackend, err
	}
	return authCtx, "", nil
}

// extractToken reads "Authorization: Token <key>". The Bearer scheme is
// accepted as well. present is false when no usable header was sent.
func extractToken(r *http.Request) (key string, present bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}

	scheme, value, ok := strings.Cut(header, " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, TokenScheme) && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", TokenScheme)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided or are invalid.")
}
