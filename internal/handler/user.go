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

// UserService is the account side of the API.
type UserService interface {
	CreateUser(ctx context.Context, input service.CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, input service.UpdateUserInput) (*model.User, error)
}

// TokenIssuer exchanges credentials for a token key.
type TokenIssuer interface {
	Issue(ctx context.Context, email, password string) (string, error)
}

// UserHandler handles account creation, login and the caller's profile.
type UserHandler struct {
	responder
	users  UserService
	tokens TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, tokens TokenIssuer, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger},
		users:     users,
		tokens:    tokens,
	}
}

// Create handles POST /user/create.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("user_created", slog.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, user.ToResponse())
}

// Token handles POST /user/token.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	key, err := h.tokens.Issue(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: key})
}

// Me handles GET /user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustAuthFromContext(r.Context())

	user, err := h.users.GetUser(r.Context(), caller.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}

// UpdateMe handles PATCH /user/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), caller.UserID, service.UpdateUserInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("profile_updated",
		slog.String("user_id", user.ID),
		slog.Bool("password_changed", req.Password != nil),
	)
	writeJSON(w, http.StatusOK, user.ToResponse())
}
