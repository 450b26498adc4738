package handler

import (
	"context"

	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/server"
	"github.com/deppfellow/workshop/internal/validation"
	"github.com/labstack/echo/v4"
)

// UserStore is what the user endpoints need from the service layer.
type UserStore interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	FromDTO(dto model.UserDTO) model.User
	Insert(ctx context.Context, user model.User) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id string) error
}

type ListUsersRequest struct{}

func (r *ListUsersRequest) Validate() error { return nil }

type GetUserRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *GetUserRequest) Validate() error { return validation.Struct(r) }

// CreateUserRequest is the posted UserDTO. A client supplied id is ignored.
type CreateUserRequest struct {
	model.UserDTO
}

func (r *CreateUserRequest) Validate() error { return nil }

// UpdateUserRequest is the body UserDTO plus the id from the path, which
// always wins over the body id.
type UpdateUserRequest struct {
	model.UserDTO
	PathID string `param:"id" json:"-" validate:"required"`
}

func (r *UpdateUserRequest) Validate() error { return validation.Struct(r) }

type DeleteUserRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *DeleteUserRequest) Validate() error { return validation.Struct(r) }

type ListUserPostsRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *ListUserPostsRequest) Validate() error { return validation.Struct(r) }

// UserHandler serves the /users resource.
type UserHandler struct {
	Handler
	store UserStore
}

func NewUserHandler(s *server.Server, store UserStore) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		store:   store,
	}
}

// ListUsers answers GET /users with every user as a UserDTO.
func (h *UserHandler) ListUsers(c echo.Context, _ *ListUsersRequest) ([]model.UserDTO, error) {
	users, err := h.store.FindAll(c.Request().Context())
	if err != nil {
		return nil, err
	}
	return model.ToUserDTOs(users), nil
}

// GetUser answers GET /users/:id.
func (h *UserHandler) GetUser(c echo.Context, req *GetUserRequest) (model.UserDTO, error) {
	user, err := h.store.FindByID(c.Request().Context(), req.ID)
	if err != nil {
		return model.UserDTO{}, err
	}
	return model.ToUserDTO(user), nil
}

// CreateUser answers POST /users and returns the id assigned by the store.
func (h *UserHandler) CreateUser(c echo.Context, req *CreateUserRequest) (string, error) {
	user := h.store.FromDTO(req.UserDTO)
	user.ID = ""

	created, err := h.store.Insert(c.Request().Context(), user)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

// UpdateUser answers PUT /users/:id.
func (h *UserHandler) UpdateUser(c echo.Context, req *UpdateUserRequest) error {
	user := h.store.FromDTO(req.UserDTO)
	user.ID = req.PathID

	_, err := h.store.Update(c.Request().Context(), user)
	return err
}

// DeleteUser answers DELETE /users/:id.
func (h *UserHandler) DeleteUser(c echo.Context, req *DeleteUserRequest) error {
	return h.store.Delete(c.Request().Context(), req.ID)
}

// ListUserPosts answers GET /users/:id/posts with the posts as stored.
func (h *UserHandler) ListUserPosts(c echo.Context, req *ListUserPostsRequest) ([]model.Post, error) {
	user, err := h.store.FindByID(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	if user.Posts == nil {
		return []model.Post{}, nil
	}
	return user.Posts, nil
}
