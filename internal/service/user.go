package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/workshop/internal/lib/job"
	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/repository"
	"github.com/rs/zerolog"
)

// UserService is the user store used by the HTTP layer. Missing ids surface
// as repository not-found errors, which the error handler answers with 404.
type UserService struct {
	repo     repository.UserRepository
	enqueuer job.Enqueuer
}

// NewUserService builds the service. A nil enqueuer disables welcome email.
func NewUserService(repo repository.UserRepository, enqueuer job.Enqueuer) *UserService {
	return &UserService{
		repo:     repo,
		enqueuer: enqueuer,
	}
}

// FindAll returns every stored user in store order.
func (s *UserService) FindAll(ctx context.Context) ([]model.User, error) {
	return s.repo.FindAll(ctx)
}

// FindByID returns the user with its posts.
func (s *UserService) FindByID(ctx context.Context, id string) (model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// FromDTO converts a wire user into a domain user without posts.
func (s *UserService) FromDTO(dto model.UserDTO) model.User {
	return model.UserFromDTO(dto)
}

// Insert stores user under a new id and queues the welcome email.
func (s *UserService) Insert(ctx context.Context, user model.User) (model.User, error) {
	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return model.User{}, err
	}

	s.enqueueWelcome(ctx, created)

	return created, nil
}

// enqueueWelcome never fails the request; the user already exists.
func (s *UserService) enqueueWelcome(ctx context.Context, user model.User) {
	if s.enqueuer == nil || user.Email == "" {
		return
	}

	logger := zerolog.Ctx(ctx)

	task, err := job.NewWelcomeEmailTask(user.Email, user.Name)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to build welcome email task")
		return
	}

	if _, err := s.enqueuer.EnqueueContext(ctx, task); err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to enqueue welcome email")
		return
	}

	logger.Debug().Str("user_id", user.ID).Msg("welcome email enqueued")
}

// Update overwrites name and email of the user identified by user.ID.
func (s *UserService) Update(ctx context.Context, user model.User) (model.User, error) {
	return s.repo.Update(ctx, user)
}

// Delete removes the user and its posts.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddPost attaches post to the user identified by userID.
func (s *UserService) AddPost(ctx context.Context, userID string, post model.Post) (model.Post, error) {
	created, err := s.repo.AddPost(ctx, userID, post)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to add post: %w", err)
	}
	return created, nil
}
