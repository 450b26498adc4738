package repository

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/deppfellow/workshop/internal/model"
	"github.com/google/uuid"
)

// UserMemoryRepository keeps users in process memory. Data does not survive
// a restart.
type UserMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
	order []string
}

func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{
		users: make(map[string]model.User),
	}
}

// clone copies the posts slice so callers never share storage with the map.
func clone(user model.User) model.User {
	posts := make([]model.Post, len(user.Posts))
	copy(posts, user.Posts)
	user.Posts = posts
	return user
}

func (r *UserMemoryRepository) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.order))
	for _, id := range r.order {
		user := r.users[id]
		user.Posts = nil
		users = append(users, user)
	}

	return users, nil
}

func (r *UserMemoryRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, userNotFound(sql.ErrNoRows)
	}

	return clone(user), nil
}

func (r *UserMemoryRepository) Insert(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = uuid.NewString()
	user.Posts = []model.Post{}

	r.users[user.ID] = user
	r.order = append(r.order, user.ID)

	return clone(user), nil
}

func (r *UserMemoryRepository) Update(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return model.User{}, userNotFound(sql.ErrNoRows)
	}

	stored.Name = user.Name
	stored.Email = user.Email
	r.users[user.ID] = stored

	return clone(stored), nil
}

func (r *UserMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return userNotFound(sql.ErrNoRows)
	}

	delete(r.users, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })

	return nil
}

func (r *UserMemoryRepository) AddPost(_ context.Context, userID string, post model.Post) (model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return model.Post{}, userNotFound(sql.ErrNoRows)
	}

	post.ID = uuid.NewString()
	if post.Comments == nil {
		post.Comments = []model.CommentDTO{}
	}

	user.Posts = append(slices.Clip(user.Posts), post)
	r.users[userID] = user

	return post, nil
}
