// Package repository handles all interactions with the user store.
//
// Each backend (postgres, mongo, memory) implements UserRepository.
// Repositories return driver errors wrapped with context; missing users are
// reported as the driver's not-found sentinel prefixed with the table name so
// the error layer can answer with a 404 "User not found".
package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/workshop/internal/config"
	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/server"
	"github.com/deppfellow/workshop/internal/sqlerr"
)

const usersTable = "users"

// UserRepository is the persistence port for users and the posts they own.
type UserRepository interface {
	// FindAll returns every user in insertion order. Posts are not loaded.
	FindAll(ctx context.Context) ([]model.User, error)
	// FindByID returns the user with its posts in insertion order.
	FindByID(ctx context.Context, id string) (model.User, error)
	// Insert stores a new user under a store-assigned id, ignoring user.ID.
	Insert(ctx context.Context, user model.User) (model.User, error)
	// Update replaces name and email of an existing user. Posts are kept.
	Update(ctx context.Context, user model.User) (model.User, error)
	// Delete removes the user and the posts it owns.
	Delete(ctx context.Context, id string) error
	// AddPost appends a post to the user's collection under a new id.
	AddPost(ctx context.Context, userID string, post model.Post) (model.Post, error)
}

// Repositories is the container for all repository instances.
type Repositories struct {
	User UserRepository
}

// NewRepositories builds the repositories for the configured driver using
// the connections opened by the server.
func NewRepositories(s *server.Server) (*Repositories, error) {
	var users UserRepository

	switch s.Config.Database.Driver {
	case config.DriverPostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("postgres driver selected but no database pool is open")
		}
		users = NewUserPostgresRepository(s.DB.Pool)
	case config.DriverMongo:
		if s.Mongo == nil {
			return nil, fmt.Errorf("mongo driver selected but no mongo client is open")
		}
		users = NewUserMongoRepository(s.Mongo.DB)
	case config.DriverMemory:
		users = NewUserMemoryRepository()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", s.Config.Database.Driver)
	}

	return &Repositories{User: users}, nil
}

// userNotFound tags a driver not-found sentinel with the users table.
func userNotFound(err error) error {
	return fmt.Errorf("%s%s: %w", sqlerr.TablePrefix, usersTable, err)
}
