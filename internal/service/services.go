// Package service contains the business logic.
//
// It sits between the handler and repository layers: handlers hand it
// decoded data, it applies the domain rules and calls the repositories.
package service

import (
	"github.com/deppfellow/workshop/internal/lib/job"
	"github.com/deppfellow/workshop/internal/repository"
	"github.com/deppfellow/workshop/internal/server"
)

type Services struct {
	Auth *AuthService
	Job  *job.JobService
	User *UserService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	var enqueuer job.Enqueuer
	if s.Job != nil {
		enqueuer = s.Job.Client
	}

	return &Services{
		Job:  s.Job,
		Auth: authService,
		User: NewUserService(repos.User, enqueuer),
	}, nil
}
