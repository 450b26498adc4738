package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/deppfellow/workshop/internal/config"
	"github.com/deppfellow/workshop/internal/lib/utils"
	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/repository"
	"github.com/deppfellow/workshop/internal/server"
	"github.com/deppfellow/workshop/internal/service"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var printJSON bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample users and posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			if err := seedableDriver(cfg.Database.Driver); err != nil {
				return err
			}

			srv, err := server.New(cfg, log, loggerService, server.WithoutBackground())
			if err != nil {
				return err
			}
			defer srv.Shutdown(context.Background())

			repos, err := repository.NewRepositories(srv)
			if err != nil {
				return err
			}

			users, err := seed(cmd.Context(), service.NewUserService(repos.User, nil))
			if err != nil {
				return err
			}

			log.Info().Int("users", len(users)).Msg("seed complete")

			if printJSON {
				return printSeed(cmd.OutOrStdout(), users)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printJSON, "print", false, "print the seeded users as JSON")

	return cmd
}

// seedableDriver rejects the memory driver, whose store ends with the
// seed process.
func seedableDriver(driver string) error {
	if driver == config.DriverMemory {
		return fmt.Errorf("seeding needs a persistent store, got the %q driver", driver)
	}
	return nil
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// seed inserts maria, alex and bob, two posts by maria with comments from
// the others, and returns the users as stored.
func seed(ctx context.Context, users *service.UserService) ([]model.User, error) {
	sample := []model.User{
		{Name: "Maria Brown", Email: "maria@gmail.com"},
		{Name: "Alex Green", Email: "alex@gmail.com"},
		{Name: "Bob Grey", Email: "bob@gmail.com"},
	}

	created := make([]model.User, 0, len(sample))
	for _, u := range sample {
		user, err := users.Insert(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", u.Name, err)
		}
		created = append(created, user)
	}

	maria, alex, bob := created[0], created[1], created[2]

	posts := []model.Post{
		{
			Date:   date("2018-03-21"),
			Title:  "Partiu viagem",
			Body:   "Vou viajar para São Paulo. Abraços!",
			Author: model.NewAuthorDTO(maria),
			Comments: []model.CommentDTO{
				{Text: "Boa viagem mano!", Date: date("2018-03-21"), Author: model.NewAuthorDTO(alex)},
				{Text: "Aproveite", Date: date("2018-03-22"), Author: model.NewAuthorDTO(bob)},
			},
		},
		{
			Date:   date("2018-03-23"),
			Title:  "Bom dia",
			Body:   "Acordei feliz hoje!",
			Author: model.NewAuthorDTO(maria),
			Comments: []model.CommentDTO{
				{Text: "Tenha um ótimo dia!", Date: date("2018-03-23"), Author: model.NewAuthorDTO(alex)},
			},
		},
	}

	for _, p := range posts {
		if _, err := users.AddPost(ctx, maria.ID, p); err != nil {
			return nil, fmt.Errorf("failed to seed post %q: %w", p.Title, err)
		}
	}

	stored := make([]model.User, 0, len(created))
	for _, u := range created {
		user, err := users.FindByID(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		stored = append(stored, user)
	}

	return stored, nil
}

func printSeed(w io.Writer, users []model.User) error {
	return utils.PrintJSON(w, users)
}
