package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserPostgresRepository stores users and posts in PostgreSQL. See
// internal/database/migrations for the schema.
type UserPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewUserPostgresRepository(pool *pgxpool.Pool) *UserPostgresRepository {
	return &UserPostgresRepository{pool: pool}
}

type userRow struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

func (r userRow) toModel() model.User {
	return model.User{ID: r.ID, Name: r.Name, Email: r.Email}
}

type postRow struct {
	ID         string             `db:"id"`
	Date       time.Time          `db:"date"`
	Title      string             `db:"title"`
	Body       string             `db:"body"`
	AuthorID   string             `db:"author_id"`
	AuthorName string             `db:"author_name"`
	Comments   []model.CommentDTO `db:"comments"`
}

func (r postRow) toModel() model.Post {
	comments := r.Comments
	if comments == nil {
		comments = []model.CommentDTO{}
	}

	return model.Post{
		ID:       r.ID,
		Date:     r.Date,
		Title:    r.Title,
		Body:     r.Body,
		Author:   model.AuthorDTO{ID: r.AuthorID, Name: r.AuthorName},
		Comments: comments,
	}
}

func (r *UserPostgresRepository) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, fmt.Errorf("failed to collect users: %w", err)
	}

	users := make([]model.User, 0, len(found))
	for _, row := range found {
		users = append(users, row.toModel())
	}

	return users, nil
}

func (r *UserPostgresRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email FROM users WHERE id = $1`, id)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user %s: %w", id, err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, userNotFound(err)
		}
		return model.User{}, fmt.Errorf("failed to collect user %s: %w", id, err)
	}

	posts, err := r.findPosts(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	user := row.toModel()
	user.Posts = posts

	return user, nil
}

func (r *UserPostgresRepository) findPosts(ctx context.Context, userID string) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, title, body, author_id, author_name, comments
		FROM posts
		WHERE user_id = $1
		ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts of user %s: %w", userID, err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[postRow])
	if err != nil {
		return nil, fmt.Errorf("failed to collect posts of user %s: %w", userID, err)
	}

	posts := make([]model.Post, 0, len(found))
	for _, row := range found {
		posts = append(posts, row.toModel())
	}

	return posts, nil
}

func (r *UserPostgresRepository) Insert(ctx context.Context, user model.User) (model.User, error) {
	user.ID = uuid.NewString()
	user.Posts = []model.Post{}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
		user.ID, user.Name, user.Email,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

func (r *UserPostgresRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, updated_at = now() WHERE id = $1`,
		user.ID, user.Name, user.Email,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return model.User{}, userNotFound(pgx.ErrNoRows)
	}

	return r.FindByID(ctx, user.ID)
}

func (r *UserPostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return userNotFound(pgx.ErrNoRows)
	}

	return nil
}

func (r *UserPostgresRepository) AddPost(ctx context.Context, userID string, post model.Post) (model.Post, error) {
	post.ID = uuid.NewString()
	if post.Comments == nil {
		post.Comments = []model.CommentDTO{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (id, user_id, date, title, body, author_id, author_name, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, userID, post.Date, post.Title, post.Body,
		post.Author.ID, post.Author.Name, post.Comments,
	)
	if err != nil {
		return model.Post{}, postInsertError(userID, err)
	}

	return post, nil
}

// postInsertError reports a post whose owner does not exist as a missing
// user. posts.user_id is the only foreign key on the table.
func postInsertError(userID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && sqlerr.MapCode(pgErr.Code) == sqlerr.ForeignKeyViolation {
		return userNotFound(pgx.ErrNoRows)
	}
	return fmt.Errorf("failed to insert post for user %s: %w", userID, err)
}
