package repository

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/sqlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMemoryRepository_InsertAssignsID(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	user, err := repo.Insert(ctx, model.User{ID: "client-id", Name: "Maria Brown", Email: "maria@gmail.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "client-id", user.ID)
	assert.Empty(t, user.Posts)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Brown", found.Name)
	assert.Equal(t, "maria@gmail.com", found.Email)
}

func TestUserMemoryRepository_FindAllKeepsInsertionOrder(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	names := []string{"Maria Brown", "Alex Green", "Bob Grey"}
	for _, name := range names {
		_, err := repo.Insert(ctx, model.User{Name: name})
		require.NoError(t, err)
	}

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	for i, name := range names {
		assert.Equal(t, name, users[i].Name)
	}
}

func TestUserMemoryRepository_FindAllEmpty(t *testing.T) {
	users, err := NewUserMemoryRepository().FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserMemoryRepository_NotFound(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.True(t, sqlerr.IsNoRows(err))
	assert.Contains(t, err.Error(), "table:users")

	_, err = repo.Update(ctx, model.User{ID: "missing", Name: "x"})
	assert.True(t, sqlerr.IsNoRows(err))

	err = repo.Delete(ctx, "missing")
	assert.True(t, sqlerr.IsNoRows(err))

	_, err = repo.AddPost(ctx, "missing", model.Post{Title: "t"})
	assert.True(t, sqlerr.IsNoRows(err))
}

func TestUserMemoryRepository_UpdateKeepsPosts(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	user, err := repo.Insert(ctx, model.User{Name: "Alex Green", Email: "alex@gmail.com"})
	require.NoError(t, err)

	_, err = repo.AddPost(ctx, user.ID, model.Post{Title: "Bom dia", Author: model.NewAuthorDTO(user)})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, model.User{ID: user.ID, Name: "Alex Blue", Email: "blue@gmail.com"})
	require.NoError(t, err)

	assert.Equal(t, "Alex Blue", updated.Name)
	assert.Equal(t, "blue@gmail.com", updated.Email)
	require.Len(t, updated.Posts, 1)
	assert.Equal(t, "Bom dia", updated.Posts[0].Title)
}

func TestUserMemoryRepository_DeleteRemovesUser(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	first, err := repo.Insert(ctx, model.User{Name: "first"})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, model.User{Name: "second"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, first.ID))

	_, err = repo.FindByID(ctx, first.ID)
	assert.True(t, sqlerr.IsNoRows(err))

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, second.ID, users[0].ID)

	err = repo.Delete(ctx, first.ID)
	assert.True(t, sqlerr.IsNoRows(err))
}

func TestUserMemoryRepository_PostsInInsertionOrder(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	user, err := repo.Insert(ctx, model.User{Name: "Maria Brown"})
	require.NoError(t, err)

	date := time.Date(2018, 3, 21, 0, 0, 0, 0, time.UTC)
	first, err := repo.AddPost(ctx, user.ID, model.Post{Date: date, Title: "Partiu viagem"})
	require.NoError(t, err)
	second, err := repo.AddPost(ctx, user.ID, model.Post{Date: date, Title: "Bom dia"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotNil(t, first.Comments)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, found.Posts, 2)
	assert.Equal(t, first.ID, found.Posts[0].ID)
	assert.Equal(t, second.ID, found.Posts[1].ID)
}

func TestUserMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserMemoryRepository()
	ctx := context.Background()

	user, err := repo.Insert(ctx, model.User{Name: "Bob Grey"})
	require.NoError(t, err)
	_, err = repo.AddPost(ctx, user.ID, model.Post{Title: "original"})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	found.Posts[0].Title = "mutated"

	again, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Posts[0].Title)
}
