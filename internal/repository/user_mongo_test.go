package repository

import (
	"testing"
	"time"

	"github.com/deppfellow/workshop/internal/model"
	"github.com/deppfellow/workshop/internal/sqlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	parsed, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)

	_, err = objectID("not-an-object-id")
	assert.True(t, sqlerr.IsNoRows(err))
}

func TestOrderPosts(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	docs := []postDocument{
		{ID: c, Title: "c"},
		{ID: a, Title: "a"},
	}

	posts := orderPosts([]primitive.ObjectID{a, b, c}, docs)

	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].Title)
	assert.Equal(t, a.Hex(), posts[0].ID)
	assert.Equal(t, "c", posts[1].Title)
	assert.NotNil(t, posts[0].Comments)
}

func TestUserDocumentToModel(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := userDocument{ID: oid, Name: "Maria Brown", Email: "maria@gmail.com"}

	assert.Equal(t, model.User{ID: oid.Hex(), Name: "Maria Brown", Email: "maria@gmail.com"}, doc.toModel())
}

func TestPostDocumentToModel(t *testing.T) {
	date := time.Date(2018, 3, 23, 0, 0, 0, 0, time.UTC)
	author := model.AuthorDTO{ID: "u1", Name: "Maria Brown"}
	doc := postDocument{
		ID:     primitive.NewObjectID(),
		Date:   date,
		Title:  "Bom dia",
		Body:   "Acordei feliz hoje!",
		Author: author,
		Comments: []model.CommentDTO{
			{Text: "Tenha um ótimo dia!", Date: date, Author: model.AuthorDTO{ID: "u2", Name: "Alex Green"}},
		},
	}

	post := doc.toModel()
	assert.Equal(t, doc.ID.Hex(), post.ID)
	assert.Equal(t, author, post.Author)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "Alex Green", post.Comments[0].Author.Name)
}

func TestListOrder_SeqThenID(t *testing.T) {
	require.Len(t, listOrder, 2)
	assert.Equal(t, bson.E{Key: "seq", Value: 1}, listOrder[0])
	assert.Equal(t, bson.E{Key: "_id", Value: 1}, listOrder[1])
}
