package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/workshop/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	countersCollection = "counters"
)

// UserMongoRepository stores users as documents holding an ordered array of
// post references; posts live in their own collection. Users carry a seq
// drawn from the counters collection, which fixes listing order across
// processes.
type UserMongoRepository struct {
	users    *mongo.Collection
	posts    *mongo.Collection
	counters *mongo.Collection
}

func NewUserMongoRepository(db *mongo.Database) *UserMongoRepository {
	return &UserMongoRepository{
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
		counters: db.Collection(countersCollection),
	}
}

type userDocument struct {
	ID    primitive.ObjectID   `bson:"_id"`
	Seq   int64                `bson:"seq"`
	Name  string               `bson:"name"`
	Email string               `bson:"email"`
	Posts []primitive.ObjectID `bson:"posts"`
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

// listOrder sorts users by seq. _id breaks ties for documents written
// before seq existed.
var listOrder = bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}}

func (d userDocument) toModel() model.User {
	return model.User{ID: d.ID.Hex(), Name: d.Name, Email: d.Email}
}

type postDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	UserID   primitive.ObjectID `bson:"user_id"`
	Date     time.Time          `bson:"date"`
	Title    string             `bson:"title"`
	Body     string             `bson:"body"`
	Author   model.AuthorDTO    `bson:"author"`
	Comments []model.CommentDTO `bson:"comments"`
}

func (d postDocument) toModel() model.Post {
	comments := d.Comments
	if comments == nil {
		comments = []model.CommentDTO{}
	}

	return model.Post{
		ID:       d.ID.Hex(),
		Date:     d.Date,
		Title:    d.Title,
		Body:     d.Body,
		Author:   d.Author,
		Comments: comments,
	}
}

// objectID parses a user id. Ids that are not valid ObjectIDs cannot exist
// in the collection and are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, userNotFound(mongo.ErrNoDocuments)
	}
	return oid, nil
}

// orderPosts returns docs arranged as refs lists them. Dangling references
// are skipped.
func orderPosts(refs []primitive.ObjectID, docs []postDocument) []model.Post {
	byID := make(map[primitive.ObjectID]postDocument, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	posts := make([]model.Post, 0, len(refs))
	for _, ref := range refs {
		if doc, ok := byID[ref]; ok {
			posts = append(posts, doc.toModel())
		}
	}

	return posts
}

func (r *UserMongoRepository) FindAll(ctx context.Context) ([]model.User, error) {
	opts := options.Find().SetSort(listOrder)

	cursor, err := r.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toModel())
	}

	return users, nil
}

func (r *UserMongoRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.User{}, err
	}

	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, userNotFound(err)
		}
		return model.User{}, fmt.Errorf("failed to find user %s: %w", id, err)
	}

	user := doc.toModel()
	user.Posts = []model.Post{}

	if len(doc.Posts) == 0 {
		return user, nil
	}

	cursor, err := r.posts.Find(ctx, bson.M{"_id": bson.M{"$in": doc.Posts}})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query posts of user %s: %w", id, err)
	}

	var postDocs []postDocument
	if err := cursor.All(ctx, &postDocs); err != nil {
		return model.User{}, fmt.Errorf("failed to decode posts of user %s: %w", id, err)
	}

	user.Posts = orderPosts(doc.Posts, postDocs)

	return user, nil
}

// nextSeq atomically increments and returns the counter for name.
func (r *UserMongoRepository) nextSeq(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s sequence: %w", name, err)
	}

	return counter.Seq, nil
}

func (r *UserMongoRepository) Insert(ctx context.Context, user model.User) (model.User, error) {
	seq, err := r.nextSeq(ctx, usersCollection)
	if err != nil {
		return model.User{}, err
	}

	doc := userDocument{
		ID:    primitive.NewObjectID(),
		Seq:   seq,
		Name:  user.Name,
		Email: user.Email,
		Posts: []primitive.ObjectID{},
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	inserted := doc.toModel()
	inserted.Posts = []model.Post{}

	return inserted, nil
}

func (r *UserMongoRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	oid, err := objectID(user.ID)
	if err != nil {
		return model.User{}, err
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": user.Name, "email": user.Email}},
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}

	if res.MatchedCount == 0 {
		return model.User{}, userNotFound(mongo.ErrNoDocuments)
	}

	return r.FindByID(ctx, user.ID)
}

func (r *UserMongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	if res.DeletedCount == 0 {
		return userNotFound(mongo.ErrNoDocuments)
	}

	if _, err := r.posts.DeleteMany(ctx, bson.M{"user_id": oid}); err != nil {
		return fmt.Errorf("failed to delete posts of user %s: %w", id, err)
	}

	return nil
}

func (r *UserMongoRepository) AddPost(ctx context.Context, userID string, post model.Post) (model.Post, error) {
	oid, err := objectID(userID)
	if err != nil {
		return model.Post{}, err
	}

	if post.Comments == nil {
		post.Comments = []model.CommentDTO{}
	}

	doc := postDocument{
		ID:       primitive.NewObjectID(),
		UserID:   oid,
		Date:     post.Date,
		Title:    post.Title,
		Body:     post.Body,
		Author:   post.Author,
		Comments: post.Comments,
	}

	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return model.Post{}, fmt.Errorf("failed to insert post for user %s: %w", userID, err)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"posts": doc.ID}})
	if err != nil || res.MatchedCount == 0 {
		// Drop the orphan; the user is gone or unreachable.
		_, _ = r.posts.DeleteOne(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return model.Post{}, fmt.Errorf("failed to attach post to user %s: %w", userID, err)
		}
		return model.Post{}, userNotFound(mongo.ErrNoDocuments)
	}

	return doc.toModel(), nil
}
