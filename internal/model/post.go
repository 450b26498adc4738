package model

import "time"

// AuthorDTO is the denormalized author embedded in posts and comments.
type AuthorDTO struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// NewAuthorDTO captures the author fields of u.
func NewAuthorDTO(u User) AuthorDTO {
	return AuthorDTO{ID: u.ID, Name: u.Name}
}

// CommentDTO is a comment embedded in a post.
type CommentDTO struct {
	Text   string    `json:"text" bson:"text"`
	Date   time.Time `json:"date" bson:"date"`
	Author AuthorDTO `json:"author" bson:"author"`
}

// Post is returned verbatim by GET /users/:id/posts.
type Post struct {
	ID       string       `json:"id"`
	Date     time.Time    `json:"date"`
	Title    string       `json:"title"`
	Body     string       `json:"body"`
	Author   AuthorDTO    `json:"author"`
	Comments []CommentDTO `json:"comments"`
}
