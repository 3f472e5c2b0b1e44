package models

import "time"

// AuthorRef is the author identity joined into article reads.
type AuthorRef struct {
	ID       string
	Username string
	Email    string
}

type Article struct {
	ID            string
	Title         string
	Content       string
	AuthorID      string
	Tags          []string
	PublishedDate time.Time
	IsPublished   bool
	Views         int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Author AuthorRef
}
