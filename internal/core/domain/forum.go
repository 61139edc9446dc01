package domain

import "time"

// ForumQuery is a discussion post. Views is the only field mutated after creation.
type ForumQuery struct {
	ID          string    `json:"_id"`
	AuthorEmail string    `json:"authorEmail"`
	AuthorName  string    `json:"authorName,omitempty"`
	Title       string    `json:"title,omitempty"`
	Body        string    `json:"body"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}
