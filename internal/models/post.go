package models

import "time"

// Post represents a single blog entry. The creator is assigned once at
// creation time and never reassigned.
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	CreatorID string    `json:"-"`
	Creator   *User     `json:"creator,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostPage is one page of the post feed plus the overall count, so clients
// can render pagination controls.
type PostPage struct {
	Posts      []Post `json:"posts"`
	TotalPosts int    `json:"totalPosts"`
}
