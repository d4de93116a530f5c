package models

import "time"

// User is the subset of a VibeHub account the messaging backend reads.
type User struct {
	ID         string   `json:"id" bson:"_id"`
	Username   string   `json:"username" bson:"username"`
	ProfilePic string   `json:"profilePic" bson:"profilePic"`
	Followers  []string `json:"followers" bson:"followers"`
	Following  []string `json:"following" bson:"following"`
}

// Summary returns the public card of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePic: u.ProfilePic}
}

// UserSummary is the denormalised form embedded in messages and conversations.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Post is a published post, referenced by shared-post messages.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Author    string    `json:"author" bson:"author"`
	Media     []string  `json:"media" bson:"media"`
	Caption   string    `json:"caption" bson:"caption"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// PostSummary is a shared post as rendered inside a message.
type PostSummary struct {
	ID      string      `json:"id"`
	Media   []string    `json:"media"`
	Caption string      `json:"caption"`
	Author  UserSummary `json:"author"`
}
