package models

import "time"

// StoryLifetime is how long a story stays visible after it is posted.
const StoryLifetime = 3600 * time.Second

// Story is an ephemeral photo or video post. Stories are never updated;
// they disappear once ExpireAt passes.
type Story struct {
	ID        string      `json:"id" bson:"_id"`
	Owner     string      `json:"owner" bson:"owner"`
	MediaURL  string      `json:"mediaUrl" bson:"mediaUrl"`
	MediaType MessageType `json:"mediaType" bson:"mediaType"`
	Song      *Song       `json:"song,omitempty" bson:"song,omitempty"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`

	// ExpireAt drives the store's TTL index
	ExpireAt time.Time `json:"expireAt" bson:"expireAt"`
}

// Song is optional background music attached to a story
type Song struct {
	Title      string `json:"title" bson:"title"`
	Artist     string `json:"artist" bson:"artist"`
	PreviewURL string `json:"previewUrl" bson:"previewUrl"`
}

// ActiveAt reports whether the story is still visible at now.
func (s Story) ActiveAt(now time.Time) bool {
	return now.Before(s.ExpireAt)
}

// CreateStoryRequest is the JSON body for posting a story with an already
// uploaded media URL.
type CreateStoryRequest struct {
	MediaURL  string      `json:"mediaUrl"`
	MediaType MessageType `json:"mediaType"`
	Song      *Song       `json:"song,omitempty"`
}

// MediaUpload describes a stored upload.
type MediaUpload struct {
	URL string `json:"url"`

	// Path is the object key in the bucket
	Path string `json:"-"`

	Kind     MessageType `json:"kind"`
	FileName string      `json:"fileName"`
	FileType string      `json:"fileType"`
}
