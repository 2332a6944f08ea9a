package domain

import (
	"errors"
	"io"
	"time"
)

// ErrVideoNotFound no video matches the given id
var ErrVideoNotFound = errors.New("video not found")

// DefaultTitle used when the client supplies neither a title nor a usable
// file name
const DefaultTitle = "default title"

// DefaultDescription used when the client supplies no description
const DefaultDescription = "Default description"

// DefaultThumbnail placeholder shown in the feed until an owner uploads one
const DefaultThumbnail = "https://static.vecteezy.com/system/resources/thumbnails/005/048/106/small_2x/black-and-yellow-grunge-modern-thumbnail-background-free-vector.jpg"

// Video 定義影片模型
type Video struct {
	ID          string    `bson:"_id" json:"_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	UploadedBy  string    `bson:"uploaded_by" json:"uploadedBy"`
	Key         string    `bson:"key" json:"key"`
	Path        string    `bson:"path" json:"path"`
	IsPrivate   bool      `bson:"is_private" json:"isPrivate"`
	Thumbnail   string    `bson:"thumbnail" json:"thumbNail"`
	ViewCount   int       `bson:"view_count" json:"viewCount"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// UploadVideoReq usecase upload video request
type UploadVideoReq struct {
	OwnerID     string
	Title       string
	Description string
	IsPrivate   bool

	FileName string
	File     io.Reader

	// optional thumbnail
	ThumbFileName string
	Thumb         io.Reader
}

// UpdateVideoReq usecase update video request. Nil field means "leave as is".
type UpdateVideoReq struct {
	ID          string
	Title       *string
	Description *string
	IsPrivate   *bool

	// optional replacement binaries
	FileName      string
	File          io.Reader
	ThumbFileName string
	Thumb         io.Reader
}

// DownloadRes usecase download response, a stream plus what the
// Content-Disposition header needs
type DownloadRes struct {
	Content     io.ReadCloser
	ContentType string
	FileName    string
}

// PresignRes a short-lived direct-upload grant
type PresignRes struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
