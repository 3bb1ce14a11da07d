// Package storage is the object-storage client used for image assets.
package storage

import (
	"context"
	"errors"
)

// ErrRejected is returned when the backend refuses an object because of its
// size or content type.
var ErrRejected = errors.New("object rejected by storage")

// Object describes a stored asset.
type Object struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// UploadInput is a single object to store under ID.
type UploadInput struct {
	ID          string
	ContentType string
	Data        []byte
}

// Storage is an object store. Delete of a missing id is not an error.
type Storage interface {
	Upload(ctx context.Context, in UploadInput) (*Object, error)
	Delete(ctx context.Context, id string) error
}
