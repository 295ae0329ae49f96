// Package storage abstracts the object store that holds uploaded file bytes.
// The core only needs put/delete; listing and lifecycle stay with the store.
package storage

import (
	"context"
	"io"
)

// ObjectStorage is the transfer capability consumed by the file service.
type ObjectStorage interface {
	// Put uploads an object under the given key, overwriting any previous
	// object with that key.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
