package preferences

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltFilePermissionsConstant      = 0o600
	boltDirectoryPermissionsConstant = 0o700
	boltOpenTimeoutConstant          = time.Second
)

// BoltStore keeps preferences in a bbolt file, one bucket per application.
// The file is created on the first save.
type BoltStore struct {
	path       string
	bucketName []byte
}

// NewBoltStore constructs a store backed by the bbolt file at path.
func NewBoltStore(path string, applicationName string) *BoltStore {
	return &BoltStore{path: path, bucketName: []byte(applicationName)}
}

// Path reports the backing file location.
func (store *BoltStore) Path() string {
	return store.path
}

// Load returns the stored token without creating the backing file.
func (store *BoltStore) Load(executionContext context.Context) (string, bool, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", false, StoreError{Operation: operationLoad, Cause: contextError}
	}
	if _, statError := os.Stat(store.path); errors.Is(statError, fs.ErrNotExist) {
		return "", false, nil
	}

	database, openError := store.open()
	if openError != nil {
		return "", false, openError
	}
	defer database.Close()

	var token string
	viewError := database.View(func(transaction *bbolt.Tx) error {
		bucket := transaction.Bucket(store.bucketName)
		if bucket == nil {
			return nil
		}
		token = string(bucket.Get([]byte(TokenKeyConstant)))
		return nil
	})
	if viewError != nil {
		return "", false, StoreError{Operation: operationLoad, Cause: viewError}
	}
	return token, len(token) > 0, nil
}

// Save writes token, creating the file and bucket as needed.
func (store *BoltStore) Save(executionContext context.Context, token string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return StoreError{Operation: operationSave, Cause: contextError}
	}
	if mkdirError := os.MkdirAll(filepath.Dir(store.path), boltDirectoryPermissionsConstant); mkdirError != nil {
		return StoreError{Operation: operationOpen, Cause: mkdirError}
	}

	database, openError := store.open()
	if openError != nil {
		return openError
	}
	defer database.Close()

	updateError := database.Update(func(transaction *bbolt.Tx) error {
		bucket, bucketError := transaction.CreateBucketIfNotExists(store.bucketName)
		if bucketError != nil {
			return bucketError
		}
		return bucket.Put([]byte(TokenKeyConstant), []byte(token))
	})
	if updateError != nil {
		return StoreError{Operation: operationSave, Cause: updateError}
	}
	return nil
}

// Delete removes the token if present.
func (store *BoltStore) Delete(executionContext context.Context) (bool, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return false, StoreError{Operation: operationDelete, Cause: contextError}
	}
	if _, statError := os.Stat(store.path); errors.Is(statError, fs.ErrNotExist) {
		return false, nil
	}

	database, openError := store.open()
	if openError != nil {
		return false, openError
	}
	defer database.Close()

	removed := false
	updateError := database.Update(func(transaction *bbolt.Tx) error {
		bucket := transaction.Bucket(store.bucketName)
		if bucket == nil || bucket.Get([]byte(TokenKeyConstant)) == nil {
			return nil
		}
		removed = true
		return bucket.Delete([]byte(TokenKeyConstant))
	})
	if updateError != nil {
		return false, StoreError{Operation: operationDelete, Cause: updateError}
	}
	return removed, nil
}

func (store *BoltStore) open() (*bbolt.DB, error) {
	database, openError := bbolt.Open(store.path, boltFilePermissionsConstant, &bbolt.Options{Timeout: boltOpenTimeoutConstant})
	if openError != nil {
		return nil, StoreError{Operation: operationOpen, Cause: openError}
	}
	return database, nil
}
